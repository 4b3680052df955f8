package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

type createSprintRequest struct {
	Project    int64      `json:"project" binding:"required"`
	Title      string     `json:"title"`
	Goal       string     `json:"goal"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

func (h *Handlers) CreateSprint(c *gin.Context) {
	var req createSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := h.projects.Get(c.Request.Context(), req.Project)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.authorizeWorkspace(c, project.WorkspaceID) {
		return
	}
	created, err := h.sprints.Create(c.Request.Context(), domain.Sprint{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		Title:       req.Title,
		Goal:        req.Goal,
		StartedAt:   req.StartedAt,
		FinishedAt:  req.FinishedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) ListSprints(c *gin.Context) {
	project, ok := h.loadProjectFromQuery(c)
	if !ok {
		return
	}
	sprints, err := h.sprints.ListByProject(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sprints)
}

func (h *Handlers) GetSprint(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sp)
}

type updateSprintRequest struct {
	Title      string     `json:"title" binding:"required"`
	Goal       string     `json:"goal"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

func (h *Handlers) UpdateSprint(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	var req updateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sp.Title = req.Title
	sp.Goal = req.Goal
	sp.StartedAt = req.StartedAt
	sp.FinishedAt = req.FinishedAt

	updated, err := h.sprints.Update(c.Request.Context(), sp)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handlers) DeleteSprint(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	if err := h.sprints.Delete(c.Request.Context(), sp.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListSprintIssues(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	issues, err := h.sprints.Issues(c.Request.Context(), sp.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

type sprintIssuesRequest struct {
	Issues []int64 `json:"issues" binding:"required,min=1"`
}

func (h *Handlers) AddSprintIssues(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	var req sprintIssuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sprints.AddIssues(c.Request.Context(), sp.ID, req.Issues); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) RemoveSprintIssues(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	var req sprintIssuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sprints.RemoveIssues(c.Request.Context(), sp.ID, req.Issues); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type startSprintRequest struct {
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

func (h *Handlers) StartSprint(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	var req startSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Dates may come with the start call or have been set on the
	// sprint earlier.
	startedAt, finishedAt := req.StartedAt, req.FinishedAt
	if startedAt == nil {
		startedAt = sp.StartedAt
	}
	if finishedAt == nil {
		finishedAt = sp.FinishedAt
	}
	started, err := h.sprints.Start(c.Request.Context(), sp.ID, startedAt, finishedAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, started)
}

func (h *Handlers) CompleteSprint(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	completed, err := h.sprints.Complete(c.Request.Context(), sp.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, completed)
}

// SprintGuideline serves the burn-down chart's estimated line: one
// point per sprint day with its working flag and projected remaining
// story points.
func (h *Handlers) SprintGuideline(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	guideline, err := h.sprints.Guideline(c.Request.Context(), sp.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, guideline)
}

func (h *Handlers) SprintEffortsHistory(c *gin.Context) {
	sp, ok := h.loadSprint(c)
	if !ok {
		return
	}
	history, err := h.sprints.EffortsHistory(c.Request.Context(), sp.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handlers) loadSprint(c *gin.Context) (domain.Sprint, bool) {
	id, ok := idParam(c)
	if !ok {
		return domain.Sprint{}, false
	}
	sp, err := h.sprints.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return domain.Sprint{}, false
	}
	if !h.authorizeWorkspace(c, sp.WorkspaceID) {
		return domain.Sprint{}, false
	}
	return sp, true
}
