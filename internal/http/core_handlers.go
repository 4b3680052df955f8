package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

// ---- workspaces ----

func (h *Handlers) ListWorkspaces(c *gin.Context) {
	workspaces, err := h.workspaces.ListForPerson(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workspaces)
}

type createWorkspaceRequest struct {
	PrefixURL string `json:"prefix_url" binding:"required"`
}

func (h *Handlers) CreateWorkspace(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws, err := h.workspaces.Create(c.Request.Context(), req.PrefixURL, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

func (h *Handlers) GetWorkspace(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if !h.authorizeWorkspace(c, id) {
		return
	}
	ws, err := h.workspaces.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// ---- projects ----

func (h *Handlers) ListProjects(c *gin.Context) {
	workspaceID, ok := queryID(c, "workspace")
	if !ok {
		return
	}
	if !h.authorizeWorkspace(c, workspaceID) {
		return
	}
	projects, err := h.projects.ListByWorkspace(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

type createProjectRequest struct {
	Workspace int64  `json:"workspace" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Key       string `json:"key" binding:"required"`
}

func (h *Handlers) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.authorizeWorkspace(c, req.Workspace) {
		return
	}
	owner := callerID(c)
	project, err := h.projects.Create(c.Request.Context(), domain.Project{
		WorkspaceID: req.Workspace,
		Title:       req.Title,
		Key:         req.Key,
		OwnedByID:   &owner,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Handlers) GetProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project)
}

type updateProjectRequest struct {
	Title string `json:"title" binding:"required"`
	Key   string `json:"key" binding:"required"`
}

func (h *Handlers) UpdateProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project.Title = req.Title
	project.Key = req.Key
	updated, err := h.projects.Update(c.Request.Context(), project)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handlers) DeleteProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), project.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// loadProject resolves the :id path param and checks workspace access.
func (h *Handlers) loadProject(c *gin.Context) (domain.Project, bool) {
	id, ok := idParam(c)
	if !ok {
		return domain.Project{}, false
	}
	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return domain.Project{}, false
	}
	if !h.authorizeWorkspace(c, project.WorkspaceID) {
		return domain.Project{}, false
	}
	return project, true
}

// ---- working days ----

func (h *Handlers) GetWorkingDays(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	days, err := h.projects.WorkingDays(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

type updateWorkingDaysRequest struct {
	Timezone  string `json:"timezone" binding:"required"`
	Monday    bool   `json:"monday"`
	Tuesday   bool   `json:"tuesday"`
	Wednesday bool   `json:"wednesday"`
	Thursday  bool   `json:"thursday"`
	Friday    bool   `json:"friday"`
	Saturday  bool   `json:"saturday"`
	Sunday    bool   `json:"sunday"`
}

func (h *Handlers) UpdateWorkingDays(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	var req updateWorkingDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.projects.UpdateWorkingDays(c.Request.Context(), domain.WorkingDays{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		Timezone:    req.Timezone,
		Monday:      req.Monday,
		Tuesday:     req.Tuesday,
		Wednesday:   req.Wednesday,
		Thursday:    req.Thursday,
		Friday:      req.Friday,
		Saturday:    req.Saturday,
		Sunday:      req.Sunday,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type nonWorkingDayRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *Handlers) AddNonWorkingDay(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	var req nonWorkingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as 2006-01-02"})
		return
	}
	day, err := h.projects.AddNonWorkingDay(c.Request.Context(), domain.NonWorkingDay{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		Date:        date,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, day)
}

func (h *Handlers) RemoveNonWorkingDay(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	day, err := h.projects.NonWorkingDay(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.authorizeWorkspace(c, day.WorkspaceID) {
		return
	}
	if err := h.projects.RemoveNonWorkingDay(c.Request.Context(), day.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- category dictionaries ----

func (h *Handlers) ListIssueTypeCategories(c *gin.Context) {
	project, ok := h.loadProjectFromQuery(c)
	if !ok {
		return
	}
	list, err := h.categories.ListTypes(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) ListIssueStateCategories(c *gin.Context) {
	project, ok := h.loadProjectFromQuery(c)
	if !ok {
		return
	}
	list, err := h.categories.ListStates(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) ListIssueEstimationCategories(c *gin.Context) {
	project, ok := h.loadProjectFromQuery(c)
	if !ok {
		return
	}
	list, err := h.categories.ListEstimations(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type createTypeCategoryRequest struct {
	Project   int64  `json:"project" binding:"required"`
	Title     string `json:"title" binding:"required"`
	IsSubtask bool   `json:"is_subtask"`
	IsDefault bool   `json:"is_default"`
	Ordering  int    `json:"ordering"`
}

func (h *Handlers) CreateIssueTypeCategory(c *gin.Context) {
	var req createTypeCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, ok := h.loadProjectByID(c, req.Project)
	if !ok {
		return
	}
	created, err := h.categories.CreateType(c.Request.Context(), domain.IssueTypeCategory{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		Title:       req.Title,
		IsSubtask:   req.IsSubtask,
		IsDefault:   req.IsDefault,
		Ordering:    req.Ordering,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) DeleteIssueTypeCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cat, err := h.categories.GetType(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.authorizeWorkspace(c, cat.WorkspaceID) {
		return
	}
	if err := h.categories.DeleteType(c.Request.Context(), cat.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createStateCategoryRequest struct {
	Project   int64  `json:"project" binding:"required"`
	Title     string `json:"title" binding:"required"`
	IsDefault bool   `json:"is_default"`
	IsDone    bool   `json:"is_done"`
	Ordering  int    `json:"ordering"`
}

func (h *Handlers) CreateIssueStateCategory(c *gin.Context) {
	var req createStateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, ok := h.loadProjectByID(c, req.Project)
	if !ok {
		return
	}
	created, err := h.categories.CreateState(c.Request.Context(), domain.IssueStateCategory{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		Title:       req.Title,
		IsDefault:   req.IsDefault,
		IsDone:      req.IsDone,
		Ordering:    req.Ordering,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) DeleteIssueStateCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cat, err := h.categories.GetState(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.authorizeWorkspace(c, cat.WorkspaceID) {
		return
	}
	if err := h.categories.DeleteState(c.Request.Context(), cat.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createEstimationCategoryRequest struct {
	Project int64  `json:"project" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Value   int    `json:"value" binding:"required"`
}

func (h *Handlers) CreateIssueEstimationCategory(c *gin.Context) {
	var req createEstimationCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, ok := h.loadProjectByID(c, req.Project)
	if !ok {
		return
	}
	created, err := h.categories.CreateEstimation(c.Request.Context(), domain.IssueEstimationCategory{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		Title:       req.Title,
		Value:       req.Value,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) DeleteIssueEstimationCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cat, err := h.categories.GetEstimation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.authorizeWorkspace(c, cat.WorkspaceID) {
		return
	}
	if err := h.categories.DeleteEstimation(c.Request.Context(), cat.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) loadProjectByID(c *gin.Context, projectID int64) (domain.Project, bool) {
	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return domain.Project{}, false
	}
	if !h.authorizeWorkspace(c, project.WorkspaceID) {
		return domain.Project{}, false
	}
	return project, true
}

func (h *Handlers) loadProjectFromQuery(c *gin.Context) (domain.Project, bool) {
	projectID, ok := queryID(c, "project")
	if !ok {
		return domain.Project{}, false
	}
	return h.loadProjectByID(c, projectID)
}
