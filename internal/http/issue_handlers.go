package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

type createIssueRequest struct {
	Project            int64  `json:"project" binding:"required"`
	Title              string `json:"title" binding:"required"`
	Description        string `json:"description"`
	TypeCategory       *int64 `json:"type_category"`
	StateCategory      *int64 `json:"state_category"`
	EstimationCategory *int64 `json:"estimation_category"`
	Assignee           *int64 `json:"assignee"`
	Ordering           int    `json:"ordering"`
}

func (h *Handlers) CreateIssue(c *gin.Context) {
	var req createIssueRequest
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
	caller := callerID(c)
	issue, err := h.issues.Create(c.Request.Context(), domain.Issue{
		WorkspaceID:          project.WorkspaceID,
		ProjectID:            project.ID,
		Title:                req.Title,
		Description:          req.Description,
		TypeCategoryID:       req.TypeCategory,
		StateCategoryID:      req.StateCategory,
		EstimationCategoryID: req.EstimationCategory,
		AssigneeID:           req.Assignee,
		CreatedByID:          &caller,
		Ordering:             req.Ordering,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

func (h *Handlers) ListIssues(c *gin.Context) {
	project, ok := h.loadProjectFromQuery(c)
	if !ok {
		return
	}
	issues, err := h.issues.ListByProject(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (h *Handlers) ListBacklog(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	issues, err := h.issues.ListBacklog(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (h *Handlers) GetIssue(c *gin.Context) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, issue)
}

type updateIssueRequest struct {
	Title              string `json:"title" binding:"required"`
	Description        string `json:"description"`
	TypeCategory       *int64 `json:"type_category"`
	StateCategory      *int64 `json:"state_category"`
	EstimationCategory *int64 `json:"estimation_category"`
	Assignee           *int64 `json:"assignee"`
	Ordering           int    `json:"ordering"`
}

func (h *Handlers) UpdateIssue(c *gin.Context) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}
	var req updateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller := callerID(c)
	issue.Title = req.Title
	issue.Description = req.Description
	issue.TypeCategoryID = req.TypeCategory
	issue.StateCategoryID = req.StateCategory
	issue.EstimationCategoryID = req.EstimationCategory
	issue.AssigneeID = req.Assignee
	issue.UpdatedByID = &caller
	issue.Ordering = req.Ordering

	updated, err := h.issues.Update(c.Request.Context(), issue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handlers) DeleteIssue(c *gin.Context) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}
	if err := h.issues.Delete(c.Request.Context(), issue.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) IssueHistory(c *gin.Context) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}
	history, err := h.issues.History(c.Request.Context(), issue.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handlers) loadIssue(c *gin.Context) (domain.Issue, bool) {
	id, ok := idParam(c)
	if !ok {
		return domain.Issue{}, false
	}
	issue, err := h.issues.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return domain.Issue{}, false
	}
	if !h.authorizeWorkspace(c, issue.WorkspaceID) {
		return domain.Issue{}, false
	}
	return issue, true
}

// ---- issue messages ----

type createMessageRequest struct {
	Issue       int64  `json:"issue" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func (h *Handlers) CreateIssueMessage(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issue, err := h.issues.Get(c.Request.Context(), req.Issue)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.authorizeWorkspace(c, issue.WorkspaceID) {
		return
	}
	message, err := h.messages.Create(c.Request.Context(), domain.IssueMessage{
		WorkspaceID: issue.WorkspaceID,
		ProjectID:   issue.ProjectID,
		IssueID:     issue.ID,
		Description: req.Description,
		CreatedByID: callerID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *Handlers) ListIssueMessages(c *gin.Context) {
	issueID, ok := queryID(c, "issue")
	if !ok {
		return
	}
	issue, err := h.issues.Get(c.Request.Context(), issueID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.authorizeWorkspace(c, issue.WorkspaceID) {
		return
	}
	messages, err := h.messages.ListByIssue(c.Request.Context(), issue.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

type updateMessageRequest struct {
	Description string `json:"description" binding:"required"`
}

func (h *Handlers) UpdateIssueMessage(c *gin.Context) {
	m, ok := h.loadIssueMessage(c)
	if !ok {
		return
	}
	if !mustBeAuthor(c, m.CreatedByID) {
		return
	}
	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.messages.Update(c.Request.Context(), m.ID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handlers) DeleteIssueMessage(c *gin.Context) {
	m, ok := h.loadIssueMessage(c)
	if !ok {
		return
	}
	if !mustBeAuthor(c, m.CreatedByID) {
		return
	}
	if err := h.messages.Delete(c.Request.Context(), m.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) loadIssueMessage(c *gin.Context) (domain.IssueMessage, bool) {
	id, ok := idParam(c)
	if !ok {
		return domain.IssueMessage{}, false
	}
	m, err := h.messages.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return domain.IssueMessage{}, false
	}
	if !h.authorizeWorkspace(c, m.WorkspaceID) {
		return domain.IssueMessage{}, false
	}
	return m, true
}

// mustBeAuthor limits message mutation to its creator. Everyone else
// in the workspace reads only.
func mustBeAuthor(c *gin.Context, createdBy int64) bool {
	if callerID(c) != createdBy {
		respondError(c, domain.NewError(domain.CodeForbidden, domain.ErrNotMessageAuthor))
		return false
	}
	return true
}
