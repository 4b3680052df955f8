package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/config"
)

func NewRouter(cfg config.Config, log zerolog.Logger, h *Handlers) *gin.Engine {
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLog(log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authAPI := r.Group("/api/auth")
	{
		authAPI.POST("/obtain", h.ObtainToken)
		authAPI.POST("/persons/registration/requests", h.RequestRegistration)
		authAPI.POST("/persons", h.CompleteRegistration)
		authAPI.POST("/persons/invitation", h.AcceptInvitation)
		authAPI.POST("/password/forgot", h.ForgotPassword)
		authAPI.POST("/password/restore", h.ResetPassword)
	}

	core := r.Group("/api/core", requireAuth(cfg.JWTSecret))
	{
		core.GET("/workspaces", h.ListWorkspaces)
		core.POST("/workspaces", h.CreateWorkspace)
		core.GET("/workspaces/:id", h.GetWorkspace)
		core.POST("/person-invitations/requests", h.Invite)

		core.GET("/projects", h.ListProjects)
		core.POST("/projects", h.CreateProject)
		core.GET("/projects/:id", h.GetProject)
		core.PUT("/projects/:id", h.UpdateProject)
		core.DELETE("/projects/:id", h.DeleteProject)
		core.GET("/projects/:id/backlog", h.ListBacklog)
		core.GET("/projects/:id/working-days", h.GetWorkingDays)
		core.PUT("/projects/:id/working-days", h.UpdateWorkingDays)
		core.POST("/projects/:id/non-working-days", h.AddNonWorkingDay)
		core.DELETE("/non-working-days/:id", h.RemoveNonWorkingDay)

		core.GET("/issue-type-categories", h.ListIssueTypeCategories)
		core.POST("/issue-type-categories", h.CreateIssueTypeCategory)
		core.DELETE("/issue-type-categories/:id", h.DeleteIssueTypeCategory)
		core.GET("/issue-state-categories", h.ListIssueStateCategories)
		core.POST("/issue-state-categories", h.CreateIssueStateCategory)
		core.DELETE("/issue-state-categories/:id", h.DeleteIssueStateCategory)
		core.GET("/issue-estimation-categories", h.ListIssueEstimationCategories)
		core.POST("/issue-estimation-categories", h.CreateIssueEstimationCategory)
		core.DELETE("/issue-estimation-categories/:id", h.DeleteIssueEstimationCategory)

		core.GET("/issues", h.ListIssues)
		core.POST("/issues", h.CreateIssue)
		core.GET("/issues/:id", h.GetIssue)
		core.PUT("/issues/:id", h.UpdateIssue)
		core.DELETE("/issues/:id", h.DeleteIssue)
		core.GET("/issues/:id/history", h.IssueHistory)

		core.GET("/issue-messages", h.ListIssueMessages)
		core.POST("/issue-messages", h.CreateIssueMessage)
		core.PUT("/issue-messages/:id", h.UpdateIssueMessage)
		core.DELETE("/issue-messages/:id", h.DeleteIssueMessage)

		core.GET("/sprints", h.ListSprints)
		core.POST("/sprints", h.CreateSprint)
		core.GET("/sprints/:id", h.GetSprint)
		core.PUT("/sprints/:id", h.UpdateSprint)
		core.DELETE("/sprints/:id", h.DeleteSprint)
		core.GET("/sprints/:id/issues", h.ListSprintIssues)
		core.POST("/sprints/:id/issues", h.AddSprintIssues)
		core.DELETE("/sprints/:id/issues", h.RemoveSprintIssues)
		core.POST("/sprints/:id/start", h.StartSprint)
		core.POST("/sprints/:id/complete", h.CompleteSprint)

		core.GET("/sprint-guidelines/:id", h.SprintGuideline)
		core.GET("/sprint-efforts-history/:id", h.SprintEffortsHistory)
	}

	return r
}
