package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/config"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
	"github.com/cybersturmer/pmdragon-core-api/internal/services"
)

type Handlers struct {
	cfg        config.Config
	log        zerolog.Logger
	auth       *services.AuthService
	workspaces *services.WorkspaceService
	projects   *services.ProjectService
	issues     *services.IssueService
	sprints    *services.SprintService
	messages   *services.MessageService
	categories *repo.CategoriesRepo
}

func NewHandlers(cfg config.Config, log zerolog.Logger,
	authSvc *services.AuthService, workspaces *services.WorkspaceService,
	projects *services.ProjectService, issues *services.IssueService,
	sprints *services.SprintService, messages *services.MessageService,
	categories *repo.CategoriesRepo) *Handlers {
	return &Handlers{
		cfg: cfg, log: log,
		auth: authSvc, workspaces: workspaces, projects: projects,
		issues: issues, sprints: sprints, messages: messages,
		categories: categories,
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"error": "invalid or missing " + name})
		return 0, false
	}
	return id, true
}

// authorizeWorkspace rejects callers outside the workspace.
func (h *Handlers) authorizeWorkspace(c *gin.Context, workspaceID int64) bool {
	if err := h.workspaces.Authorize(c.Request.Context(), workspaceID, callerID(c)); err != nil {
		respondError(c, err)
		return false
	}
	return true
}
