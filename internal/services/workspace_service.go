package services

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
)

var prefixURLPattern = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)

type WorkspaceService struct {
	log        zerolog.Logger
	workspaces *repo.WorkspacesRepo
}

func NewWorkspaceService(log zerolog.Logger, workspaces *repo.WorkspacesRepo) *WorkspaceService {
	return &WorkspaceService{log: log, workspaces: workspaces}
}

func (s *WorkspaceService) Create(ctx context.Context, prefixURL string, ownerID int64) (domain.Workspace, error) {
	if !prefixURLPattern.MatchString(prefixURL) {
		return domain.Workspace{}, domain.NewError(domain.CodeValidation,
			errInvalidPrefixURL)
	}
	return s.workspaces.Create(ctx, domain.Workspace{
		PrefixURL: prefixURL,
		OwnedByID: ownerID,
	})
}

func (s *WorkspaceService) Get(ctx context.Context, id int64) (domain.Workspace, error) {
	return s.workspaces.GetByID(ctx, id)
}

func (s *WorkspaceService) ListForPerson(ctx context.Context, personID int64) ([]domain.Workspace, error) {
	return s.workspaces.ListForPerson(ctx, personID)
}

// Authorize checks the person participates in the workspace; every
// workspace-scoped handler goes through it.
func (s *WorkspaceService) Authorize(ctx context.Context, workspaceID, personID int64) error {
	ok, err := s.workspaces.IsParticipant(ctx, workspaceID, personID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewError(domain.CodeForbidden, domain.ErrNotParticipant)
	}
	return nil
}
