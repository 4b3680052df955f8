package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
	"github.com/cybersturmer/pmdragon-core-api/internal/events"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
)

var errInvalidPrefixURL = errors.New("prefix url must be 3-20 alphanumeric characters")

type ProjectService struct {
	log         zerolog.Logger
	projects    *repo.ProjectsRepo
	categories  *repo.CategoriesRepo
	workingDays *repo.WorkingDaysRepo
	live        LiveEvents
}

func NewProjectService(log zerolog.Logger, projects *repo.ProjectsRepo,
	categories *repo.CategoriesRepo, workingDays *repo.WorkingDaysRepo,
	live LiveEvents) *ProjectService {
	return &ProjectService{
		log: log, projects: projects, categories: categories,
		workingDays: workingDays, live: live,
	}
}

// Create stores the project and bootstraps its defaults: issue types,
// board states, estimations and the working-days schedule. A fresh
// project is ready for planning without any manual dictionary setup.
func (s *ProjectService) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	created, err := s.projects.Create(ctx, p)
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.projects.Bootstrap(ctx, created); err != nil {
		return domain.Project{}, err
	}
	s.live.Publish(ctx, created.WorkspaceID, events.Event{Entity: "project", Action: "created", ID: created.ID})
	return created, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.Project, error) {
	return s.projects.ListByWorkspace(ctx, workspaceID)
}

func (s *ProjectService) Update(ctx context.Context, p domain.Project) (domain.Project, error) {
	updated, err := s.projects.Update(ctx, p)
	if err != nil {
		return domain.Project{}, err
	}
	s.live.Publish(ctx, updated.WorkspaceID, events.Event{Entity: "project", Action: "updated", ID: updated.ID})
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.live.Publish(ctx, p.WorkspaceID, events.Event{Entity: "project", Action: "deleted", ID: id})
	return nil
}

func (s *ProjectService) WorkingDays(ctx context.Context, projectID int64) (domain.WorkingDays, error) {
	return s.workingDays.GetByProject(ctx, projectID)
}

func (s *ProjectService) UpdateWorkingDays(ctx context.Context, w domain.WorkingDays) (domain.WorkingDays, error) {
	return s.workingDays.Update(ctx, w)
}

func (s *ProjectService) AddNonWorkingDay(ctx context.Context, n domain.NonWorkingDay) (domain.NonWorkingDay, error) {
	return s.workingDays.AddNonWorkingDay(ctx, n)
}

func (s *ProjectService) NonWorkingDay(ctx context.Context, id int64) (domain.NonWorkingDay, error) {
	return s.workingDays.GetNonWorkingDay(ctx, id)
}

func (s *ProjectService) RemoveNonWorkingDay(ctx context.Context, id int64) error {
	return s.workingDays.RemoveNonWorkingDay(ctx, id)
}
