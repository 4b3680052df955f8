package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
	"github.com/cybersturmer/pmdragon-core-api/internal/events"
	"github.com/cybersturmer/pmdragon-core-api/internal/metrics"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
	"github.com/cybersturmer/pmdragon-core-api/internal/sprint"
)

type SprintService struct {
	log         zerolog.Logger
	sprints     *repo.SprintsRepo
	issues      *repo.IssuesRepo
	categories  *repo.CategoriesRepo
	workingDays *repo.WorkingDaysRepo
	live        LiveEvents
}

func NewSprintService(log zerolog.Logger, sprints *repo.SprintsRepo,
	issues *repo.IssuesRepo, categories *repo.CategoriesRepo,
	workingDays *repo.WorkingDaysRepo, live LiveEvents) *SprintService {
	return &SprintService{
		log: log, sprints: sprints, issues: issues,
		categories: categories, workingDays: workingDays, live: live,
	}
}

func (s *SprintService) Create(ctx context.Context, sp domain.Sprint) (domain.Sprint, error) {
	created, err := s.sprints.Create(ctx, sp)
	if err != nil {
		return domain.Sprint{}, err
	}
	s.live.Publish(ctx, created.WorkspaceID, events.Event{Entity: "sprint", Action: "created", ID: created.ID})
	return created, nil
}

func (s *SprintService) Get(ctx context.Context, id int64) (domain.Sprint, error) {
	return s.sprints.GetByID(ctx, id)
}

func (s *SprintService) ListByProject(ctx context.Context, projectID int64) ([]domain.Sprint, error) {
	return s.sprints.ListByProject(ctx, projectID)
}

func (s *SprintService) Update(ctx context.Context, sp domain.Sprint) (domain.Sprint, error) {
	if err := validateSprintWindow(sp); err != nil {
		return domain.Sprint{}, err
	}
	updated, err := s.sprints.Update(ctx, sp)
	if err != nil {
		return domain.Sprint{}, err
	}
	s.live.Publish(ctx, updated.WorkspaceID, events.Event{Entity: "sprint", Action: "updated", ID: updated.ID})
	return updated, nil
}

// validateSprintWindow enforces the window invariants on every save: a
// started sprint keeps both dates, and whenever both dates are present
// the start comes first.
func validateSprintWindow(sp domain.Sprint) error {
	if sp.IsStarted && (sp.StartedAt == nil || sp.FinishedAt == nil) {
		return domain.NewError(domain.CodeValidation, domain.ErrSprintDatesRequired)
	}
	if sp.StartedAt != nil && sp.FinishedAt != nil && !sp.StartedAt.Before(*sp.FinishedAt) {
		return domain.NewError(domain.CodeValidation, domain.ErrSprintDatesOrder)
	}
	return nil
}

// Delete removes the sprint; its issues fall back to the backlog.
func (s *SprintService) Delete(ctx context.Context, id int64) error {
	sp, err := s.sprints.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sprints.Delete(ctx, id); err != nil {
		return err
	}
	s.live.Publish(ctx, sp.WorkspaceID, events.Event{Entity: "sprint", Action: "deleted", ID: id})
	return nil
}

func (s *SprintService) Issues(ctx context.Context, sprintID int64) ([]domain.Issue, error) {
	return s.issues.ListBySprint(ctx, sprintID)
}

// AddIssues moves issues into the sprint and refreshes the efforts
// ledger when the sprint is already going: scope changes after start
// are part of the history.
func (s *SprintService) AddIssues(ctx context.Context, sprintID int64, issueIDs []int64) error {
	if err := s.sprints.AddIssues(ctx, sprintID, issueIDs); err != nil {
		if errors.Is(err, domain.ErrIssueOutsideProject) {
			return domain.NewError(domain.CodeValidation, err)
		}
		return err
	}
	return s.refreshLedger(ctx, sprintID)
}

func (s *SprintService) RemoveIssues(ctx context.Context, sprintID int64, issueIDs []int64) error {
	if err := s.sprints.RemoveIssues(ctx, sprintID, issueIDs); err != nil {
		return err
	}
	return s.refreshLedger(ctx, sprintID)
}

func (s *SprintService) refreshLedger(ctx context.Context, sprintID int64) error {
	sp, err := s.sprints.GetByID(ctx, sprintID)
	if err != nil {
		return err
	}
	if !sp.IsStarted || sp.IsCompleted {
		return nil
	}
	efforts, err := s.issues.ListEfforts(ctx, sprintID)
	if err != nil {
		return err
	}
	total, done := sprint.SnapshotValues(efforts)
	appended, err := s.sprints.AppendSnapshotIfChanged(ctx, sprintID, total, done)
	if appended {
		metrics.SnapshotsAppended.Inc()
	}
	return err
}

// Start flips the sprint into its going state: dates validated,
// single-going-sprint invariant enforced, member issues reset to the
// project's default board state, first efforts snapshot seeded.
func (s *SprintService) Start(ctx context.Context, id int64, startedAt, finishedAt *time.Time) (domain.Sprint, error) {
	if startedAt == nil || finishedAt == nil {
		return domain.Sprint{}, domain.NewError(domain.CodeValidation, domain.ErrSprintDatesRequired)
	}
	if !startedAt.Before(*finishedAt) {
		return domain.Sprint{}, domain.NewError(domain.CodeValidation, domain.ErrSprintDatesOrder)
	}

	sp, err := s.sprints.GetByID(ctx, id)
	if err != nil {
		return domain.Sprint{}, err
	}
	defaultState, err := s.categories.GetDefaultState(ctx, sp.ProjectID)
	if err != nil {
		return domain.Sprint{}, err
	}

	started, err := s.sprints.Start(ctx, id, *startedAt, *finishedAt, defaultState.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSprintAlreadyGoing) {
			return domain.Sprint{}, domain.NewError(domain.CodeConflict, err)
		}
		return domain.Sprint{}, err
	}

	s.log.Info().Int64("sprint", id).Time("started_at", *startedAt).Time("finished_at", *finishedAt).
		Msg("sprint started")
	s.live.Publish(ctx, started.WorkspaceID, events.Event{Entity: "sprint", Action: "started", ID: id})
	return started, nil
}

// Complete marks the sprint done; unfinished issues return to the
// backlog.
func (s *SprintService) Complete(ctx context.Context, id int64) (domain.Sprint, error) {
	completed, err := s.sprints.Complete(ctx, id)
	if err != nil {
		return domain.Sprint{}, err
	}
	s.live.Publish(ctx, completed.WorkspaceID, events.Event{Entity: "sprint", Action: "completed", ID: id})
	return completed, nil
}

// EffortsHistory lists the sprint's efforts ledger, oldest first.
func (s *SprintService) EffortsHistory(ctx context.Context, sprintID int64) ([]domain.EffortSnapshot, error) {
	if _, err := s.sprints.GetByID(ctx, sprintID); err != nil {
		return nil, err
	}
	return s.sprints.ListSnapshots(ctx, sprintID)
}

// Guideline projects the burn-down guideline for a going sprint. The
// baseline is the total of the first ledger row; a missing calendar or
// ledger is a data-integrity fault, not a lookup miss.
func (s *SprintService) Guideline(ctx context.Context, sprintID int64) ([]sprint.DayPoint, error) {
	sp, err := s.sprints.GetByID(ctx, sprintID)
	if err != nil {
		metrics.GuidelineRequests.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if !sp.IsStarted || sp.StartedAt == nil || sp.FinishedAt == nil {
		metrics.GuidelineRequests.WithLabelValues("not_started").Inc()
		return nil, domain.NewError(domain.CodeSprintNotStarted, domain.ErrSprintNotStarted)
	}

	workingDays, err := s.workingDays.GetByProject(ctx, sp.ProjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.GuidelineRequests.WithLabelValues("missing_calendar").Inc()
			return nil, domain.NewError(domain.CodeMissingCalendar, domain.ErrMissingCalendar)
		}
		return nil, err
	}

	baseline, err := s.sprints.FirstSnapshot(ctx, sprintID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.GuidelineRequests.WithLabelValues("missing_baseline").Inc()
			return nil, domain.NewError(domain.CodeMissingBaseline, domain.ErrMissingBaseline)
		}
		return nil, err
	}

	metrics.GuidelineRequests.WithLabelValues("ok").Inc()
	return sprint.NewAnalyser(sp, workingDays).Guideline(baseline.TotalValue), nil
}
