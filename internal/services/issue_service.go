package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
	"github.com/cybersturmer/pmdragon-core-api/internal/events"
	"github.com/cybersturmer/pmdragon-core-api/internal/metrics"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
	"github.com/cybersturmer/pmdragon-core-api/internal/sprint"
)

// emptyParagraphPattern matches the empty paragraphs rich-text editors
// leave behind; they are stripped from descriptions before storing.
var emptyParagraphPattern = regexp.MustCompile(`<p>(\s|&nbsp;)*</p>`)

type IssueService struct {
	log        zerolog.Logger
	issues     *repo.IssuesRepo
	categories *repo.CategoriesRepo
	sprints    *repo.SprintsRepo
	persons    *repo.PersonsRepo
	live       LiveEvents
}

func NewIssueService(log zerolog.Logger, issues *repo.IssuesRepo,
	categories *repo.CategoriesRepo, sprints *repo.SprintsRepo,
	persons *repo.PersonsRepo, live LiveEvents) *IssueService {
	return &IssueService{
		log: log, issues: issues, categories: categories,
		sprints: sprints, persons: persons, live: live,
	}
}

// Create resolves missing type and state to the project defaults,
// cleans the description and stores the issue into the backlog.
func (s *IssueService) Create(ctx context.Context, i domain.Issue) (domain.Issue, error) {
	i.Description = sanitizeDescription(i.Description)

	if i.TypeCategoryID == nil {
		def, err := s.categories.GetDefaultType(ctx, i.ProjectID)
		if err == nil {
			i.TypeCategoryID = &def.ID
		} else if !errors.Is(err, domain.ErrNotFound) {
			return domain.Issue{}, err
		}
	}
	if i.StateCategoryID == nil {
		def, err := s.categories.GetDefaultState(ctx, i.ProjectID)
		if err == nil {
			i.StateCategoryID = &def.ID
		} else if !errors.Is(err, domain.ErrNotFound) {
			return domain.Issue{}, err
		}
	}

	created, err := s.issues.Create(ctx, i)
	if err != nil {
		return domain.Issue{}, err
	}
	s.live.Publish(ctx, created.WorkspaceID, events.Event{Entity: "issue", Action: "created", ID: created.ID})
	return created, nil
}

func (s *IssueService) Get(ctx context.Context, id int64) (domain.Issue, error) {
	return s.issues.GetByID(ctx, id)
}

func (s *IssueService) ListByProject(ctx context.Context, projectID int64) ([]domain.Issue, error) {
	return s.issues.ListByProject(ctx, projectID)
}

func (s *IssueService) ListBacklog(ctx context.Context, projectID int64) ([]domain.Issue, error) {
	return s.issues.ListBacklog(ctx, projectID)
}

func (s *IssueService) History(ctx context.Context, issueID int64) ([]domain.IssueHistoryEntry, error) {
	return s.issues.ListHistory(ctx, issueID)
}

// Update applies the change, journals every edited field and feeds the
// burn-down ledger when the issue sits in the going sprint.
func (s *IssueService) Update(ctx context.Context, i domain.Issue) (domain.Issue, error) {
	before, err := s.issues.GetByID(ctx, i.ID)
	if err != nil {
		return domain.Issue{}, err
	}
	i.Description = sanitizeDescription(i.Description)

	updated, err := s.issues.Update(ctx, i)
	if err != nil {
		return domain.Issue{}, err
	}

	if entries := diffIssue(before, updated, s.historyValue(ctx)); len(entries) > 0 {
		if err := s.issues.AddHistory(ctx, entries); err != nil {
			s.log.Warn().Err(err).Int64("issue", updated.ID).Msg("history write failed")
		}
	}

	s.onIssueChanged(ctx, updated)
	s.live.Publish(ctx, updated.WorkspaceID, events.Event{Entity: "issue", Action: "updated", ID: updated.ID})
	return updated, nil
}

func (s *IssueService) Delete(ctx context.Context, id int64) error {
	i, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}
	s.onIssueChanged(ctx, i)
	s.live.Publish(ctx, i.WorkspaceID, events.Event{Entity: "issue", Action: "deleted", ID: id})
	return nil
}

// onIssueChanged is the efforts-ledger trigger. When the issue belongs
// to the project's going sprint, the aggregates are recomputed and a
// snapshot appended if they moved. Everything else is a no-op.
func (s *IssueService) onIssueChanged(ctx context.Context, i domain.Issue) {
	going, err := s.sprints.GetStartedForProject(ctx, i.ProjectID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Int64("project", i.ProjectID).Msg("going sprint lookup failed")
		}
		return
	}

	sprintID, err := s.issues.SprintOf(ctx, i.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("issue", i.ID).Msg("sprint membership lookup failed")
		return
	}
	if sprintID == nil || *sprintID != going.ID {
		return
	}

	efforts, err := s.issues.ListEfforts(ctx, going.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("sprint", going.ID).Msg("aggregates recompute failed")
		return
	}
	total, done := sprint.SnapshotValues(efforts)
	appended, err := s.sprints.AppendSnapshotIfChanged(ctx, going.ID, total, done)
	if err != nil {
		s.log.Error().Err(err).Int64("sprint", going.ID).Msg("snapshot append failed")
		return
	}
	if appended {
		metrics.SnapshotsAppended.Inc()
		s.log.Debug().Int64("sprint", going.ID).Int("total", total).Int("done", done).
			Msg("efforts snapshot appended")
	}
}

func sanitizeDescription(description string) string {
	return strings.TrimSpace(emptyParagraphPattern.ReplaceAllString(description, ""))
}

// refResolver renders a reference field for the journal: the referenced
// row's title rather than its id, "None" for the empty reference.
type refResolver func(field string, id *int64) string

// historyValue resolves references through the dictionaries and the
// person directory, falling back to the raw id when the row is gone.
func (s *IssueService) historyValue(ctx context.Context) refResolver {
	return func(field string, id *int64) string {
		if id == nil {
			return "None"
		}
		switch field {
		case "Type":
			if c, err := s.categories.GetType(ctx, *id); err == nil {
				return c.Title
			}
		case "State":
			if c, err := s.categories.GetState(ctx, *id); err == nil {
				return c.Title
			}
		case "Estimation":
			if c, err := s.categories.GetEstimation(ctx, *id); err == nil {
				return c.Title
			}
		case "Assignee":
			if p, err := s.persons.GetByID(ctx, *id); err == nil {
				return p.Title()
			}
		}
		return strconv.FormatInt(*id, 10)
	}
}

// diffIssue turns the field-level differences into journal entries.
func diffIssue(before, after domain.Issue, resolve refResolver) []domain.IssueHistoryEntry {
	var entries []domain.IssueHistoryEntry
	add := func(field, beforeValue, afterValue string) {
		entries = append(entries, domain.IssueHistoryEntry{
			IssueID:     after.ID,
			EditedField: field,
			BeforeValue: beforeValue,
			AfterValue:  afterValue,
			ChangedByID: after.UpdatedByID,
		})
	}

	if before.Title != after.Title {
		add("Title", before.Title, after.Title)
	}
	if before.Description != after.Description {
		add("Description", before.Description, after.Description)
	}
	if refChanged(before.TypeCategoryID, after.TypeCategoryID) {
		add("Type", resolve("Type", before.TypeCategoryID), resolve("Type", after.TypeCategoryID))
	}
	if refChanged(before.StateCategoryID, after.StateCategoryID) {
		add("State", resolve("State", before.StateCategoryID), resolve("State", after.StateCategoryID))
	}
	if refChanged(before.EstimationCategoryID, after.EstimationCategoryID) {
		add("Estimation", resolve("Estimation", before.EstimationCategoryID), resolve("Estimation", after.EstimationCategoryID))
	}
	if refChanged(before.AssigneeID, after.AssigneeID) {
		add("Assignee", resolve("Assignee", before.AssigneeID), resolve("Assignee", after.AssigneeID))
	}
	return entries
}

func refChanged(a, b *int64) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	return *a != *b
}
