package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
	"github.com/cybersturmer/pmdragon-core-api/internal/sprint"
)

const sprintColumns = `id, workspace_id, project_id, title, goal,
	is_started, is_completed, started_at, finished_at`

type SprintsRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewSprintsRepo(d *DB, log zerolog.Logger) *SprintsRepo {
	return &SprintsRepo{db: d, log: log}
}

func scanSprint(row pgx.Row) (domain.Sprint, error) {
	var s domain.Sprint
	err := row.Scan(&s.ID, &s.WorkspaceID, &s.ProjectID, &s.Title, &s.Goal,
		&s.IsStarted, &s.IsCompleted, &s.StartedAt, &s.FinishedAt)
	return s, err
}

func (r *SprintsRepo) Create(ctx context.Context, s domain.Sprint) (domain.Sprint, error) {
	if s.Title == "" {
		s.Title = "New Sprint"
	}
	row := r.db.Pool.QueryRow(ctx,
		`INSERT INTO sprints(workspace_id, project_id, title, goal, started_at, finished_at)
		 VALUES($1,$2,$3,$4,$5,$6) RETURNING `+sprintColumns,
		s.WorkspaceID, s.ProjectID, s.Title, s.Goal, s.StartedAt, s.FinishedAt)
	return scanSprint(row)
}

func (r *SprintsRepo) GetByID(ctx context.Context, id int64) (domain.Sprint, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id=$1`, id)
	s, err := scanSprint(row)
	return s, notFound(err)
}

func (r *SprintsRepo) ListByProject(ctx context.Context, projectID int64) ([]domain.Sprint, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE project_id=$1 ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Sprint
	for rows.Next() {
		s, err := scanSprint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SprintsRepo) Update(ctx context.Context, s domain.Sprint) (domain.Sprint, error) {
	row := r.db.Pool.QueryRow(ctx,
		`UPDATE sprints SET title=$2, goal=$3, started_at=$4, finished_at=$5
		 WHERE id=$1 RETURNING `+sprintColumns,
		s.ID, s.Title, s.Goal, s.StartedAt, s.FinishedAt)
	out, err := scanSprint(row)
	return out, notFound(err)
}

// Delete removes the sprint. Membership rows cascade away, so the
// sprint's issues fall back to the backlog.
func (r *SprintsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sprints WHERE id=$1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

// AddIssues moves issues into the sprint. Membership is exclusive:
// the conflict update steals an issue from whatever sprint held it.
// Only issues of the sprint's own project may enter.
func (r *SprintsRepo) AddIssues(ctx context.Context, sprintID int64, issueIDs []int64) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		var projectID int64
		err := tx.QueryRow(ctx,
			`SELECT project_id FROM sprints WHERE id=$1 FOR UPDATE`, sprintID).Scan(&projectID)
		if err != nil {
			return notFound(err)
		}
		if err := checkIssuesInProject(ctx, tx, projectID, issueIDs); err != nil {
			return err
		}
		for _, issueID := range issueIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO sprint_issues(sprint_id, issue_id) VALUES($1,$2)
				 ON CONFLICT (issue_id) DO UPDATE SET sprint_id = EXCLUDED.sprint_id`,
				sprintID, issueID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// checkIssuesInProject rejects ids that do not all belong to the
// project. Cross-project and cross-workspace issues never enter a
// foreign sprint.
func checkIssuesInProject(ctx context.Context, q rowQuerier, projectID int64, issueIDs []int64) error {
	unique := make(map[int64]struct{}, len(issueIDs))
	for _, id := range issueIDs {
		unique[id] = struct{}{}
	}
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM issues WHERE project_id=$1 AND id = ANY($2)`,
		projectID, issueIDs).Scan(&n)
	if err != nil {
		return err
	}
	if n != len(unique) {
		return domain.ErrIssueOutsideProject
	}
	return nil
}

// RemoveIssues returns issues from the sprint to the backlog.
func (r *SprintsRepo) RemoveIssues(ctx context.Context, sprintID int64, issueIDs []int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM sprint_issues WHERE sprint_id=$1 AND issue_id = ANY($2)`,
		sprintID, issueIDs)
	return err
}

// GetStartedForProject returns the project's single going sprint.
func (r *SprintsRepo) GetStartedForProject(ctx context.Context, projectID int64) (domain.Sprint, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+sprintColumns+` FROM sprints
		 WHERE project_id=$1 AND is_started=true AND is_completed=false`, projectID)
	s, err := scanSprint(row)
	return s, notFound(err)
}

// Start flips the sprint into its going state in one transaction:
// lock the row, enforce the single-going-sprint invariant, stamp the
// window, reset member issues to the default state and seed the first
// efforts snapshot from the aggregates as they stand.
func (r *SprintsRepo) Start(ctx context.Context, id int64, startedAt, finishedAt time.Time, defaultStateID int64) (domain.Sprint, error) {
	var out domain.Sprint
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+sprintColumns+` FROM sprints WHERE id=$1 FOR UPDATE`, id)
		s, err := scanSprint(row)
		if err != nil {
			return notFound(err)
		}
		if s.IsStarted || s.IsCompleted {
			return domain.ErrSprintAlreadyGoing
		}
		var going bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM sprints
			   WHERE project_id=$1 AND is_started=true AND is_completed=false AND id<>$2)`,
			s.ProjectID, id).Scan(&going)
		if err != nil {
			return err
		}
		if going {
			return domain.ErrSprintAlreadyGoing
		}

		row = tx.QueryRow(ctx,
			`UPDATE sprints SET is_started=true, started_at=$2, finished_at=$3
			 WHERE id=$1 RETURNING `+sprintColumns,
			id, startedAt, finishedAt)
		if out, err = scanSprint(row); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE issues SET state_category_id=$2, updated_at=now()
			 WHERE id IN (SELECT issue_id FROM sprint_issues WHERE sprint_id=$1)`,
			id, defaultStateID)
		if err != nil {
			return err
		}

		efforts, err := queryEfforts(ctx, tx, id)
		if err != nil {
			return err
		}
		total, done := sprint.SnapshotValues(efforts)
		_, err = tx.Exec(ctx,
			`INSERT INTO sprint_efforts_history(workspace_id, project_id, sprint_id, total_value, done_value)
			 VALUES($1,$2,$3,$4,$5)`,
			s.WorkspaceID, s.ProjectID, id, total, done)
		return err
	})
	if err != nil {
		return domain.Sprint{}, err
	}
	return out, nil
}

// Complete marks the sprint done and returns its unfinished issues to
// the backlog.
func (r *SprintsRepo) Complete(ctx context.Context, id int64) (domain.Sprint, error) {
	var out domain.Sprint
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE sprints SET is_completed=true WHERE id=$1 RETURNING `+sprintColumns, id)
		var err error
		if out, err = scanSprint(row); err != nil {
			return notFound(err)
		}
		_, err = tx.Exec(ctx,
			`DELETE FROM sprint_issues si
			 USING issues i
			 LEFT JOIN issue_state_categories st ON st.id = i.state_category_id
			 WHERE si.issue_id = i.id AND si.sprint_id=$1 AND COALESCE(st.is_done, false) = false`,
			id)
		return err
	})
	if err != nil {
		return domain.Sprint{}, err
	}
	return out, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ---- efforts history ----

const snapshotColumns = `id, workspace_id, project_id, sprint_id, point_at, total_value, done_value`

func scanSnapshot(row pgx.Row) (domain.EffortSnapshot, error) {
	var e domain.EffortSnapshot
	err := row.Scan(&e.ID, &e.WorkspaceID, &e.ProjectID, &e.SprintID, &e.PointAt, &e.TotalValue, &e.DoneValue)
	return e, err
}

// FirstSnapshot is the chronologically first ledger row, the anchor of
// the burn-down projection.
func (r *SprintsRepo) FirstSnapshot(ctx context.Context, sprintID int64) (domain.EffortSnapshot, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM sprint_efforts_history
		 WHERE sprint_id=$1 ORDER BY point_at, id LIMIT 1`, sprintID)
	e, err := scanSnapshot(row)
	return e, notFound(err)
}

func (r *SprintsRepo) ListSnapshots(ctx context.Context, sprintID int64) ([]domain.EffortSnapshot, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+snapshotColumns+` FROM sprint_efforts_history
		 WHERE sprint_id=$1 ORDER BY point_at, id`, sprintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.EffortSnapshot
	for rows.Next() {
		e, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AppendSnapshotIfChanged appends a ledger row when the aggregates
// moved since the latest one. The sprint row is locked for the whole
// read-compare-insert so two concurrent issue updates cannot both read
// the same latest row and double-append.
func (r *SprintsRepo) AppendSnapshotIfChanged(ctx context.Context, sprintID int64, total, done int) (bool, error) {
	appended := false
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		var workspaceID, projectID int64
		err := tx.QueryRow(ctx,
			`SELECT workspace_id, project_id FROM sprints WHERE id=$1 FOR UPDATE`,
			sprintID).Scan(&workspaceID, &projectID)
		if err != nil {
			return notFound(err)
		}

		var lastTotal, lastDone int
		err = tx.QueryRow(ctx,
			`SELECT total_value, done_value FROM sprint_efforts_history
			 WHERE sprint_id=$1 ORDER BY point_at DESC, id DESC LIMIT 1`,
			sprintID).Scan(&lastTotal, &lastDone)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil && lastTotal == total && lastDone == done {
			return nil
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO sprint_efforts_history(workspace_id, project_id, sprint_id, total_value, done_value)
			 VALUES($1,$2,$3,$4,$5)`,
			workspaceID, projectID, sprintID, total, done)
		if err == nil {
			appended = true
		}
		return err
	})
	return appended, err
}
