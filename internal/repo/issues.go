package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
	"github.com/cybersturmer/pmdragon-core-api/internal/sprint"
)

const issueColumns = `id, workspace_id, project_id, number, title, description,
	type_category_id, state_category_id, estimation_category_id,
	assignee_id, created_by, updated_by, ordering, created_at, updated_at`

type IssuesRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewIssuesRepo(d *DB, log zerolog.Logger) *IssuesRepo {
	return &IssuesRepo{db: d, log: log}
}

func scanIssue(row pgx.Row) (domain.Issue, error) {
	var i domain.Issue
	err := row.Scan(&i.ID, &i.WorkspaceID, &i.ProjectID, &i.Number, &i.Title, &i.Description,
		&i.TypeCategoryID, &i.StateCategoryID, &i.EstimationCategoryID,
		&i.AssigneeID, &i.CreatedByID, &i.UpdatedByID, &i.Ordering, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// Create inserts the issue with the next per-project number. The
// number subquery and the insert share one transaction, the unique
// index on (project_id, number) catches concurrent writers.
func (r *IssuesRepo) Create(ctx context.Context, i domain.Issue) (domain.Issue, error) {
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO issues(workspace_id, project_id, number, title, description,
				type_category_id, state_category_id, estimation_category_id,
				assignee_id, created_by, updated_by, ordering)
			 VALUES($1,$2,
				(SELECT COALESCE(MAX(number),0)+1 FROM issues WHERE project_id=$2),
				$3,$4,$5,$6,$7,$8,$9,$9,$10)
			 RETURNING `+issueColumns,
			i.WorkspaceID, i.ProjectID, i.Title, i.Description,
			i.TypeCategoryID, i.StateCategoryID, i.EstimationCategoryID,
			i.AssigneeID, i.CreatedByID, i.Ordering)
		var err error
		i, err = scanIssue(row)
		return err
	})
	if err != nil {
		return domain.Issue{}, err
	}
	return i, nil
}

func (r *IssuesRepo) GetByID(ctx context.Context, id int64) (domain.Issue, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id=$1`, id)
	i, err := scanIssue(row)
	return i, notFound(err)
}

func (r *IssuesRepo) Update(ctx context.Context, i domain.Issue) (domain.Issue, error) {
	row := r.db.Pool.QueryRow(ctx,
		`UPDATE issues SET title=$2, description=$3, type_category_id=$4,
			state_category_id=$5, estimation_category_id=$6, assignee_id=$7,
			updated_by=$8, ordering=$9, updated_at=now()
		 WHERE id=$1
		 RETURNING `+issueColumns,
		i.ID, i.Title, i.Description, i.TypeCategoryID,
		i.StateCategoryID, i.EstimationCategoryID, i.AssigneeID,
		i.UpdatedByID, i.Ordering)
	out, err := scanIssue(row)
	return out, notFound(err)
}

func (r *IssuesRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

func (r *IssuesRepo) ListByProject(ctx context.Context, projectID int64) ([]domain.Issue, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE project_id=$1 ORDER BY ordering, id`, projectID)
	if err != nil {
		return nil, err
	}
	return collectIssues(rows)
}

// ListBacklog returns the project's issues outside any sprint,
// unestimated ones last so refinement sees them grouped.
func (r *IssuesRepo) ListBacklog(ctx context.Context, projectID int64) ([]domain.Issue, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+issueColumns+` FROM issues
		 WHERE project_id=$1
		   AND id NOT IN (SELECT issue_id FROM sprint_issues)
		 ORDER BY ordering, id`, projectID)
	if err != nil {
		return nil, err
	}
	return collectIssues(rows)
}

func (r *IssuesRepo) ListBySprint(ctx context.Context, sprintID int64) ([]domain.Issue, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+issueColumns+` FROM issues i
		 JOIN sprint_issues si ON si.issue_id = i.id
		 WHERE si.sprint_id=$1
		 ORDER BY i.ordering, i.id`, sprintID)
	if err != nil {
		return nil, err
	}
	return collectIssues(rows)
}

func collectIssues(rows pgx.Rows) ([]domain.Issue, error) {
	defer rows.Close()
	var out []domain.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// querier is the slice of pgxpool.Pool and pgx.Tx the read helpers
// need, so the same query runs inside and outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ListEfforts projects a sprint's issues down to the story-point view
// the aggregate calculators take: estimation value joined from the
// estimation dictionary, done flag joined from the state dictionary.
func (r *IssuesRepo) ListEfforts(ctx context.Context, sprintID int64) ([]sprint.IssueEffort, error) {
	return queryEfforts(ctx, r.db.Pool, sprintID)
}

func queryEfforts(ctx context.Context, q querier, sprintID int64) ([]sprint.IssueEffort, error) {
	rows, err := q.Query(ctx,
		`SELECT est.value, COALESCE(st.is_done, false)
		 FROM issues i
		 JOIN sprint_issues si ON si.issue_id = i.id
		 LEFT JOIN issue_estimation_categories est ON est.id = i.estimation_category_id
		 LEFT JOIN issue_state_categories st ON st.id = i.state_category_id
		 WHERE si.sprint_id=$1`, sprintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []sprint.IssueEffort
	for rows.Next() {
		var e sprint.IssueEffort
		if err := rows.Scan(&e.EstimationValue, &e.IsDone); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SprintOf reports which sprint the issue currently belongs to, nil
// for backlog issues.
func (r *IssuesRepo) SprintOf(ctx context.Context, issueID int64) (*int64, error) {
	var sprintID *int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT sprint_id FROM sprint_issues WHERE issue_id=$1`, issueID).Scan(&sprintID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sprintID, err
}

// ---- history ----

func (r *IssuesRepo) AddHistory(ctx context.Context, entries []domain.IssueHistoryEntry) error {
	for _, e := range entries {
		_, err := r.db.Pool.Exec(ctx,
			`INSERT INTO issue_history(issue_id, edited_field, before_value, after_value, changed_by)
			 VALUES($1,$2,$3,$4,$5)`,
			e.IssueID, e.EditedField, e.BeforeValue, e.AfterValue, e.ChangedByID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *IssuesRepo) ListHistory(ctx context.Context, issueID int64) ([]domain.IssueHistoryEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, issue_id, edited_field, before_value, after_value, changed_by, created_at
		 FROM issue_history WHERE issue_id=$1 ORDER BY created_at, id`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.IssueHistoryEntry
	for rows.Next() {
		var e domain.IssueHistoryEntry
		if err := rows.Scan(&e.ID, &e.IssueID, &e.EditedField, &e.BeforeValue, &e.AfterValue, &e.ChangedByID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
