package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

// CategoriesRepo serves the three per-project dictionaries: issue
// types, issue states and estimations. A project keeps exactly one
// default type and one default state; writes keep that invariant and
// deleting the default promotes the lowest-id survivor.
type CategoriesRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewCategoriesRepo(d *DB, log zerolog.Logger) *CategoriesRepo {
	return &CategoriesRepo{db: d, log: log}
}

// ---- issue types ----

func (r *CategoriesRepo) CreateType(ctx context.Context, c domain.IssueTypeCategory) (domain.IssueTypeCategory, error) {
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if c.IsDefault {
			if _, err := tx.Exec(ctx,
				`UPDATE issue_type_categories SET is_default=false WHERE project_id=$1`, c.ProjectID); err != nil {
				return err
			}
		}
		row := tx.QueryRow(ctx,
			`INSERT INTO issue_type_categories(workspace_id, project_id, title, is_subtask, is_default, ordering)
			 VALUES($1,$2,$3,$4,$5,$6) RETURNING id`,
			c.WorkspaceID, c.ProjectID, c.Title, c.IsSubtask, c.IsDefault, c.Ordering)
		return row.Scan(&c.ID)
	})
	if err != nil {
		return domain.IssueTypeCategory{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) ListTypes(ctx context.Context, projectID int64) ([]domain.IssueTypeCategory, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, workspace_id, project_id, title, is_subtask, is_default, ordering
		 FROM issue_type_categories WHERE project_id=$1 ORDER BY ordering`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.IssueTypeCategory
	for rows.Next() {
		var c domain.IssueTypeCategory
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.Title, &c.IsSubtask, &c.IsDefault, &c.Ordering); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoriesRepo) GetType(ctx context.Context, id int64) (domain.IssueTypeCategory, error) {
	var c domain.IssueTypeCategory
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, workspace_id, project_id, title, is_subtask, is_default, ordering
		 FROM issue_type_categories WHERE id=$1`, id)
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.Title, &c.IsSubtask, &c.IsDefault, &c.Ordering)
	return c, notFound(err)
}

func (r *CategoriesRepo) GetDefaultType(ctx context.Context, projectID int64) (domain.IssueTypeCategory, error) {
	var c domain.IssueTypeCategory
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, workspace_id, project_id, title, is_subtask, is_default, ordering
		 FROM issue_type_categories WHERE project_id=$1 AND is_default=true`, projectID)
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.Title, &c.IsSubtask, &c.IsDefault, &c.Ordering)
	return c, notFound(err)
}

func (r *CategoriesRepo) DeleteType(ctx context.Context, id int64) error {
	return r.deleteWithDefaultPromote(ctx, "issue_type_categories", id)
}

// ---- issue states ----

func (r *CategoriesRepo) CreateState(ctx context.Context, c domain.IssueStateCategory) (domain.IssueStateCategory, error) {
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if c.IsDefault {
			if _, err := tx.Exec(ctx,
				`UPDATE issue_state_categories SET is_default=false WHERE project_id=$1`, c.ProjectID); err != nil {
				return err
			}
		}
		// Append to the board unless the caller placed it explicitly.
		if c.Ordering == 0 {
			row := tx.QueryRow(ctx,
				`SELECT COALESCE(MAX(ordering),0)+1 FROM issue_state_categories WHERE project_id=$1`, c.ProjectID)
			if err := row.Scan(&c.Ordering); err != nil {
				return err
			}
		}
		row := tx.QueryRow(ctx,
			`INSERT INTO issue_state_categories(workspace_id, project_id, title, is_default, is_done, ordering)
			 VALUES($1,$2,$3,$4,$5,$6) RETURNING id`,
			c.WorkspaceID, c.ProjectID, c.Title, c.IsDefault, c.IsDone, c.Ordering)
		return row.Scan(&c.ID)
	})
	if err != nil {
		return domain.IssueStateCategory{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) ListStates(ctx context.Context, projectID int64) ([]domain.IssueStateCategory, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, workspace_id, project_id, title, is_default, is_done, ordering
		 FROM issue_state_categories WHERE project_id=$1 ORDER BY ordering`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.IssueStateCategory
	for rows.Next() {
		var c domain.IssueStateCategory
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.Title, &c.IsDefault, &c.IsDone, &c.Ordering); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoriesRepo) GetState(ctx context.Context, id int64) (domain.IssueStateCategory, error) {
	var c domain.IssueStateCategory
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, workspace_id, project_id, title, is_default, is_done, ordering
		 FROM issue_state_categories WHERE id=$1`, id)
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.Title, &c.IsDefault, &c.IsDone, &c.Ordering)
	return c, notFound(err)
}

// GetDefaultState is the explicit default-state lookup the issue and
// sprint services inject instead of scattering is_default filters.
func (r *CategoriesRepo) GetDefaultState(ctx context.Context, projectID int64) (domain.IssueStateCategory, error) {
	var c domain.IssueStateCategory
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, workspace_id, project_id, title, is_default, is_done, ordering
		 FROM issue_state_categories WHERE project_id=$1 AND is_default=true`, projectID)
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.Title, &c.IsDefault, &c.IsDone, &c.Ordering)
	return c, notFound(err)
}

func (r *CategoriesRepo) DeleteState(ctx context.Context, id int64) error {
	return r.deleteWithDefaultPromote(ctx, "issue_state_categories", id)
}

// ---- estimations ----

func (r *CategoriesRepo) CreateEstimation(ctx context.Context, c domain.IssueEstimationCategory) (domain.IssueEstimationCategory, error) {
	row := r.db.Pool.QueryRow(ctx,
		`INSERT INTO issue_estimation_categories(workspace_id, project_id, title, value)
		 VALUES($1,$2,$3,$4) RETURNING id`,
		c.WorkspaceID, c.ProjectID, c.Title, c.Value)
	if err := row.Scan(&c.ID); err != nil {
		return domain.IssueEstimationCategory{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) GetEstimation(ctx context.Context, id int64) (domain.IssueEstimationCategory, error) {
	var c domain.IssueEstimationCategory
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, workspace_id, project_id, title, value
		 FROM issue_estimation_categories WHERE id=$1`, id)
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.Title, &c.Value)
	return c, notFound(err)
}

func (r *CategoriesRepo) ListEstimations(ctx context.Context, projectID int64) ([]domain.IssueEstimationCategory, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, workspace_id, project_id, title, value
		 FROM issue_estimation_categories WHERE project_id=$1 ORDER BY value`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.IssueEstimationCategory
	for rows.Next() {
		var c domain.IssueEstimationCategory
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.ProjectID, &c.Title, &c.Value); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoriesRepo) DeleteEstimation(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM issue_estimation_categories WHERE id=$1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

// deleteWithDefaultPromote deletes a type/state row and, when the
// project loses its default, promotes the lowest-id remaining row.
func (r *CategoriesRepo) deleteWithDefaultPromote(ctx context.Context, table string, id int64) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		var projectID int64
		var wasDefault bool
		row := tx.QueryRow(ctx,
			`DELETE FROM `+table+` WHERE id=$1 RETURNING project_id, is_default`, id)
		if err := row.Scan(&projectID, &wasDefault); err != nil {
			return notFound(err)
		}
		if !wasDefault {
			return nil
		}
		_, err := tx.Exec(ctx,
			`UPDATE `+table+` SET is_default=true
			 WHERE id = (SELECT id FROM `+table+` WHERE project_id=$1 ORDER BY id LIMIT 1)`,
			projectID)
		return err
	})
}
