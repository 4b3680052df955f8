package repo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

type WorkingDaysRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewWorkingDaysRepo(d *DB, log zerolog.Logger) *WorkingDaysRepo {
	return &WorkingDaysRepo{db: d, log: log}
}

// GetByProject loads the project's schedule together with its
// exception dates.
func (r *WorkingDaysRepo) GetByProject(ctx context.Context, projectID int64) (domain.WorkingDays, error) {
	var w domain.WorkingDays
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, workspace_id, project_id, timezone,
			monday, tuesday, wednesday, thursday, friday, saturday, sunday, updated_at
		 FROM project_working_days WHERE project_id=$1`, projectID).
		Scan(&w.ID, &w.WorkspaceID, &w.ProjectID, &w.Timezone,
			&w.Monday, &w.Tuesday, &w.Wednesday, &w.Thursday, &w.Friday, &w.Saturday, &w.Sunday, &w.UpdatedAt)
	if err != nil {
		return domain.WorkingDays{}, notFound(err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, workspace_id, project_id, date
		 FROM project_non_working_days WHERE project_id=$1 ORDER BY date`, projectID)
	if err != nil {
		return domain.WorkingDays{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var n domain.NonWorkingDay
		if err := rows.Scan(&n.ID, &n.WorkspaceID, &n.ProjectID, &n.Date); err != nil {
			return domain.WorkingDays{}, err
		}
		w.NonWorkingDays = append(w.NonWorkingDays, n)
	}
	return w, rows.Err()
}

func (r *WorkingDaysRepo) Update(ctx context.Context, w domain.WorkingDays) (domain.WorkingDays, error) {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE project_working_days SET timezone=$2,
			monday=$3, tuesday=$4, wednesday=$5, thursday=$6, friday=$7, saturday=$8, sunday=$9,
			updated_at=now()
		 WHERE project_id=$1`,
		w.ProjectID, w.Timezone,
		w.Monday, w.Tuesday, w.Wednesday, w.Thursday, w.Friday, w.Saturday, w.Sunday)
	if err != nil {
		return domain.WorkingDays{}, err
	}
	return r.GetByProject(ctx, w.ProjectID)
}

func (r *WorkingDaysRepo) AddNonWorkingDay(ctx context.Context, n domain.NonWorkingDay) (domain.NonWorkingDay, error) {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO project_non_working_days(workspace_id, project_id, date)
		 VALUES($1,$2,$3)
		 ON CONFLICT (project_id, date) DO UPDATE SET date = EXCLUDED.date
		 RETURNING id`,
		n.WorkspaceID, n.ProjectID, n.Date).Scan(&n.ID)
	if err != nil {
		return domain.NonWorkingDay{}, err
	}
	return n, nil
}

func (r *WorkingDaysRepo) GetNonWorkingDay(ctx context.Context, id int64) (domain.NonWorkingDay, error) {
	var n domain.NonWorkingDay
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, workspace_id, project_id, date
		 FROM project_non_working_days WHERE id=$1`, id).
		Scan(&n.ID, &n.WorkspaceID, &n.ProjectID, &n.Date)
	return n, notFound(err)
}

func (r *WorkingDaysRepo) RemoveNonWorkingDay(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM project_non_working_days WHERE id=$1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}
