package repo

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

type ProjectsRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewProjectsRepo(d *DB, log zerolog.Logger) *ProjectsRepo {
	return &ProjectsRepo{db: d, log: log}
}

func (r *ProjectsRepo) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	p.Title = strings.ToUpper(p.Title)
	p.Key = strings.ToUpper(p.Key)
	row := r.db.Pool.QueryRow(ctx,
		`INSERT INTO projects(workspace_id, title, key, owned_by) VALUES($1,$2,$3,$4)
		 RETURNING id, created_at`,
		p.WorkspaceID, p.Title, p.Key, p.OwnedByID)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id int64) (domain.Project, error) {
	var p domain.Project
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, workspace_id, title, key, owned_by, created_at FROM projects WHERE id=$1`, id)
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.Title, &p.Key, &p.OwnedByID, &p.CreatedAt)
	return p, notFound(err)
}

func (r *ProjectsRepo) ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.Project, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, workspace_id, title, key, owned_by, created_at
		 FROM projects WHERE workspace_id=$1 ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Title, &p.Key, &p.OwnedByID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectsRepo) Update(ctx context.Context, p domain.Project) (domain.Project, error) {
	p.Title = strings.ToUpper(p.Title)
	p.Key = strings.ToUpper(p.Key)
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE projects SET title=$2, key=$3 WHERE id=$1`, p.ID, p.Title, p.Key)
	if err != nil {
		return domain.Project{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Project{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ProjectsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

// Bootstrap provisions everything a fresh project needs in one
// transaction: default issue types, states, estimations and the
// working-days settings. The backlog needs no row of its own, issues
// outside any sprint are the backlog.
func (r *ProjectsRepo) Bootstrap(ctx context.Context, p domain.Project) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		types := []struct {
			title     string
			isSubtask bool
			isDefault bool
		}{
			{"Epic", false, false},
			{"User Story", true, true},
			{"Task", true, false},
			{"Bug", false, false},
		}
		for i, t := range types {
			if _, err := tx.Exec(ctx,
				`INSERT INTO issue_type_categories(workspace_id, project_id, title, is_subtask, is_default, ordering)
				 VALUES($1,$2,$3,$4,$5,$6)`,
				p.WorkspaceID, p.ID, t.title, t.isSubtask, t.isDefault, i); err != nil {
				return err
			}
		}

		states := []struct {
			title     string
			isDefault bool
			isDone    bool
		}{
			{"Todo", true, false},
			{"In Progress", false, false},
			{"Verify", false, false},
			{"Done", false, true},
		}
		for i, s := range states {
			if _, err := tx.Exec(ctx,
				`INSERT INTO issue_state_categories(workspace_id, project_id, title, is_default, is_done, ordering)
				 VALUES($1,$2,$3,$4,$5,$6)`,
				p.WorkspaceID, p.ID, s.title, s.isDefault, s.isDone, i); err != nil {
				return err
			}
		}

		estimations := []struct {
			title string
			value int
		}{
			{"XS", 1}, {"SM", 2}, {"M", 3}, {"L", 5}, {"XL", 8}, {"XXL", 13},
		}
		for _, e := range estimations {
			if _, err := tx.Exec(ctx,
				`INSERT INTO issue_estimation_categories(workspace_id, project_id, title, value)
				 VALUES($1,$2,$3,$4)`,
				p.WorkspaceID, p.ID, e.title, e.value); err != nil {
				return err
			}
		}

		wd := domain.DefaultWorkingDays(p.WorkspaceID, p.ID)
		_, err := tx.Exec(ctx,
			`INSERT INTO project_working_days(workspace_id, project_id, timezone,
				monday, tuesday, wednesday, thursday, friday, saturday, sunday)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			wd.WorkspaceID, wd.ProjectID, wd.Timezone,
			wd.Monday, wd.Tuesday, wd.Wednesday, wd.Thursday, wd.Friday, wd.Saturday, wd.Sunday)
		return err
	})
}
