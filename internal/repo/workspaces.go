package repo

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

type WorkspacesRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewWorkspacesRepo(d *DB, log zerolog.Logger) *WorkspacesRepo {
	return &WorkspacesRepo{db: d, log: log}
}

// Create inserts the workspace and makes the owner a participant in
// the same transaction. Prefix URLs are stored uppercase so users can
// not register the same workspace in different cases.
func (r *WorkspacesRepo) Create(ctx context.Context, w domain.Workspace) (domain.Workspace, error) {
	w.PrefixURL = strings.ToUpper(w.PrefixURL)
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO workspaces(prefix_url, owned_by) VALUES($1,$2)
			 RETURNING id, created_at`,
			w.PrefixURL, w.OwnedByID)
		if err := row.Scan(&w.ID, &w.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO workspace_participants(workspace_id, person_id) VALUES($1,$2)`,
			w.ID, w.OwnedByID)
		return err
	})
	if err != nil {
		return domain.Workspace{}, err
	}
	w.Participants = []int64{w.OwnedByID}
	return w, nil
}

func (r *WorkspacesRepo) GetByID(ctx context.Context, id int64) (domain.Workspace, error) {
	var w domain.Workspace
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, prefix_url, owned_by, created_at FROM workspaces WHERE id=$1`, id)
	if err := row.Scan(&w.ID, &w.PrefixURL, &w.OwnedByID, &w.CreatedAt); err != nil {
		return domain.Workspace{}, notFound(err)
	}
	participants, err := r.participants(ctx, w.ID)
	if err != nil {
		return domain.Workspace{}, err
	}
	w.Participants = participants
	return w, nil
}

func (r *WorkspacesRepo) GetByPrefixURL(ctx context.Context, prefix string) (domain.Workspace, error) {
	var id int64
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id FROM workspaces WHERE prefix_url=$1`, strings.ToUpper(prefix))
	if err := row.Scan(&id); err != nil {
		return domain.Workspace{}, notFound(err)
	}
	return r.GetByID(ctx, id)
}

func (r *WorkspacesRepo) ListForPerson(ctx context.Context, personID int64) ([]domain.Workspace, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT w.id, w.prefix_url, w.owned_by, w.created_at
		 FROM workspaces w
		 JOIN workspace_participants p ON p.workspace_id = w.id
		 WHERE p.person_id = $1
		 ORDER BY w.created_at DESC`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Workspace
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.ID, &w.PrefixURL, &w.OwnedByID, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WorkspacesRepo) AddParticipant(ctx context.Context, workspaceID, personID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO workspace_participants(workspace_id, person_id) VALUES($1,$2)
		 ON CONFLICT DO NOTHING`, workspaceID, personID)
	return err
}

func (r *WorkspacesRepo) IsParticipant(ctx context.Context, workspaceID, personID int64) (bool, error) {
	var ok bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM workspace_participants WHERE workspace_id=$1 AND person_id=$2)`,
		workspaceID, personID).Scan(&ok)
	return ok, err
}

func (r *WorkspacesRepo) participants(ctx context.Context, workspaceID int64) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT person_id FROM workspace_participants WHERE workspace_id=$1 ORDER BY person_id`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
