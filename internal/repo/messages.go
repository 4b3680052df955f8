package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

const messageColumns = `id, workspace_id, project_id, issue_id, description,
	created_by, created_at, updated_at`

type MessagesRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewMessagesRepo(d *DB, log zerolog.Logger) *MessagesRepo {
	return &MessagesRepo{db: d, log: log}
}

func scanMessage(row pgx.Row) (domain.IssueMessage, error) {
	var m domain.IssueMessage
	err := row.Scan(&m.ID, &m.WorkspaceID, &m.ProjectID, &m.IssueID, &m.Description,
		&m.CreatedByID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *MessagesRepo) Create(ctx context.Context, m domain.IssueMessage) (domain.IssueMessage, error) {
	row := r.db.Pool.QueryRow(ctx,
		`INSERT INTO issue_messages(workspace_id, project_id, issue_id, description, created_by)
		 VALUES($1,$2,$3,$4,$5) RETURNING `+messageColumns,
		m.WorkspaceID, m.ProjectID, m.IssueID, m.Description, m.CreatedByID)
	return scanMessage(row)
}

func (r *MessagesRepo) GetByID(ctx context.Context, id int64) (domain.IssueMessage, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM issue_messages WHERE id=$1`, id)
	m, err := scanMessage(row)
	return m, notFound(err)
}

func (r *MessagesRepo) ListByIssue(ctx context.Context, issueID int64) ([]domain.IssueMessage, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+messageColumns+` FROM issue_messages WHERE issue_id=$1 ORDER BY created_at, id`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.IssueMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessagesRepo) Update(ctx context.Context, id int64, description string) (domain.IssueMessage, error) {
	row := r.db.Pool.QueryRow(ctx,
		`UPDATE issue_messages SET description=$2, updated_at=now()
		 WHERE id=$1 RETURNING `+messageColumns, id, description)
	m, err := scanMessage(row)
	return m, notFound(err)
}

func (r *MessagesRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM issue_messages WHERE id=$1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}
