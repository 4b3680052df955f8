package repo

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

const requestColumns = `id, kind, key, email, prefix_url, workspace_id,
	is_email_sent, is_accepted, created_at, expired_at`

// RequestsRepo stores the registration, invitation and forgot-password
// requests. All three share the keyed, expiring lifecycle.
type RequestsRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewRequestsRepo(d *DB, log zerolog.Logger) *RequestsRepo {
	return &RequestsRepo{db: d, log: log}
}

func (r *RequestsRepo) Create(ctx context.Context, p domain.ParticipationRequest) (domain.ParticipationRequest, error) {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO participation_requests(kind, key, email, prefix_url, workspace_id, expired_at)
		 VALUES($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		p.Kind, p.Key, p.Email, p.PrefixURL, p.WorkspaceID, p.ExpiredAt).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return domain.ParticipationRequest{}, err
	}
	return p, nil
}

// GetValidByKey resolves an emailed key to its request, refusing
// expired and already-accepted ones.
func (r *RequestsRepo) GetValidByKey(ctx context.Context, kind domain.RequestKind, key string) (domain.ParticipationRequest, error) {
	var p domain.ParticipationRequest
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM participation_requests
		 WHERE kind=$1 AND key=$2 AND is_accepted=false AND expired_at > now()
		 ORDER BY created_at DESC LIMIT 1`, kind, key).
		Scan(&p.ID, &p.Kind, &p.Key, &p.Email, &p.PrefixURL, &p.WorkspaceID,
			&p.IsEmailSent, &p.IsAccepted, &p.CreatedAt, &p.ExpiredAt)
	if err != nil {
		return domain.ParticipationRequest{}, notFound(err)
	}
	return p, nil
}

func (r *RequestsRepo) MarkEmailSent(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE participation_requests SET is_email_sent=true WHERE id=$1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

func (r *RequestsRepo) Accept(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE participation_requests SET is_accepted=true WHERE id=$1 AND is_accepted=false`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

// DeleteExpired removes stale unaccepted requests, called by the
// nightly cleanup job.
func (r *RequestsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM participation_requests WHERE is_accepted=false AND expired_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
