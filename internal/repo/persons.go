package repo

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

type PersonsRepo struct {
	db  *DB
	log zerolog.Logger
}

func NewPersonsRepo(d *DB, log zerolog.Logger) *PersonsRepo {
	return &PersonsRepo{db: d, log: log}
}

const personColumns = `id, username, email, password_hash, first_name, last_name,
	phone, is_active, created_at, last_login`

func scanPerson(row interface{ Scan(...any) error }) (domain.Person, error) {
	var p domain.Person
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.FirstName,
		&p.LastName, &p.Phone, &p.IsActive, &p.CreatedAt, &p.LastLogin)
	return p, notFound(err)
}

func (r *PersonsRepo) Create(ctx context.Context, p domain.Person) (domain.Person, error) {
	const q = `INSERT INTO persons(username, email, password_hash, first_name, last_name, phone)
		VALUES($1,$2,$3,$4,$5,$6)
		RETURNING ` + personColumns
	row := r.db.Pool.QueryRow(ctx, q, p.Username, p.Email, p.PasswordHash,
		p.FirstName, p.LastName, p.Phone)
	return scanPerson(row)
}

func (r *PersonsRepo) GetByID(ctx context.Context, id int64) (domain.Person, error) {
	const q = `SELECT ` + personColumns + ` FROM persons WHERE id=$1`
	return scanPerson(r.db.Pool.QueryRow(ctx, q, id))
}

func (r *PersonsRepo) GetByUsername(ctx context.Context, username string) (domain.Person, error) {
	const q = `SELECT ` + personColumns + ` FROM persons WHERE username=$1`
	return scanPerson(r.db.Pool.QueryRow(ctx, q, username))
}

func (r *PersonsRepo) GetByEmail(ctx context.Context, email string) (domain.Person, error) {
	const q = `SELECT ` + personColumns + ` FROM persons WHERE email=$1`
	return scanPerson(r.db.Pool.QueryRow(ctx, q, email))
}

func (r *PersonsRepo) SetPassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE persons SET password_hash=$2 WHERE id=$1`, id, hash)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

func (r *PersonsRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE persons SET last_login=$2 WHERE id=$1`, id, at)
	return err
}
