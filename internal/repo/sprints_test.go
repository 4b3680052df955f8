package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

type countRow struct {
	n   int
	err error
}

func (r countRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.n
	return nil
}

type countQuerier struct {
	row countRow
}

func (q countQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.row
}

func TestCheckIssuesInProject_AcceptsOwnIssues(t *testing.T) {
	q := countQuerier{countRow{n: 2}}
	if err := checkIssuesInProject(context.Background(), q, 1, []int64{10, 11}); err != nil {
		t.Fatalf("own issues rejected: %v", err)
	}
}

func TestCheckIssuesInProject_RejectsForeignIssues(t *testing.T) {
	q := countQuerier{countRow{n: 1}}
	err := checkIssuesInProject(context.Background(), q, 1, []int64{10, 11})
	if !errors.Is(err, domain.ErrIssueOutsideProject) {
		t.Fatalf("expected outside-project error, got %v", err)
	}
}

func TestCheckIssuesInProject_CollapsesDuplicates(t *testing.T) {
	// The count from the database is over distinct rows, repeated ids
	// in the request must not trip the guard.
	q := countQuerier{countRow{n: 1}}
	if err := checkIssuesInProject(context.Background(), q, 1, []int64{10, 10}); err != nil {
		t.Fatalf("duplicated id rejected: %v", err)
	}
}

func TestCheckIssuesInProject_PropagatesQueryError(t *testing.T) {
	wantErr := errors.New("boom")
	q := countQuerier{countRow{err: wantErr}}
	if err := checkIssuesInProject(context.Background(), q, 1, []int64{10}); !errors.Is(err, wantErr) {
		t.Fatalf("expected query error, got %v", err)
	}
}
