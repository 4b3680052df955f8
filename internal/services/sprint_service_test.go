package services

import (
	"errors"
	"testing"
	"time"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

func timep(v time.Time) *time.Time { return &v }

func TestValidateSprintWindow(t *testing.T) {
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := start.AddDate(0, 0, 14)

	cases := []struct {
		name   string
		sprint domain.Sprint
		want   error
	}{
		{"planned without dates", domain.Sprint{}, nil},
		{"planned with proper window", domain.Sprint{StartedAt: timep(start), FinishedAt: timep(finish)}, nil},
		{"started with proper window", domain.Sprint{IsStarted: true, StartedAt: timep(start), FinishedAt: timep(finish)}, nil},
		{"started without dates", domain.Sprint{IsStarted: true}, domain.ErrSprintDatesRequired},
		{"started missing finish", domain.Sprint{IsStarted: true, StartedAt: timep(start)}, domain.ErrSprintDatesRequired},
		{"inverted window", domain.Sprint{StartedAt: timep(finish), FinishedAt: timep(start)}, domain.ErrSprintDatesOrder},
		{"zero-length window", domain.Sprint{IsStarted: true, StartedAt: timep(start), FinishedAt: timep(start)}, domain.ErrSprintDatesOrder},
	}
	for _, c := range cases {
		err := validateSprintWindow(c.sprint)
		if c.want == nil {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", c.name, err)
			}
			continue
		}
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, err)
		}
		if code := domain.CodeOf(err); code != domain.CodeValidation {
			t.Fatalf("%s: expected validation code, got %s", c.name, code)
		}
	}
}
