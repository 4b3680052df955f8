package sprint

import "testing"

func intp(v int) *int { return &v }

func TestTotalStoryPoints_NilWithoutEstimations(t *testing.T) {
	if got := TotalStoryPoints(nil); got != nil {
		t.Fatalf("empty sprint: expected nil total, got %d", *got)
	}
	issues := []IssueEffort{{IsDone: true}, {IsDone: false}}
	if got := TotalStoryPoints(issues); got != nil {
		t.Fatalf("no estimated issues: expected nil total, got %d", *got)
	}
}

func TestTotalStoryPoints_SkipsUnestimated(t *testing.T) {
	issues := []IssueEffort{
		{EstimationValue: intp(3)},
		{EstimationValue: nil},
		{EstimationValue: intp(5), IsDone: true},
	}
	got := TotalStoryPoints(issues)
	if got == nil || *got != 8 {
		t.Fatalf("expected total 8, got %v", got)
	}
}

func TestTotalStoryPoints_ZeroEstimationIsNotAbsent(t *testing.T) {
	// An explicit zero-point estimation still counts as estimated.
	got := TotalStoryPoints([]IssueEffort{{EstimationValue: intp(0)}})
	if got == nil || *got != 0 {
		t.Fatalf("expected explicit zero total, got %v", got)
	}
}

func TestCompletedStoryPoints(t *testing.T) {
	issues := []IssueEffort{
		{EstimationValue: intp(3), IsDone: true},
		{EstimationValue: intp(5)},
		{EstimationValue: nil, IsDone: true},
		{EstimationValue: intp(2), IsDone: true},
	}
	if got := CompletedStoryPoints(issues); got != 5 {
		t.Fatalf("expected completed 5, got %d", got)
	}
	if got := CompletedStoryPoints(nil); got != 0 {
		t.Fatalf("empty sprint: expected completed 0, got %d", got)
	}
}

func TestSnapshotValues(t *testing.T) {
	issues := []IssueEffort{
		{EstimationValue: intp(3), IsDone: true},
		{EstimationValue: intp(5)},
		{EstimationValue: nil, IsDone: true},
	}
	total, done := SnapshotValues(issues)
	if total != 8 || done != 3 {
		t.Fatalf("expected total 8 done 3, got %d %d", total, done)
	}
}

func TestSnapshotValues_FlattensAbsentTotal(t *testing.T) {
	total, done := SnapshotValues([]IssueEffort{{IsDone: true}, {}})
	if total != 0 || done != 0 {
		t.Fatalf("unestimated sprint: expected 0 0, got %d %d", total, done)
	}
}

func TestRemainingStoryPoints(t *testing.T) {
	issues := []IssueEffort{
		{EstimationValue: intp(3), IsDone: true},
		{EstimationValue: intp(5)},
		{EstimationValue: intp(8)},
	}
	if got := RemainingStoryPoints(issues); got != 13 {
		t.Fatalf("expected remaining 13, got %d", got)
	}
}
