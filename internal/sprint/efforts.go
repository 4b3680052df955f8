package sprint

// IssueEffort is the slice of an issue the aggregate calculators care
// about: its story-point value (nil when no estimation is assigned)
// and whether its state counts as done.
type IssueEffort struct {
	EstimationValue *int
	IsDone          bool
}

// TotalStoryPoints sums estimation values over the sprint's issues,
// skipping issues without an estimation. Returns nil when the sprint
// has no estimated issues at all; callers must handle the absent
// case, it is distinct from an explicit zero.
func TotalStoryPoints(issues []IssueEffort) *int {
	var total *int
	for _, issue := range issues {
		if issue.EstimationValue == nil {
			continue
		}
		if total == nil {
			total = new(int)
		}
		*total += *issue.EstimationValue
	}
	return total
}

// CompletedStoryPoints sums estimation values over done issues.
// Unlike TotalStoryPoints it is normalized to 0 when nothing matches.
func CompletedStoryPoints(issues []IssueEffort) int {
	done := 0
	for _, issue := range issues {
		if issue.EstimationValue == nil || !issue.IsDone {
			continue
		}
		done += *issue.EstimationValue
	}
	return done
}

// SnapshotValues flattens the aggregates into the ledger's columns.
// The absent total becomes an explicit 0 there, only the live view
// keeps the distinction.
func SnapshotValues(issues []IssueEffort) (total, done int) {
	if t := TotalStoryPoints(issues); t != nil {
		total = *t
	}
	return total, CompletedStoryPoints(issues)
}

// RemainingStoryPoints sums estimation values over not-done issues.
func RemainingStoryPoints(issues []IssueEffort) int {
	remaining := 0
	for _, issue := range issues {
		if issue.EstimationValue == nil || issue.IsDone {
			continue
		}
		remaining += *issue.EstimationValue
	}
	return remaining
}
