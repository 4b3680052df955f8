package domain

import "errors"

// Error codes surfaced to the HTTP layer.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeValidation       = "VALIDATION"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeMissingBaseline  = "MISSING_BASELINE"
	CodeMissingCalendar  = "MISSING_CALENDAR"
	CodeSprintNotStarted = "SPRINT_NOT_STARTED"
	CodeInternal         = "INTERNAL"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrNotParticipant      = errors.New("person does not participate in workspace")
	ErrSprintDatesRequired = errors.New("start date and end date are required for started sprint")
	ErrSprintDatesOrder    = errors.New("date of start should be earlier than date of end")
	ErrSprintAlreadyGoing  = errors.New("another sprint was already started, complete it before starting a new one")
	ErrSprintNotStarted    = errors.New("sprint is not started")
	ErrIssueOutsideProject = errors.New("issues must belong to the same project as the sprint")
	ErrNotMessageAuthor    = errors.New("only the author can edit or delete the message")
	ErrRequestExpired      = errors.New("request key is expired or already accepted")

	// ErrMissingBaseline and ErrMissingCalendar are data-integrity
	// faults: the sprint-start machinery should have guaranteed both.
	ErrMissingBaseline = errors.New("sprint has no efforts history to project from")
	ErrMissingCalendar = errors.New("project has no working days settings")
)

// Error carries a stable code alongside the underlying error so the
// HTTP layer can map it to a status without string matching.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(code string, err error) *Error { return &Error{Code: code, Err: err} }

// CodeOf extracts the error code, defaulting to CodeInternal.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	if errors.Is(err, ErrNotFound) {
		return CodeNotFound
	}
	return CodeInternal
}
