package domain

import "time"

// Person is the user element the frontend works with.
// The auth identity (credentials) lives on the same row.
type Person struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (p Person) Title() string {
	if p.FirstName == "" && p.LastName == "" {
		return p.Username
	}
	return p.FirstName + " " + p.LastName
}

// Workspace isolates teams from each other. Anyone who can access a
// workspace has access to everything inside it.
type Workspace struct {
	ID           int64     `json:"id"`
	PrefixURL    string    `json:"prefix_url"`
	OwnedByID    int64     `json:"owned_by"`
	Participants []int64   `json:"participants,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Project does not isolate people, it only scopes settings and issue
// numbering inside a workspace.
type Project struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace"`
	Title       string    `json:"title"`
	Key         string    `json:"key"`
	OwnedByID   *int64    `json:"owned_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IssueTypeCategory groups issues by type: Epic, User Story, Task, Bug.
type IssueTypeCategory struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace"`
	ProjectID   int64  `json:"project"`
	Title       string `json:"title"`
	IsSubtask   bool   `json:"is_subtask"`
	IsDefault   bool   `json:"is_default"`
	Ordering    int    `json:"ordering"`
}

// IssueStateCategory is a board column: Todo, In Progress, Verify, Done.
// Issues moved to a state with IsDone count as completed.
type IssueStateCategory struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace"`
	ProjectID   int64  `json:"project"`
	Title       string `json:"title"`
	IsDefault   bool   `json:"is_default"`
	IsDone      bool   `json:"is_done"`
	Ordering    int    `json:"ordering"`
}

// IssueEstimationCategory maps a human-friendly label (XS, M, banana)
// to an integer story-point value used for velocity math.
type IssueEstimationCategory struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace"`
	ProjectID   int64  `json:"project"`
	Title       string `json:"title"`
	Value       int    `json:"value"`
}

type Issue struct {
	ID                   int64     `json:"id"`
	WorkspaceID          int64     `json:"workspace"`
	ProjectID            int64     `json:"project"`
	Number               int       `json:"number"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	TypeCategoryID       *int64    `json:"type_category,omitempty"`
	StateCategoryID      *int64    `json:"state_category,omitempty"`
	EstimationCategoryID *int64    `json:"estimation_category,omitempty"`
	AssigneeID           *int64    `json:"assignee,omitempty"`
	CreatedByID          *int64    `json:"created_by,omitempty"`
	UpdatedByID          *int64    `json:"updated_by,omitempty"`
	Ordering             int       `json:"ordering"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IssueHistoryEntry is one field-level change on an issue, shown on
// the issue timeline.
type IssueHistoryEntry struct {
	ID          int64     `json:"id"`
	IssueID     int64     `json:"issue"`
	EditedField string    `json:"edited_field"`
	BeforeValue string    `json:"before_value"`
	AfterValue  string    `json:"after_value"`
	ChangedByID *int64    `json:"changed_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IssueMessage is a chat-like message inside an issue.
type IssueMessage struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace"`
	ProjectID   int64     `json:"project"`
	IssueID     int64     `json:"issue"`
	Description string    `json:"description"`
	CreatedByID int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Sprint struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspace"`
	ProjectID   int64      `json:"project"`
	Title       string     `json:"title"`
	Goal        string     `json:"goal"`
	IsStarted   bool       `json:"is_started"`
	IsCompleted bool       `json:"is_completed"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Days is the whole-day count of the sprint window.
// Defined only for sprints with both dates set.
func (s Sprint) Days() int {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return int(s.FinishedAt.Sub(*s.StartedAt).Hours() / 24)
}

// EffortSnapshot is one row of the sprint efforts history: total and
// done story points at a point in time. The first row by PointAt keeps
// the sprint's scope as it was on start and anchors the burn-down
// projection even if scope changed later.
type EffortSnapshot struct {
	ID          int64     `json:"id,omitempty"`
	WorkspaceID int64     `json:"-"`
	ProjectID   int64     `json:"-"`
	SprintID    int64     `json:"sprint"`
	PointAt     time.Time `json:"point_at"`
	TotalValue  int       `json:"total_value"`
	DoneValue   int       `json:"done_value"`
}

func (e EffortSnapshot) EstimatedValue() int { return e.TotalValue - e.DoneValue }

// RequestKind distinguishes the three participation-request flows that
// share one email-verified, expiring-key lifecycle.
type RequestKind string

const (
	RequestRegistration RequestKind = "registration"
	RequestInvitation   RequestKind = "invitation"
	RequestForgot       RequestKind = "forgot"
)

// ParticipationRequest backs registration, workspace invitation and
// forgot-password flows. Key is a hash sent by email; the request is
// valid until ExpiredAt and until accepted.
type ParticipationRequest struct {
	ID          int64       `json:"id"`
	Kind        RequestKind `json:"-"`
	Key         string      `json:"key,omitempty"`
	Email       string      `json:"email"`
	PrefixURL   string      `json:"prefix_url,omitempty"`
	WorkspaceID *int64      `json:"workspace,omitempty"`
	IsEmailSent bool        `json:"is_email_sent"`
	IsAccepted  bool        `json:"is_accepted"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiredAt   time.Time   `json:"expired_at"`
}
