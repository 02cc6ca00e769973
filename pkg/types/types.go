package types

// Role identifies a user's access level on the board.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether the role is one the backend knows about.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is applied when a task is created without one.
const DefaultPriority = PriorityMedium

// Valid reports whether the priority is one of the three known levels.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// User is a directory entry. Immutable once loaded into the directory
// cache for the lifetime of a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Task is a single entry on the shared board.
//
// If AssignedTo is present its ID matches AssignedToID; if AssignedToID
// is empty, AssignedTo is nil. The backend sometimes returns a task
// with AssignedToID set but no inline AssignedTo; the task store
// enriches those before display.
type Task struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Priority     Priority `json:"priority"`
	DueDate      string   `json:"dueDate,omitempty"`
	AssignedToID string   `json:"assignedToId,omitempty"`
	AssignedTo   *User    `json:"assignedTo,omitempty"`

	// UpdatedAt is carried through from the server when present. It is
	// the intended hook for optimistic-concurrency tokens; nothing
	// compares it today (last write wins on concurrent same-id edits).
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Assigned reports whether the task carries an assignee reference.
func (t *Task) Assigned() bool {
	return t.AssignedToID != ""
}

// TaskInput is the field set sent on task create and update.
// AssignedToID serializes as an explicit null when nobody is assigned,
// which is what the backend expects.
type TaskInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Priority     Priority `json:"priority"`
	DueDate      string   `json:"dueDate,omitempty"`
	AssignedToID *string  `json:"assignedToId"`
}

// Credentials are submitted on login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is submitted when creating a new account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
