package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate trims the description in place and checks the task invariants.
func (t *Task) Validate() error {
	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		return invalid("description", "is required")
	}
	if t.Owner == uuid.Nil {
		return invalid("owner", "is required")
	}
	return nil
}

// TaskUpdateFields lists the keys PATCH /tasks/{id} accepts. The owner is
// fixed at creation and deliberately absent.
var TaskUpdateFields = []string{"description", "completed"}

type TaskPatch struct {
	Description *string
	Completed   *bool
}

// Sortable task fields, keyed by their JSON names.
const (
	SortCreatedAt   = "createdAt"
	SortUpdatedAt   = "updatedAt"
	SortDescription = "description"
	SortCompleted   = "completed"
)

// TaskQuery filters, orders and windows a task listing. Zero Limit or Skip
// means the window is not applied on that side.
type TaskQuery struct {
	Completed *bool
	Limit     int
	Skip      int
	SortBy    string
	Desc      bool
}

// Normalize drops window values that cannot apply and falls back to
// createdAt ascending when the sort field is not sortable.
func (q TaskQuery) Normalize() TaskQuery {
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Skip < 0 {
		q.Skip = 0
	}
	switch q.SortBy {
	case SortCreatedAt, SortUpdatedAt, SortDescription, SortCompleted:
	default:
		q.SortBy = SortCreatedAt
		q.Desc = false
	}
	return q
}
