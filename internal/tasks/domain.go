package tasks

import "time"

// Status is the kanban column a task sits in.
type Status string

// Task statuses.
const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a board card owned by one organization and one creating user.
type Task struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	Category       string    `json:"category"`
	Status         Status    `json:"status"`
	Order          int       `json:"order"`
	OrganizationID int64     `json:"organizationId"`
	OwnerID        int64     `json:"ownerId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// OwningOrganization implements orgs.Scoped.
func (t Task) OwningOrganization() int64 {
	return t.OrganizationID
}

// ListFilters narrows a board listing. Empty fields do not filter.
type ListFilters struct {
	Category string
	Status   Status
}
