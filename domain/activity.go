package domain

import "time"

// ActivityAction classifies one audit record.
type ActivityAction string

const (
	ActionCreated       ActivityAction = "created"
	ActionUpdated       ActivityAction = "updated"
	ActionDeleted       ActivityAction = "deleted"
	ActionStatusChanged ActivityAction = "status_changed"
	ActionAssigned      ActivityAction = "assigned"
)

// ActivityEntry is one immutable audit record of a single field change
// or lifecycle event on a task. Entries are append-only and outlive the
// task they reference.
type ActivityEntry struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id"`
	UserID    string         `json:"user_id"`
	Action    ActivityAction `json:"action"`
	Field     string         `json:"field,omitempty"`
	OldValue  string         `json:"old_value,omitempty"`
	NewValue  string         `json:"new_value,omitempty"`
	Comment   string         `json:"comment,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ActivityView is an ActivityEntry with the acting identity expanded.
type ActivityView struct {
	ActivityEntry
	Actor IdentitySummary `json:"actor"`
}
