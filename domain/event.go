package domain

// EventKind names the real-time channel message types.
type EventKind string

const (
	EventTaskUpdated EventKind = "task-updated"
	EventTaskDeleted EventKind = "task-deleted"
)

// Event is one notification addressed to a single identity channel.
// For task-updated the payload carries the resolved task and the
// mutation action ("created" or "updated"); for task-deleted only the
// task id survives.
type Event struct {
	Kind   EventKind `json:"kind"`
	Task   *TaskView `json:"task,omitempty"`
	TaskID string    `json:"task_id,omitempty"`
	Action string    `json:"action,omitempty"`
}
