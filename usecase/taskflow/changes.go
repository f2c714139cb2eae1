package taskflow

import (
	"context"
	"strings"
	"time"

	"github.com/taskdesk/backend/domain"
)

// UpdateRequest carries the proposed field values of one mutation.
// Nil pointers mean "not proposed"; Comment rides alongside a status
// change and is mandatory for user-role requesters.
type UpdateRequest struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	AssignedTo  *string
	Priority    *domain.TaskPriority
	DueDate     *time.Time
	Comment     string
}

// Change is one accepted field mutation, ready for auditing.
type Change struct {
	Field   string
	Old     string
	New     string
	Action  domain.ActivityAction
	Comment string
}

// computeChanges filters the proposed fields down to the accepted
// delta and applies it to a copy of the task. Fields are evaluated in
// declaration order so the audit trail is deterministic regardless of
// request encoding. A proposed value equal to the current one is a
// no-op, never a change. Any validation failure rejects the whole
// request; the original entity is untouched either way.
func (uc *UseCase) computeChanges(ctx context.Context, requester *domain.Identity, task *domain.Task, req UpdateRequest) ([]Change, *domain.Task, error) {
	next := task.Clone()
	var changes []Change

	if req.Title != nil && *req.Title != task.Title {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, nil, domain.ErrTitleRequired
		}
		changes = append(changes, Change{
			Field:  "title",
			Old:    task.Title,
			New:    *req.Title,
			Action: domain.ActionUpdated,
		})
		next.Title = *req.Title
	}

	if req.Description != nil && *req.Description != task.Description {
		changes = append(changes, Change{
			Field:  "description",
			Old:    task.Description,
			New:    *req.Description,
			Action: domain.ActionUpdated,
		})
		next.Description = *req.Description
	}

	if req.Status != nil && *req.Status != task.Status {
		if !req.Status.Valid() {
			return nil, nil, domain.ErrInvalidStatus
		}
		if requester.Role == domain.RoleUser && strings.TrimSpace(req.Comment) == "" {
			return nil, nil, domain.ErrCommentRequired
		}
		changes = append(changes, Change{
			Field:   "status",
			Old:     string(task.Status),
			New:     string(*req.Status),
			Action:  domain.ActionStatusChanged,
			Comment: req.Comment,
		})
		next.Status = *req.Status
	}

	if req.AssignedTo != nil && *req.AssignedTo != task.AssignedTo {
		if err := uc.validateAssignee(ctx, requester, *req.AssignedTo); err != nil {
			return nil, nil, err
		}
		changes = append(changes, Change{
			Field:  "assignedTo",
			Old:    task.AssignedTo,
			New:    *req.AssignedTo,
			Action: domain.ActionUpdated,
		})
		next.AssignedTo = *req.AssignedTo
	}

	if req.Priority != nil && *req.Priority != task.Priority {
		if !req.Priority.Valid() {
			return nil, nil, domain.ErrInvalidPriority
		}
		changes = append(changes, Change{
			Field:  "priority",
			Old:    string(task.Priority),
			New:    string(*req.Priority),
			Action: domain.ActionUpdated,
		})
		next.Priority = *req.Priority
	}

	if req.DueDate != nil && !sameInstant(req.DueDate, task.DueDate) {
		if err := uc.validateDueDate(*req.DueDate); err != nil {
			return nil, nil, err
		}
		changes = append(changes, Change{
			Field:  "dueDate",
			Old:    formatDue(task.DueDate),
			New:    formatDue(req.DueDate),
			Action: domain.ActionUpdated,
		})
		due := *req.DueDate
		next.DueDate = &due
	}

	return changes, next, nil
}

func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
