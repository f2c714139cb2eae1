package taskflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
)

// fanOutUpdate notifies everyone with a stake in the mutation: the
// previous assignee, the current assignee and the creator, each at most
// once. Publish failures are logged and swallowed; notifications are
// purely observational.
func (uc *UseCase) fanOutUpdate(ctx context.Context, view *domain.TaskView, prevAssignee string, action string) {
	event := domain.Event{
		Kind:   domain.EventTaskUpdated,
		Task:   view,
		Action: action,
	}
	for _, recipient := range recipientSet(prevAssignee, view.AssignedTo, view.CreatedBy) {
		uc.publish(ctx, recipient, event)
	}
}

// fanOutDelete notifies the pre-deletion assignee that the task is gone.
func (uc *UseCase) fanOutDelete(ctx context.Context, task *domain.Task) {
	event := domain.Event{
		Kind:   domain.EventTaskDeleted,
		TaskID: task.ID,
	}
	uc.publish(ctx, task.AssignedTo, event)
}

func (uc *UseCase) publish(ctx context.Context, recipient string, event domain.Event) {
	if uc.notifier == nil || recipient == "" {
		return
	}
	if err := uc.notifier.Publish(ctx, recipient, event); err != nil {
		uc.logger.Warn("notification publish failed",
			zap.String("recipient", recipient),
			zap.String("event", string(event.Kind)),
			zap.Error(err))
	}
}

// recipientSet deduplicates identity ids preserving first occurrence,
// dropping empties.
func recipientSet(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
