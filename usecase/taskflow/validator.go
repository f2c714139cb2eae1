package taskflow

import (
	"context"
	"errors"
	"time"

	"github.com/taskdesk/backend/domain"
)

// validateAssignee checks an assignment target: never the requester,
// must resolve in the directory, and must not hold the manager role.
func (uc *UseCase) validateAssignee(ctx context.Context, requester *domain.Identity, assigneeID string) error {
	if assigneeID == requester.ID {
		return domain.ErrSelfAssignment
	}
	assignee, err := uc.identities.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) || assigneeID == "" {
			return domain.ErrAssigneeNotFound
		}
		return err
	}
	if assignee.Role == domain.RoleManager {
		return domain.ErrAssigneeIsManager
	}
	return nil
}

// validateDueDate rejects dates strictly before the current calendar
// day. Comparison is at day granularity; time of day is ignored.
func (uc *UseCase) validateDueDate(due time.Time) error {
	if startOfDay(due).Before(startOfDay(uc.now())) {
		return domain.ErrDueDateInPast
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
