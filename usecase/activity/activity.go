package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
	"github.com/taskdesk/backend/usecase"
)

// UseCase records and serves the audit trail. Recording is best-effort:
// a failed append is logged, handed to the spillover buffer when one is
// configured, and never surfaced to the mutation that produced it.
type UseCase struct {
	activities repository.ActivityRepository
	identities repository.IdentityRepository
	buffer     usecase.AuditBuffer
	logger     *zap.Logger
}

func New(
	activities repository.ActivityRepository,
	identities repository.IdentityRepository,
	buffer usecase.AuditBuffer,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		activities: activities,
		identities: identities,
		buffer:     buffer,
		logger:     logger,
	}
}

// Record appends one audit entry. It never fails the caller; audit
// completeness is traded for never blocking the primary workflow.
func (uc *UseCase) Record(ctx context.Context, entry *domain.ActivityEntry) {
	if entry == nil {
		return
	}
	if err := uc.activities.Append(ctx, entry); err != nil {
		uc.logger.Error("audit append failed",
			zap.String("task_id", entry.TaskID),
			zap.String("action", string(entry.Action)),
			zap.Error(err))

		if uc.buffer == nil {
			return
		}
		if bufErr := uc.buffer.BufferEntry(ctx, entry); bufErr != nil {
			uc.logger.Error("audit entry lost", zap.String("task_id", entry.TaskID), zap.Error(bufErr))
			return
		}
		uc.logger.Warn("audit entry buffered", zap.String("task_id", entry.TaskID))
	}
}

// ListForTask returns a task's audit entries newest-first with the
// acting identities expanded.
func (uc *UseCase) ListForTask(ctx context.Context, taskID string) ([]domain.ActivityView, error) {
	entries, err := uc.activities.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return uc.expand(ctx, entries), nil
}

// List returns the global audit feed, paged newest-first.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]domain.ActivityView, int, error) {
	entries, err := uc.activities.List(ctx, repository.ActivityFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.activities.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return uc.expand(ctx, entries), total, nil
}

func (uc *UseCase) expand(ctx context.Context, entries []domain.ActivityEntry) []domain.ActivityView {
	views := make([]domain.ActivityView, 0, len(entries))
	cache := make(map[string]domain.IdentitySummary)

	for _, entry := range entries {
		actor, ok := cache[entry.UserID]
		if !ok {
			if identity, err := uc.identities.GetByID(ctx, entry.UserID); err == nil {
				actor = identity.Summary()
			} else {
				actor = domain.IdentitySummary{ID: entry.UserID}
			}
			cache[entry.UserID] = actor
		}
		views = append(views, domain.ActivityView{ActivityEntry: entry, Actor: actor})
	}
	return views
}

var _ usecase.ActivitySink = (*UseCase)(nil)
