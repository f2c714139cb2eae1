package repository

import (
	"context"

	"github.com/taskdesk/backend/domain"
)

// ActivityFilter pages the global audit feed.
type ActivityFilter struct {
	Limit  int
	Offset int
}

// ActivityRepository is the append-only audit log store. Entries are
// never updated or deleted once written.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityEntry) error
	ListByTask(ctx context.Context, taskID string) ([]domain.ActivityEntry, error)
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityEntry, error)
	Count(ctx context.Context) (int, error)
}
