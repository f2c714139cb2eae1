package usecase

import (
	"context"

	"github.com/taskdesk/backend/domain"
)

// Notifier delivers one event to a single identity channel. Delivery is
// at-most-once and fire-and-forget: callers log failures and move on.
type Notifier interface {
	Publish(ctx context.Context, identityID string, event domain.Event) error
}

// ActivitySink records audit entries. Implementations are best-effort
// and must never fail the caller, hence no error return.
type ActivitySink interface {
	Record(ctx context.Context, entry *domain.ActivityEntry)
}

// AuditBuffer holds audit entries that could not reach the primary log
// store so a background processor can retry them.
type AuditBuffer interface {
	BufferEntry(ctx context.Context, entry *domain.ActivityEntry) error
}
