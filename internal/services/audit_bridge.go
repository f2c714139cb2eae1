package services

import (
	"context"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/usecase"
)

// AuditBridge adapts the processor to the AuditBuffer port so the
// activity recorder stays storage-agnostic.
type AuditBridge struct {
	processor *AuditProcessor
}

func NewAuditBridge(processor *AuditProcessor) *AuditBridge {
	return &AuditBridge{processor: processor}
}

func (b *AuditBridge) BufferEntry(ctx context.Context, entry *domain.ActivityEntry) error {
	if b.processor == nil || entry == nil {
		return domain.ErrInvalidPayload
	}
	return b.processor.Buffer(ctx, entry)
}

var _ usecase.AuditBuffer = (*AuditBridge)(nil)
