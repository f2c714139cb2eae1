package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/internal/infrastructure/buffer"
	"github.com/taskdesk/backend/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// AuditProcessor retries spilled-over audit entries against the primary
// log store and expires entries past retention. It runs on a cron
// schedule so a burst of store failures does not hammer a recovering
// database.
type AuditProcessor struct {
	store      *buffer.Store
	monitor    ConnectionHealth
	activities repository.ActivityRepository
	logger     *zap.Logger
	cron       *cron.Cron
	cfg        ProcessorConfig
}

func NewAuditProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	activities repository.ActivityRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *AuditProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ap := &AuditProcessor{
		store:      store,
		monitor:    monitor,
		activities: activities,
		logger:     logger,
		cfg:        cfg,
		cron:       cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = ap.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := ap.Drain(ctx); err != nil {
			ap.logger.Error("audit buffer drain failed", zap.Error(err))
		}
	})
	_, _ = ap.cron.AddFunc("@hourly", func() {
		if err := ap.store.Cleanup(time.Now().Add(-cfg.Retention)); err != nil {
			ap.logger.Warn("audit buffer cleanup failed", zap.Error(err))
		}
	})

	return ap
}

// Start launches the cron scheduler.
func (ap *AuditProcessor) Start() {
	if ap == nil || ap.cron == nil {
		return
	}
	ap.cron.Start()
	ap.logger.Info("audit processor started")
}

// Stop gracefully stops the scheduler.
func (ap *AuditProcessor) Stop(ctx context.Context) {
	if ap == nil || ap.cron == nil {
		return
	}
	stopCtx := ap.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	ap.logger.Info("audit processor stopped")
}

// Drain replays buffered audit entries synchronously.
func (ap *AuditProcessor) Drain(ctx context.Context) error {
	if ap == nil || ap.store == nil {
		return nil
	}
	if ap.monitor != nil && !ap.monitor.IsOnline() {
		ap.logger.Debug("skipping audit drain (offline)")
		return nil
	}

	items, err := ap.store.GetBatch(ap.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ap.replay(ctx, item); err != nil {
			ap.logger.Error("failed to replay audit entry",
				zap.String("item_id", item.ID),
				zap.String("task_id", item.TaskID),
				zap.Error(err))

			item.Retries++
			if item.Retries >= ap.cfg.MaxRetries {
				ap.logger.Warn("dropping audit entry (max retries reached)", zap.String("item_id", item.ID))
				_ = ap.store.Remove(item)
				continue
			}

			if err := ap.store.Remove(item); err != nil {
				ap.logger.Warn("failed to remove audit item", zap.Error(err))
			}
			if err := ap.store.Requeue(item); err != nil {
				ap.logger.Error("failed to requeue audit item", zap.Error(err))
			}
			continue
		}

		if err := ap.store.Remove(item); err != nil {
			ap.logger.Warn("failed to purge replayed audit item", zap.Error(err))
		}
	}
	return nil
}

// Buffer persists an audit entry for a later replay attempt.
func (ap *AuditProcessor) Buffer(ctx context.Context, entry *domain.ActivityEntry) error {
	if ap == nil || ap.store == nil {
		return fmt.Errorf("audit processor not configured")
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return ap.store.Enqueue(buffer.Item{
		ID:     entry.ID,
		TaskID: entry.TaskID,
		Data:   payload,
	})
}

// Size returns the number of buffered entries.
func (ap *AuditProcessor) Size() int {
	if ap == nil || ap.store == nil {
		return 0
	}
	size, err := ap.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (ap *AuditProcessor) replay(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var entry domain.ActivityEntry
	if err := json.Unmarshal(item.Data, &entry); err != nil {
		return err
	}
	return ap.activities.Append(ctx, &entry)
}
