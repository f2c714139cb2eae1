package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a Postgres-backed append-only audit log.
// There is no update or delete path.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO activities (id, task_id, user_id, action, field, old_value, new_value, comment)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at
	`

	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.TaskID,
		entry.UserID,
		entry.Action,
		entry.Field,
		entry.OldValue,
		entry.NewValue,
		entry.Comment,
	).Scan(&entry.CreatedAt)
}

func (r *activityRepository) ListByTask(ctx context.Context, taskID string) ([]domain.ActivityEntry, error) {
	const query = `
	SELECT id, task_id, user_id, action, field, old_value, new_value, comment, created_at
	FROM activities
	WHERE task_id = $1
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityEntry, error) {
	const query = `
	SELECT id, task_id, user_id, action, field, old_value, new_value, comment, created_at
	FROM activities
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (r *activityRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&total)
	return total, err
}

func scanActivities(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]domain.ActivityEntry, error) {
	var entries []domain.ActivityEntry
	for rows.Next() {
		var entry domain.ActivityEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.UserID,
			&entry.Action,
			&entry.Field,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
