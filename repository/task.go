package repository

import (
	"context"

	"github.com/taskdesk/backend/domain"
)

// TaskFilter scopes task listings. CreatedBy/AssignedTo narrow by
// identity reference; empty values are ignored.
type TaskFilter struct {
	CreatedBy  string
	AssignedTo string
	Status     string
	Limit      int
	Offset     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
