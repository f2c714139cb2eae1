package repository

import (
	"context"

	"github.com/taskdesk/backend/domain"
)

// IdentityFilter narrows directory listings by role.
type IdentityFilter struct {
	Role domain.Role
}

// IdentityRepository is the identity directory: every place a reference
// must be expanded for a response or validated resolves through it.
type IdentityRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	List(ctx context.Context, filter IdentityFilter) ([]domain.Identity, error)
	Upsert(ctx context.Context, identity *domain.Identity) error
}
