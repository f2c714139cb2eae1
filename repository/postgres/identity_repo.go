package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository instantiates a Postgres-backed identity directory.
func NewIdentityRepository(pool *pgxpool.Pool) repository.IdentityRepository {
	return &identityRepository{pool: pool}
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	const query = `
		SELECT id, name, email, role, created_at, updated_at
		FROM identities
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var identity domain.Identity
	if err := row.Scan(&identity.ID, &identity.Name, &identity.Email, &identity.Role, &identity.CreatedAt, &identity.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, err
	}

	return &identity, nil
}

func (r *identityRepository) List(ctx context.Context, filter repository.IdentityFilter) ([]domain.Identity, error) {
	const query = `
		SELECT id, name, email, role, created_at, updated_at
		FROM identities
		WHERE ($1 = '' OR role = $1)
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query, string(filter.Role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		if err := rows.Scan(&identity.ID, &identity.Name, &identity.Email, &identity.Role, &identity.CreatedAt, &identity.UpdatedAt); err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

func (r *identityRepository) Upsert(ctx context.Context, identity *domain.Identity) error {
	if identity == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO identities (id, name, email, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		email = EXCLUDED.email,
		role = EXCLUDED.role,
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		identity.ID,
		identity.Name,
		identity.Email,
		identity.Role,
		nullTime(identity.CreatedAt),
	).Scan(&createdAt, &updatedAt); err != nil {
		return err
	}

	identity.CreatedAt = createdAt
	identity.UpdatedAt = updatedAt
	return nil
}
