package directory

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

// UseCase serves the identity directory: profile reads, self-service
// profile updates and the assignable-identity listing managers use when
// handing out tasks.
type UseCase struct {
	identities repository.IdentityRepository
	logger     *zap.Logger
}

func New(identities repository.IdentityRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		identities: identities,
		logger:     logger,
	}
}

func (uc *UseCase) GetIdentity(ctx context.Context, id string) (*domain.Identity, error) {
	return uc.identities.GetByID(ctx, id)
}

// UpdateProfile lets an identity change its own name and email. Role is
// not writable here.
func (uc *UseCase) UpdateProfile(ctx context.Context, id, name, email string) (*domain.Identity, error) {
	identity, err := uc.identities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if trimmed := strings.TrimSpace(name); trimmed != "" {
		identity.Name = trimmed
	}
	if trimmed := strings.TrimSpace(email); trimmed != "" {
		identity.Email = trimmed
	}

	if err := uc.identities.Upsert(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// ListAssignable returns user-role identities sorted by name; only
// managers may browse the directory.
func (uc *UseCase) ListAssignable(ctx context.Context, requesterID string) ([]domain.Identity, error) {
	requester, err := uc.identities.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requester.IsManager() {
		return nil, domain.ErrAccessDenied
	}
	return uc.identities.List(ctx, repository.IdentityFilter{Role: domain.RoleUser})
}
