package session

import (
	"context"

	"electra/internal/auth"
	"electra/internal/domain"
	"electra/internal/repository"

	"go.uber.org/zap"
)

// Resolver turns a raw authenticated identity into a full session by
// fetching the profile record keyed by user id. A failed or empty fetch
// degrades to the identity's own data (email as the display name, customer
// role) and is logged for diagnostics only; resolution never fails.
type Resolver struct {
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

// NewResolver creates a Resolver over the profile repository.
func NewResolver(profiles repository.ProfileRepository, logger *zap.Logger) *Resolver {
	return &Resolver{profiles: profiles, logger: logger}
}

// Resolve builds the session for identity. A nil identity resolves to the
// anonymous session.
func (r *Resolver) Resolve(ctx context.Context, identity *auth.Identity) domain.Session {
	if identity == nil {
		return domain.Session{State: domain.SessionAnonymous}
	}

	sess := domain.Session{
		State:  domain.SessionAuthenticated,
		UserID: identity.ID.String(),
		Email:  identity.Email,
		Name:   identity.Email,
		Role:   domain.RoleCustomer,
	}

	profile, err := r.profiles.FindByID(ctx, identity.ID)
	if err != nil {
		r.logger.Warn("Profile resolution failed, using degraded profile",
			zap.String("user_id", identity.ID.String()),
			zap.Error(err),
		)
		return sess
	}

	if profile.Name != "" {
		sess.Name = profile.Name
	}
	if profile.Role != "" {
		sess.Role = profile.Role
	}
	return sess
}
