package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"electra/internal/domain"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines the interface for profile data access. Profiles
// carry the display name and role; the session layer tolerates a missing row
// and falls back to a degraded profile.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new instance of ProfileRepository
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Upsert inserts or updates the profile row keyed by user id
func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.Name,
		profile.Role,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// FindByID retrieves a profile by user id
func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	profile := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}
