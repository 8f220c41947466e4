package profiles

import (
	"context"
	"errors"

	"github.com/scavhunt/scavhunt/backend/internal/models"
)

var (
	// ErrProfileExists is returned by Store.Create when the userId is taken.
	ErrProfileExists = errors.New("profile already exists")
	// ErrProfileNotFound is returned by operations that need an existing profile.
	ErrProfileNotFound = errors.New("profile not found")
)

// Store persists one UserProfile per userId.
//
// Get returns nil, nil when no profile exists. Create stamps CreatedAt and
// UpdatedAt with the current time and fails with ErrProfileExists when a
// profile is already stored. Put upserts, keeping a non-zero CreatedAt and
// refreshing UpdatedAt. Implementations never modify the profile passed in.
type Store interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error)
	Put(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error)
}
