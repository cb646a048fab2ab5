package driven

import (
	"context"
	"errors"

	"github.com/contriblens/contriblens/internal/domain/model"
)

// ErrProfileNotFound is returned by mutations targeting a missing profile.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore persists linked user profiles and their point totals.
type ProfileStore interface {
	// Get retrieves a profile by username. Returns nil, nil if absent.
	Get(ctx context.Context, username string) (*model.Profile, error)

	// Upsert inserts the profile or updates its mutable fields (email,
	// linked GitHub username) if a profile with the username exists.
	Upsert(ctx context.Context, profile model.Profile) error

	// AddPoints atomically adds delta to the profile's point total.
	AddPoints(ctx context.Context, username string, delta int) error
}
