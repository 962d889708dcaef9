package ports

import (
	"context"

	"github.com/google/uuid"
)

// FavoriteRepository is the remote favorites store for authenticated users,
// one row per (user, trip) pair. Add and Remove are conditional so that a
// toggle never needs a read-then-branch round trip: Add reports whether a row
// was actually inserted, Remove whether one was actually deleted.
type FavoriteRepository interface {
	Add(ctx context.Context, userID uuid.UUID, tripID string) (bool, error)
	Remove(ctx context.Context, userID uuid.UUID, tripID string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	CountByTrip(ctx context.Context, tripID string) (int64, error)
}
