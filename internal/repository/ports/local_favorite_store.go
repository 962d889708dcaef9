package ports

import (
	"context"
)

// LocalFavoriteStore keeps the anonymous favorite set: one blob of trip ids
// under one well-known key per device. Get must treat a missing or
// unparseable blob as an empty set rather than an error; only transport
// failures surface, and callers degrade those to empty as well.
type LocalFavoriteStore interface {
	Get(ctx context.Context, deviceID string) ([]string, error)
	Put(ctx context.Context, deviceID string, tripIDs []string) error
}
