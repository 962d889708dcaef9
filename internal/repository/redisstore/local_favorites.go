package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/terravia/terravia-backend/internal/repository/ports"
)

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// LocalFavoriteStore keeps one JSON array of trip ids per device under a
// single well-known key. The blob belongs to exactly one device, so the
// whole-value read/write cycle has no concurrent-writer scenario.
type LocalFavoriteStore struct {
	c *redis.Client
}

func NewLocalFavoriteStore(client *redis.Client) *LocalFavoriteStore {
	return &LocalFavoriteStore{c: client}
}

func favoritesKey(deviceID string) string {
	return "favorites:device:" + deviceID
}

// Get returns the device's favorite trip ids. A missing key is an empty set;
// so is a blob that no longer parses, since a corrupt blob must never read
// harder than empty state would.
func (s *LocalFavoriteStore) Get(ctx context.Context, deviceID string) ([]string, error) {
	v, err := s.c.Get(ctx, favoritesKey(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	tripIDs := make([]string, 0)
	if err := json.Unmarshal(v, &tripIDs); err != nil {
		log.Printf("local favorites: discarding malformed blob for device %s: %v", deviceID, err)
		return []string{}, nil
	}
	return tripIDs, nil
}

func (s *LocalFavoriteStore) Put(ctx context.Context, deviceID string, tripIDs []string) error {
	if tripIDs == nil {
		tripIDs = []string{}
	}
	b, err := json.Marshal(tripIDs)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, favoritesKey(deviceID), b, 0).Err()
}

var _ ports.LocalFavoriteStore = (*LocalFavoriteStore)(nil)
