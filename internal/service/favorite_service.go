package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/terravia/terravia-backend/internal/domain"
	"github.com/terravia/terravia-backend/internal/repository/ports"
)

var (
	ErrFavoriteValidation = errors.New("favorite validation failed")
	ErrPersistence        = errors.New("favorites store unavailable")
)

// FavoriteService coordinates the two favorite backends. Every call resolves
// which backend owns the data from the identity it is handed: authenticated
// callers hit the remote pair-row store, anonymous callers the device-keyed
// local blob. The two sets are independent; signing in silently switches
// which one is visible, nothing is merged.
type FavoriteService struct {
	remote ports.FavoriteRepository
	local  ports.LocalFavoriteStore
	cache  ports.CacheInvalidator
}

func NewFavoriteService(remote ports.FavoriteRepository, local ports.LocalFavoriteStore, cache ports.CacheInvalidator) *FavoriteService {
	return &FavoriteService{remote: remote, local: local, cache: cache}
}

// List returns the caller's favorite trip ids. Read path: store failures
// degrade to the empty set and are only logged, never surfaced.
func (s *FavoriteService) List(ctx context.Context, ident domain.Identity, deviceID string) []string {
	if ident.Authenticated {
		tripIDs, err := s.remote.ListByUser(ctx, ident.UserID)
		if err != nil {
			log.Printf("favorites: list for user %s failed, serving empty set: %v", ident.UserID, err)
			return []string{}
		}
		return dedupe(tripIDs)
	}

	tripIDs, err := s.local.Get(ctx, deviceID)
	if err != nil {
		log.Printf("favorites: local read for device %s failed, serving empty set: %v", deviceID, err)
		return []string{}
	}
	return dedupe(tripIDs)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, ident domain.Identity, deviceID, tripID string) bool {
	for _, id := range s.List(ctx, ident, deviceID) {
		if id == tripID {
			return true
		}
	}
	return false
}

// Toggle flips membership of tripID in the caller's favorite set and returns
// the post-toggle set so the caller can render from the return value without
// re-querying. Remote failures abort with ErrPersistence and no partial
// state change; local failures degrade per the read/write policy below.
func (s *FavoriteService) Toggle(ctx context.Context, ident domain.Identity, deviceID, tripID string) ([]string, error) {
	tripID = strings.TrimSpace(tripID)
	if tripID == "" {
		return nil, fmt.Errorf("%w: trip id is required", ErrFavoriteValidation)
	}

	if ident.Authenticated {
		return s.toggleRemote(ctx, ident, tripID)
	}
	return s.toggleLocal(ctx, deviceID, tripID), nil
}

// toggleRemote uses a conditional insert: when the pair row already exists
// the insert is a no-op and the toggle becomes a delete. Each mutation is a
// single atomic row operation, so there is no window where a reader observes
// a half-applied toggle.
func (s *FavoriteService) toggleRemote(ctx context.Context, ident domain.Identity, tripID string) ([]string, error) {
	inserted, err := s.remote.Add(ctx, ident.UserID, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !inserted {
		if _, err := s.remote.Remove(ctx, ident.UserID, tripID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	s.invalidate(ctx, "trips:"+tripID+":favorites")

	tripIDs, err := s.remote.ListByUser(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return dedupe(tripIDs), nil
}

// toggleLocal is a whole-blob read-modify-write. The blob is owned by the
// single device issuing the call, and local store trouble never fails the
// operation: a bad read counts as empty, a bad write is logged and the
// computed set is still returned.
func (s *FavoriteService) toggleLocal(ctx context.Context, deviceID, tripID string) []string {
	current, err := s.local.Get(ctx, deviceID)
	if err != nil {
		log.Printf("favorites: local read for device %s failed, toggling against empty set: %v", deviceID, err)
		current = []string{}
	}
	current = dedupe(current)

	updated := make([]string, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == tripID {
			removed = true
			continue
		}
		updated = append(updated, id)
	}
	if !removed {
		updated = append(updated, tripID)
	}

	if err := s.local.Put(ctx, deviceID, updated); err != nil {
		log.Printf("favorites: local write for device %s failed: %v", deviceID, err)
	}
	return updated
}

func (s *FavoriteService) CountByTrip(ctx context.Context, tripID string) (int64, error) {
	count, err := s.remote.CountByTrip(ctx, tripID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}

func (s *FavoriteService) invalidate(ctx context.Context, tag string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tag); err != nil {
		log.Printf("favorites: cache invalidation for %s failed: %v", tag, err)
	}
}

// dedupe keeps first occurrence order while enforcing set semantics on
// whatever the backing store returned.
func dedupe(tripIDs []string) []string {
	seen := make(map[string]struct{}, len(tripIDs))
	out := make([]string, 0, len(tripIDs))
	for _, id := range tripIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
