package ports

import (
	"context"
)

// CacheInvalidator signals that cached views depending on a tag are stale.
// Fire-and-forget: callers log failures and move on.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tag string) error
}
