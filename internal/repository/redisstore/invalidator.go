package redisstore

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/terravia/terravia-backend/internal/repository/ports"
)

// Invalidator drops cached view fragments by tag. Best-effort: a missing key
// is success, and callers treat any error as a log line, not a failure.
type Invalidator struct {
	c *redis.Client
}

func NewInvalidator(client *redis.Client) *Invalidator {
	return &Invalidator{c: client}
}

func (i *Invalidator) Invalidate(ctx context.Context, tag string) error {
	return i.c.Del(ctx, "cache:"+tag).Err()
}

var _ ports.CacheInvalidator = (*Invalidator)(nil)
