package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UTRGuard implements ports.UTRGuard using Redis SET NX: at most one webhook
// delivery per UTR holds the in-flight slot at a time. The TTL bounds how
// long a crashed handler can block later deliveries.
type UTRGuard struct {
	client *goredis.Client
	prefix string
}

// NewUTRGuard creates a new Redis-backed UTR guard.
func NewUTRGuard(client *goredis.Client) *UTRGuard {
	return &UTRGuard{
		client: client,
		prefix: "utr:inflight:",
	}
}

// Acquire atomically claims the in-flight slot for a UTR.
// Returns true if this caller now holds it, false if another delivery does.
func (g *UTRGuard) Acquire(ctx context.Context, utr string, ttl time.Duration) (bool, error) {
	key := g.prefix + utr
	result, err := g.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — another delivery is in flight
			return false, nil
		}
		return false, fmt.Errorf("redis utr guard: %w", err)
	}
	return result == "OK", nil
}

// Release frees the in-flight slot for a UTR.
func (g *UTRGuard) Release(ctx context.Context, utr string) error {
	if err := g.client.Del(ctx, g.prefix+utr).Err(); err != nil {
		return fmt.Errorf("redis utr guard release: %w", err)
	}
	return nil
}
