package initialize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ramsey-B/kitchin/pkg/redis"
)

// RedisGuard lets the first server instance that sees an empty store create the defaults.
// The winner holds the lock until it releases it after seeing the defaults stored. A crashed
// winner's lock expires after ttl.
type RedisGuard struct {
	client *redis.Client
	name   string
	ttl    time.Duration

	mu   sync.Mutex
	lock *redis.Lock
}

func NewRedisGuard(client *redis.Client, name string, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, name: name, ttl: ttl}
}

func (g *RedisGuard) Claim(ctx context.Context) (bool, error) {
	lock, ok, err := g.client.TryLock(ctx, g.name, g.ttl)
	if err != nil || !ok {
		return false, err
	}

	g.mu.Lock()
	g.lock = lock
	g.mu.Unlock()
	return true, nil
}

// Release gives up a held claim. It is a no-op when nothing is held.
func (g *RedisGuard) Release(ctx context.Context) error {
	g.mu.Lock()
	lock := g.lock
	g.lock = nil
	g.mu.Unlock()

	if lock == nil {
		return nil
	}
	if err := lock.Release(ctx); err != nil {
		return fmt.Errorf("failed to release %s: %w", lock.Key(), err)
	}
	return nil
}
