// Package lock provides frontdesk.TransitionLocker implementations.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL bounds how long an unreleased lease blocks other transitions.
	DefaultTTL = 10 * time.Second
	keyPrefix  = "frontdesk:lease:"

	releaseScript = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`
)

// redisClient is the subset of *redis.Client the locker needs.
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Redis grants leases with SET NX PX and releases them only when the token still matches.
type Redis struct {
	client redisClient
	ttl    time.Duration
	token  func() string
}

// NewRedis wraps a go-redis client. A non-positive ttl selects DefaultTTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return newRedis(client, ttl)
}

func newRedis(client redisClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, token: uuid.NewString}
}

// Acquire takes the lease on key or returns frontdesk.ErrTransitionLocked.
func (locker *Redis) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	leaseKey := keyPrefix + key
	token := locker.token()
	acquired, err := locker.client.SetNX(ctx, leaseKey, token, locker.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock: acquire %s: %w", key, err)
	}
	if !acquired {
		return nil, fmt.Errorf("lock: %s: %w", key, frontdesk.ErrTransitionLocked)
	}
	return func(releaseCtx context.Context) error {
		if err := locker.client.Eval(releaseCtx, releaseScript, []string{leaseKey}, token).Err(); err != nil {
			return fmt.Errorf("lock: release %s: %w", key, err)
		}
		return nil
	}, nil
}
