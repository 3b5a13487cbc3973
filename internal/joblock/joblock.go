// Package joblock keeps overlapping runs of the same job apart.
package joblock

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "job-lock:"

// Compare and delete, so a run never releases a lock it no longer owns.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker takes per job locks in Redis.
type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisLocker returns RedisLocker. The ttl bounds how long a crashed run blocks the job.
func NewRedisLocker(client redis.Cmdable, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
	}
}

// Acquire takes the lock of the job and returns its release func.
// It returns domain.ErrJobInProgress when another run holds it.
//
// When Redis cannot be reached the run goes ahead unlocked, as it would
// without Redis configured.
func (r *RedisLocker) Acquire(ctx context.Context, job string) (func(), error) {
	l := zerolog.Ctx(ctx)

	key := keyPrefix + job
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		l.Warn().Err(err).Str("job", job).Msg("job lock unavailable, running unlocked")
		return func() {}, nil
	}

	if !ok {
		return nil, domain.ErrJobInProgress
	}

	release := func() {
		// The request context may be done already.
		if err := releaseScript.Run(context.Background(), r.client, []string{key}, token).Err(); err != nil {
			l.Error().Err(err).Str("job", job).Msg("release job lock")
		}
	}

	return release, nil
}

// NopLocker never blocks. It is used without Redis, the change table's unique
// index still rejects double application.
type NopLocker struct{}

// Acquire always succeeds.
func (NopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
