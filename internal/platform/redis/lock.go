package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrAlreadyLocked = errors.New("resource is already locked")

// Only the owner may release.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const defaultRetryInterval = 25 * time.Millisecond

// Lock is a cluster-wide mutex on a single key (SET NX PX with an owner token).
// TTL bounds how long a crashed holder can block others.
type Lock struct {
	client        redis.UniversalClient
	key           string
	ttl           time.Duration
	retryInterval time.Duration
}

func NewLock(client redis.UniversalClient, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Lock{client: client, key: key, ttl: ttl, retryInterval: defaultRetryInterval}
}

// TryLock makes a single attempt.
func (l *Lock) TryLock(ctx context.Context) (func(), error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrAlreadyLocked
	}
	return l.releaser(token), nil
}

// Lock retries until acquired or ctx is done.
func (l *Lock) Lock(ctx context.Context) (func(), error) {
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		unlock, err := l.TryLock(ctx)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, ErrAlreadyLocked) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Lock) releaser(token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Release even if the caller's ctx is already cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			log.Error().Err(err).Str("key", l.key).Msg("Failed to release lock")
		}
	}
}
