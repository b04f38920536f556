package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Defaults for RedisLocker.
const (
	DefaultLockTTL      = 10 * time.Second
	DefaultPollInterval = 25 * time.Millisecond
)

// releaseScript deletes the key only if this holder still owns it.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// ErrLockNotAcquired is returned when ctx ends before the lock frees up.
var ErrLockNotAcquired = errors.New("lock not acquired")

// RedisClient is the subset of the go-redis API used for locking.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLocker is a lease-based lock held in Redis. The TTL bounds how long a
// crashed holder can block others.
type RedisLocker struct {
	client RedisClient
	prefix string
	ttl    time.Duration
	poll   time.Duration
	logger *slog.Logger
}

// NewRedisLocker creates a RedisLocker. Non-positive ttl uses DefaultLockTTL.
func NewRedisLocker(client RedisClient, prefix string, ttl time.Duration, logger *slog.Logger) *RedisLocker {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		poll:   DefaultPollInterval,
		logger: logger.With(slog.String("component", "redis_locker")),
	}
}

// Lock polls until it owns key or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctxErr)
			}
			return nil, fmt.Errorf("failed to acquire lock %q: %w", fullKey, err)
		}
		if ok {
			return l.unlockFunc(fullKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlockFunc(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Release even if the request context was cancelled mid-flight.
		ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
		defer cancel()
		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
