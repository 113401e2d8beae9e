package caching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

const keyPrefix = "apartmani"

// ErrLockNotAcquired is returned when a lock could not be taken before the
// context ended or the retry budget ran out.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker serialises work on a key across every process sharing the backend.
// The returned unlock function must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// RateLimiter counts hits per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// CacheService bundles the redis backed primitives the service needs.
type CacheService interface {
	Locker
	RateLimiter
	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client  *redis.Client
	lockTTL time.Duration
	logger  *slog.Logger
}

// NewRedisCacheService connects to redis. A failed initial ping is logged,
// not fatal: the rate limiter fails open and locks report the error per call.
func NewRedisCacheService(addr, password string, db int, lockTTL time.Duration, logger *slog.Logger) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("redis ping failed on initialization", "addr", parsedAddr, "error", pingErr)
	}

	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}

	return &redisCacheService{client: client, lockTTL: lockTTL, logger: logger}
}

func NewRedisCacheServiceFromClient(client *redis.Client, lockTTL time.Duration, logger *slog.Logger) CacheService {
	return &redisCacheService{client: client, lockTTL: lockTTL, logger: logger}
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock takes key with SET NX PX, retrying with exponential back-off until the
// context is done. The lock expires on its own after lockTTL so a crashed
// holder cannot block the key forever.
func (r *redisCacheService) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("%s:lock:%s", keyPrefix, key)
	token := uuid.NewString()

	backoff := retry.NewExponential(20 * time.Millisecond)
	backoff = retry.WithCappedDuration(250*time.Millisecond, backoff)
	backoff = retry.WithMaxDuration(r.lockTTL, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ok, err := r.client.SetNX(ctx, lockKey, token, r.lockTTL).Result()
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(ErrLockNotAcquired)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLockNotAcquired) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
		}
		return nil, err
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.client, []string{lockKey}, token).Err(); err != nil {
			r.logger.Warn("failed to release lock", "key", lockKey, "error", err)
		}
	}, nil
}

// Allow increments the counter for key and reports whether it is still within limit.
func (r *redisCacheService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, cacheKey)
	pipe.ExpireNX(ctx, cacheKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}

	return incr.Val() <= int64(limit), nil
}
