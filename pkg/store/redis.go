package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wardenhq/warden/pkg/authz"
)

// Config holds Redis store configuration
type Config struct {
	URL      string
	Password string
	DB       int

	// KeyPrefix namespaces every key. Test mode sets this to an isolated
	// prefix so integration tests never touch production-shaped data.
	KeyPrefix string

	// OpTimeout bounds each store call. Zero means DefaultOpTimeout.
	OpTimeout time.Duration

	// OnRetry, when set, is called each time a failed read is retried.
	OnRetry func()
}

// DefaultOpTimeout bounds a single Redis operation
const DefaultOpTimeout = 2 * time.Second

// retryBackoff is the pause before the single retry of a failed read
const retryBackoff = 50 * time.Millisecond

// TestKeyPrefix is the conventional prefix for test-mode data
const TestKeyPrefix = "test:"

// RedisStore implements Store over a Redis client. The client is constructed
// explicitly at startup and owned by the caller; there is no package-level
// singleton.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	opTimeout time.Duration
	onRetry   func()
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB > 0 {
		opts.DB = cfg.DB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}

	return &RedisStore{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		opTimeout: opTimeout,
		onRetry:   cfg.OnRetry,
	}, nil
}

// Get retrieves a value. Transient failures are retried once with a short
// backoff; a second failure surfaces as authz.ErrStoreUnavailable so callers
// deny the request instead of guessing.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	var found bool

	err := s.withRetry(ctx, func(opCtx context.Context) error {
		v, err := s.client.Get(opCtx, s.keyPrefix+key).Result()
		if err == redis.Nil {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		value = v
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: redis get %s: %v", authz.ErrStoreUnavailable, key, err)
	}
	return value, found, nil
}

// Set writes a value. Writes are not retried; every write operation in the
// authorization core is idempotent, so the caller may safely re-issue it.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(opCtx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", authz.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Keys returns all keys matching pattern, with the namespace prefix stripped
func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	err := s.withRetry(ctx, func(opCtx context.Context) error {
		found, err := s.client.Keys(opCtx, s.keyPrefix+pattern).Result()
		if err != nil {
			return err
		}
		keys = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: redis keys %s: %v", authz.ErrStoreUnavailable, pattern, err)
	}

	if s.keyPrefix == "" {
		return keys, nil
	}
	stripped := make([]string, 0, len(keys))
	for _, k := range keys {
		stripped = append(stripped, strings.TrimPrefix(k, s.keyPrefix))
	}
	return stripped, nil
}

// Delete removes a key; missing keys are a no-op
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Del(opCtx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: redis del %s: %v", authz.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Ping verifies connectivity, for health checks
func (s *RedisStore) Ping(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.client.Ping(opCtx).Err()
}

// Close releases the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// withRetry runs a read operation with a bounded timeout, retrying once after
// a short backoff. Reads are pure, so an abandoned first attempt has no side
// effects.
func (s *RedisStore) withRetry(ctx context.Context, op func(context.Context) error) error {
	run := func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
		return op(opCtx)
	}

	err := run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		// Caller aborted; don't retry on their behalf.
		return err
	}

	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return err
	}
	if s.onRetry != nil {
		s.onRetry()
	}
	return run()
}
