// Package providerlimit caps the number of in-flight batches the Refresh
// Orchestrator allows per embedding/reranker provider (spec.md §5, default
// 4), adapted from the teacher's internal/security/ratelimit package: the
// same Redis-backed-with-in-memory-fallback shape, generalized from
// rate-limiting inbound HTTP requests to capping outbound provider
// concurrency. The HTTP-specific LimiterType, GetLimitConfig, and
// hasAuthToken helpers have no role here and were dropped (see DESIGN.md).
package providerlimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMaxConcurrent is the Orchestrator's default per-provider cap.
const DefaultMaxConcurrent = 4

// Config controls the limiter. When Redis is nil, concurrency is capped
// in-process only; set Redis to share the cap across multiple orchestrator
// instances.
type Config struct {
	MaxConcurrent int
	Redis         *redis.Client
	KeyPrefix     string
}

// Limiter caps concurrent in-flight work per provider ID.
type Limiter struct {
	cfg Config

	mu    sync.Mutex
	local map[string]chan struct{}
}

// New builds a Limiter. A non-positive MaxConcurrent uses DefaultMaxConcurrent.
func New(cfg Config) *Limiter {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Limiter{cfg: cfg, local: make(map[string]chan struct{})}
}

func (l *Limiter) localSem(providerID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.local[providerID]
	if !ok {
		sem = make(chan struct{}, l.cfg.MaxConcurrent)
		l.local[providerID] = sem
	}
	return sem
}

// Acquire blocks until a concurrency slot for providerID is available (or
// ctx is cancelled) and returns a release function the caller must call
// exactly once. With Redis configured, the slot is also reserved
// distributedly; release clears both.
func (l *Limiter) Acquire(ctx context.Context, providerID string) (release func(), err error) {
	sem := l.localSem(providerID)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	release = func() { <-sem }

	if l.cfg.Redis == nil {
		return release, nil
	}

	if err := l.acquireRedis(ctx, providerID); err != nil {
		release()
		return nil, err
	}
	return func() {
		l.releaseRedis(context.Background(), providerID)
		release()
	}, nil
}

// acquireRedisScript atomically increments a bounded counter, grounded on
// the teacher's HMGET/HMSET token-bucket Lua script, adapted from a rate
// (tokens per second) to a hard concurrency ceiling.
const acquireRedisScript = `
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local ttl = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key)) or 0
	if current >= limit then
		return 0
	end

	redis.call('INCR', key)
	redis.call('EXPIRE', key, ttl)
	return 1
`

func (l *Limiter) key(providerID string) string {
	prefix := l.cfg.KeyPrefix
	if prefix == "" {
		prefix = "conexus:providerlimit"
	}
	return fmt.Sprintf("%s:%s", prefix, providerID)
}

func (l *Limiter) acquireRedis(ctx context.Context, providerID string) error {
	const pollInterval = 25 * time.Millisecond
	for {
		result, err := l.cfg.Redis.Eval(ctx, acquireRedisScript, []string{l.key(providerID)}, l.cfg.MaxConcurrent, 30).Result()
		if err != nil {
			return fmt.Errorf("acquire provider slot: %w", err)
		}
		if allowed, _ := result.(int64); allowed == 1 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (l *Limiter) releaseRedis(ctx context.Context, providerID string) {
	_ = l.cfg.Redis.Decr(ctx, l.key(providerID)).Err()
}
