package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RemoteCacheConfig configures the Redis-backed remote embedding-artifact
// cache, mirroring the teacher's security/ratelimit.RedisConfig shape.
type RemoteCacheConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RemoteCache fetches and stores embedding vectors in Redis, keyed by
// (providerId, model, cacheKey), so identical content hashed under one
// workspace can be reused by another without re-calling the provider.
// Grounded on the teacher's internal/security/ratelimit Redis client setup
// (same go-redis/v9 options, same connectivity-check-on-construct pattern),
// repurposed from request counters to artifact storage.
type RemoteCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRemoteCache connects to Redis and verifies connectivity before
// returning, matching the teacher's NewRateLimiter behavior.
func NewRemoteCache(cfg RemoteCacheConfig) (*RemoteCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &RemoteCache{client: client, keyPrefix: cfg.KeyPrefix, ttl: ttl}, nil
}

func (c *RemoteCache) key(providerID, model, cacheKey string) string {
	prefix := c.keyPrefix
	if prefix == "" {
		prefix = "conexus:embedding"
	}
	return fmt.Sprintf("%s:%s:%s:%s", prefix, providerID, model, cacheKey)
}

type cachedVector struct {
	Vector Vector `json:"vector"`
	Model  string `json:"model"`
}

// Get returns the cached embedding for (providerID, model, cacheKey), or
// (nil, false) on a miss.
func (c *RemoteCache) Get(ctx context.Context, providerID, model, cacheKey string) (*Embedding, bool, error) {
	raw, err := c.client.Get(ctx, c.key(providerID, model, cacheKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s/%s/%s: %w", providerID, model, cacheKey, err)
	}

	var cv cachedVector
	if err := json.Unmarshal(raw, &cv); err != nil {
		return nil, false, fmt.Errorf("decode cached vector: %w", err)
	}
	return &Embedding{Vector: cv.Vector, Model: cv.Model}, true, nil
}

// Put stores an embedding under (providerID, model, cacheKey) with the
// configured TTL.
func (c *RemoteCache) Put(ctx context.Context, providerID, model, cacheKey string, emb *Embedding) error {
	data, err := json.Marshal(cachedVector{Vector: emb.Vector, Model: emb.Model})
	if err != nil {
		return fmt.Errorf("encode vector: %w", err)
	}
	if err := c.client.Set(ctx, c.key(providerID, model, cacheKey), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("put %s/%s/%s: %w", providerID, model, cacheKey, err)
	}
	return nil
}

// Close releases the underlying Redis client.
func (c *RemoteCache) Close() error {
	return c.client.Close()
}
