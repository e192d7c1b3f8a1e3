package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// DefaultCacheTimeout bounds every Redis round trip made on behalf of a request.
const DefaultCacheTimeout = 200 * time.Millisecond

// RedisCache is a Redis implementation of shortener.Cache.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRedisCache creates a new Redis-backed cache.
func NewRedisCache(client *redis.Client, timeout time.Duration, logger *zap.Logger) *RedisCache {
	if timeout <= 0 {
		timeout = DefaultCacheTimeout
	}

	return &RedisCache{
		client:  client,
		prefix:  "url:",
		timeout: timeout,
		logger:  logger.With(zap.String("component", "redis_cache")),
	}
}

func (r *RedisCache) Get(ctx context.Context, code shortener.Code) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	url, err := r.client.Get(ctx, r.key(code)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.fail("get", code, err)
		}

		return "", false
	}

	return url, true
}

func (r *RedisCache) Set(ctx context.Context, code shortener.Code, originalURL string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key(code), originalURL, ttl).Err(); err != nil {
		r.fail("set", code, err)
	}
}

func (r *RedisCache) Evict(ctx context.Context, code shortener.Code) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, r.key(code)).Err(); err != nil {
		r.fail("evict", code, err)
	}
}

func (r *RedisCache) key(code shortener.Code) string {
	return r.prefix + string(code)
}

func (r *RedisCache) fail(op string, code shortener.Code, err error) {
	metrics.CacheErrors.WithLabelValues(op).Inc()
	r.logger.Warn("cache operation failed",
		zap.String("op", op),
		zap.String("code", string(code)),
		zap.Error(err),
	)
}

// Compile-time check.
var _ shortener.Cache = (*RedisCache)(nil)
