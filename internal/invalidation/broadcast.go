package invalidation

import (
	"context"
	"time"

	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// TopicCodeEvicted carries evictions between service instances.
const TopicCodeEvicted = "shortener.code.evicted"

// CodeEvicted is published whenever an instance evicts a code from its cache.
type CodeEvicted struct {
	Code      shortener.Code `json:"code"`
	Origin    string         `json:"origin"`
	EvictedAt time.Time      `json:"evicted_at"`
}

// BroadcastCache decorates a local cache and fans evictions out to other instances.
type BroadcastCache struct {
	local   shortener.Cache
	publish messaging.Publish[CodeEvicted]
	origin  string
	now     func() time.Time
	logger  *zap.Logger
}

// NewBroadcastCache wraps local so that every Evict is also published.
func NewBroadcastCache(
	local shortener.Cache,
	publish messaging.Publish[CodeEvicted],
	origin string,
	logger *zap.Logger,
) *BroadcastCache {
	return &BroadcastCache{
		local:   local,
		publish: publish,
		origin:  origin,
		now:     time.Now,
		logger:  logger.With(zap.String("component", "invalidation")),
	}
}

func (c *BroadcastCache) Get(ctx context.Context, code shortener.Code) (string, bool) {
	return c.local.Get(ctx, code)
}

func (c *BroadcastCache) Set(ctx context.Context, code shortener.Code, originalURL string, ttl time.Duration) {
	c.local.Set(ctx, code, originalURL, ttl)
}

// Evict removes code locally, then publishes the eviction.
// A lost event leaves peers stale for at most the cache TTL.
func (c *BroadcastCache) Evict(ctx context.Context, code shortener.Code) {
	c.local.Evict(ctx, code)

	event := &CodeEvicted{
		Code:      code,
		Origin:    c.origin,
		EvictedAt: c.now().UTC(),
	}

	if err := c.publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish eviction",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
}

// NewEvictHandler returns a consumer handler that applies remote evictions to local.
// Events published by origin itself are skipped.
func NewEvictHandler(local shortener.Cache, origin string) messaging.Handler[CodeEvicted] {
	return func(ctx context.Context, eventOrigin string, event *CodeEvicted) error {
		if eventOrigin == origin || event.Origin == origin {
			return nil
		}

		local.Evict(ctx, event.Code)

		return nil
	}
}

var _ shortener.Cache = (*BroadcastCache)(nil)
