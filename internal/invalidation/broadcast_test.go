package invalidation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/serroba/url-shortener/internal/invalidation"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedPublish struct {
	events []*invalidation.CodeEvicted
	err    error
}

func (r *recordedPublish) publish(_ context.Context, event *invalidation.CodeEvicted) error {
	r.events = append(r.events, event)

	return r.err
}

func TestBroadcastCache(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates reads and writes to the local cache", func(t *testing.T) {
		local := store.NewMemoryCache(time.Minute)
		rec := &recordedPublish{}
		c := invalidation.NewBroadcastCache(local, rec.publish, "instance-a", zap.NewNop())

		c.Set(ctx, "abc123", "https://example.com", time.Minute)

		got, ok := c.Get(ctx, "abc123")
		require.True(t, ok)
		assert.Equal(t, "https://example.com", got)
		assert.Empty(t, rec.events)
	})

	t.Run("evicts locally and publishes the eviction", func(t *testing.T) {
		local := store.NewMemoryCache(time.Minute)
		rec := &recordedPublish{}
		c := invalidation.NewBroadcastCache(local, rec.publish, "instance-a", zap.NewNop())

		c.Set(ctx, "abc123", "https://example.com", time.Minute)
		c.Evict(ctx, "abc123")

		_, ok := local.Get(ctx, "abc123")
		assert.False(t, ok)
		require.Len(t, rec.events, 1)
		assert.Equal(t, shortener.Code("abc123"), rec.events[0].Code)
		assert.Equal(t, "instance-a", rec.events[0].Origin)
		assert.False(t, rec.events[0].EvictedAt.IsZero())
	})

	t.Run("still evicts locally when publish fails", func(t *testing.T) {
		local := store.NewMemoryCache(time.Minute)
		rec := &recordedPublish{err: errors.New("broker down")}
		c := invalidation.NewBroadcastCache(local, rec.publish, "instance-a", zap.NewNop())

		c.Set(ctx, "abc123", "https://example.com", time.Minute)
		c.Evict(ctx, "abc123")

		_, ok := local.Get(ctx, "abc123")
		assert.False(t, ok)
	})
}

func TestEvictHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("evicts codes published by other instances", func(t *testing.T) {
		local := store.NewMemoryCache(time.Minute)
		local.Set(ctx, "abc123", "https://example.com", time.Minute)
		handler := invalidation.NewEvictHandler(local, "instance-b")

		err := handler(ctx, "instance-a", &invalidation.CodeEvicted{Code: "abc123", Origin: "instance-a"})

		require.NoError(t, err)
		_, ok := local.Get(ctx, "abc123")
		assert.False(t, ok)
	})

	t.Run("ignores its own events", func(t *testing.T) {
		local := store.NewMemoryCache(time.Minute)
		local.Set(ctx, "abc123", "https://example.com", time.Minute)
		handler := invalidation.NewEvictHandler(local, "instance-a")

		err := handler(ctx, "instance-a", &invalidation.CodeEvicted{Code: "abc123", Origin: "instance-a"})

		require.NoError(t, err)
		_, ok := local.Get(ctx, "abc123")
		assert.True(t, ok)
	})
}

func TestFanOut(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, messaging.NewZapLoggerAdapter(logger))

	t.Cleanup(func() { _ = pubsub.Close() })

	localA := store.NewMemoryCache(time.Minute)
	localB := store.NewMemoryCache(time.Minute)

	consumer := messaging.NewConsumer(
		pubsub,
		invalidation.TopicCodeEvicted,
		invalidation.NewEvictHandler(localB, "instance-b"),
		logger,
	)
	require.NoError(t, consumer.Start(ctx))

	t.Cleanup(func() { _ = consumer.Shutdown() })

	publish := messaging.NewPublishFunc[invalidation.CodeEvicted](pubsub, invalidation.TopicCodeEvicted, "instance-a")
	cacheA := invalidation.NewBroadcastCache(localA, publish, "instance-a", logger)

	cacheA.Set(ctx, "abc123", "https://example.com", time.Minute)
	localB.Set(ctx, "abc123", "https://example.com", time.Minute)

	cacheA.Evict(ctx, "abc123")

	assert.Eventually(t, func() bool {
		_, ok := localB.Get(ctx, "abc123")

		return !ok
	}, time.Second, 10*time.Millisecond)
}
