package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryCache is an in-process implementation of shortener.Cache.
type MemoryCache struct {
	items *cache.Cache
}

// NewMemoryCache creates a cache whose expired entries are purged every cleanupInterval.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (m *MemoryCache) Get(_ context.Context, code shortener.Code) (string, bool) {
	v, ok := m.items.Get(string(code))
	if !ok {
		return "", false
	}

	url, ok := v.(string)

	return url, ok
}

func (m *MemoryCache) Set(_ context.Context, code shortener.Code, originalURL string, ttl time.Duration) {
	m.items.Set(string(code), originalURL, ttl)
}

func (m *MemoryCache) Evict(_ context.Context, code shortener.Code) {
	m.items.Delete(string(code))
}

// Len returns the number of entries, including expired ones not yet purged.
func (m *MemoryCache) Len() int {
	return m.items.ItemCount()
}

// NoopCache never stores anything; every lookup misses.
type NoopCache struct{}

// NewNoopCache creates a cache that disables caching.
func NewNoopCache() NoopCache {
	return NoopCache{}
}

func (NoopCache) Get(context.Context, shortener.Code) (string, bool) { return "", false }

func (NoopCache) Set(context.Context, shortener.Code, string, time.Duration) {}

func (NoopCache) Evict(context.Context, shortener.Code) {}

// Compile-time checks.
var (
	_ shortener.Cache = (*MemoryCache)(nil)
	_ shortener.Cache = NoopCache{}
)
