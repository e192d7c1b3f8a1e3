package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	urls   map[shortener.Code]*shortener.ShortURL
	issued map[shortener.Code]struct{} // every code ever inserted, never pruned
	now    func() time.Time
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls:   make(map[shortener.Code]*shortener.ShortURL),
		issued: make(map[shortener.Code]struct{}),
		now:    time.Now,
	}
}

func (m *MemoryStore) Insert(_ context.Context, originalURL string, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.issued[code]; ok {
		return nil, shortener.ErrConflict
	}

	m.nextID++
	shortURL := &shortener.ShortURL{
		ID:          m.nextID,
		Code:        code,
		OriginalURL: originalURL,
		CreatedAt:   m.now(),
	}

	m.issued[code] = struct{}{}
	m.urls[code] = shortURL

	copied := *shortURL

	return &copied, nil
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	shortURL, ok := m.urls[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	copied := *shortURL

	return &copied, nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*shortener.ShortURL, 0, len(m.urls))
	for _, shortURL := range m.urls {
		copied := *shortURL
		list = append(list, &copied)
	}

	// IDs are assigned in insertion order, so they break CreatedAt ties.
	slices.SortFunc(list, func(a, b *shortener.ShortURL) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return list, nil
}

func (m *MemoryStore) DeleteByCode(_ context.Context, code shortener.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[code]; !ok {
		return shortener.ErrNotFound
	}

	delete(m.urls, code)

	return nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
