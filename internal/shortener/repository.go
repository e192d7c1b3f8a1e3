package shortener

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned when the caller supplied an empty or malformed URL.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned by Repository.Insert when the code has already been issued.
	ErrConflict = errors.New("short code already issued")

	// ErrNotFound is returned when no mapping exists for a code.
	ErrNotFound = errors.New("url not found")

	// ErrExhaustedRetries is returned when every generated candidate collided.
	ErrExhaustedRetries = errors.New("exhausted short code attempts")

	// ErrUnavailable is returned when the store cannot be reached or timed out.
	ErrUnavailable = errors.New("store unavailable")
)

// Repository is the system of record for mappings.
type Repository interface {
	// Insert stores a new mapping. The uniqueness check and the write are one atomic
	// operation; a code that was ever issued, even if later deleted, yields ErrConflict.
	Insert(ctx context.Context, originalURL string, code Code) (*ShortURL, error)

	// FindByCode returns ErrNotFound when the code has no live mapping.
	FindByCode(ctx context.Context, code Code) (*ShortURL, error)

	// ListAll returns every mapping ordered by creation time, oldest first.
	ListAll(ctx context.Context) ([]*ShortURL, error)

	// DeleteByCode permanently removes the mapping. Returns ErrNotFound when absent.
	DeleteByCode(ctx context.Context, code Code) error
}

// Cache is a best-effort lookup layer in front of the Repository.
// Implementations swallow their own failures: a broken cache reads as a miss.
type Cache interface {
	Get(ctx context.Context, code Code) (originalURL string, ok bool)
	Set(ctx context.Context, code Code, originalURL string, ttl time.Duration)
	Evict(ctx context.Context, code Code)
}
