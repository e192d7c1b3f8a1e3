package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/serroba/url-shortener/internal/metrics"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 5
	DefaultCacheTTL    = time.Hour
)

// Config tunes the Service.
type Config struct {
	// MaxAttempts bounds the collision-retry loop in Create.
	MaxAttempts int
	// CacheTTL bounds how long a missed invalidation can serve a deleted mapping.
	CacheTTL time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		CacheTTL:    DefaultCacheTTL,
	}
}

// Service coordinates code generation, the Repository and the Cache.
type Service struct {
	store        Repository
	cache        Cache
	generateCode CodeGenerator
	maxAttempts  int
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewService creates a new shortener service.
func NewService(store Repository, cache Cache, generator CodeGenerator, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	return &Service{
		store:        store,
		cache:        cache,
		generateCode: generator,
		maxAttempts:  cfg.MaxAttempts,
		cacheTTL:     cfg.CacheTTL,
		logger:       logger.With(zap.String("component", "shortener")),
	}
}

// Create stores originalURL under a freshly generated code.
// Candidates are retried only while the store reports ErrConflict.
func (s *Service) Create(ctx context.Context, originalURL string) (*ShortURL, error) {
	if err := validateURL(originalURL); err != nil {
		metrics.Creations.WithLabelValues(metrics.ResultInvalid).Inc()

		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code := Code(s.generateCode())
		if Reserved(string(code)) {
			s.logger.Debug("skipping reserved code", zap.String("code", string(code)))

			continue
		}

		shortURL, err := s.store.Insert(ctx, originalURL, code)
		if err == nil {
			metrics.Creations.WithLabelValues(metrics.ResultCreated).Inc()
			s.cache.Set(ctx, shortURL.Code, shortURL.OriginalURL, s.cacheTTL)

			return shortURL, nil
		}

		if !errors.Is(err, ErrConflict) {
			metrics.Creations.WithLabelValues(metrics.ResultFailed).Inc()

			return nil, err
		}

		metrics.CodeCollisions.Inc()
		s.logger.Warn("short code collision",
			zap.String("code", string(code)),
			zap.Int("attempt", attempt),
		)
	}

	metrics.Creations.WithLabelValues(metrics.ResultExhausted).Inc()
	s.logger.Error("short code space saturating",
		zap.Int("attempts", s.maxAttempts),
	)

	return nil, fmt.Errorf("%w: %d candidates collided", ErrExhaustedRetries, s.maxAttempts)
}

// Resolve returns the original URL for code. Cache hits never touch the store.
func (s *Service) Resolve(ctx context.Context, code Code) (string, error) {
	if originalURL, ok := s.cache.Get(ctx, code); ok {
		metrics.CacheLookups.WithLabelValues(metrics.ResultHit).Inc()

		return originalURL, nil
	}

	metrics.CacheLookups.WithLabelValues(metrics.ResultMiss).Inc()

	shortURL, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}

	s.cache.Set(ctx, shortURL.Code, shortURL.OriginalURL, s.cacheTTL)

	return shortURL.OriginalURL, nil
}

// Get returns the full mapping for code from the store.
func (s *Service) Get(ctx context.Context, code Code) (*ShortURL, error) {
	return s.store.FindByCode(ctx, code)
}

// ListAll returns every mapping, oldest first.
func (s *Service) ListAll(ctx context.Context) ([]*ShortURL, error) {
	return s.store.ListAll(ctx)
}

// Delete removes the mapping and evicts it from the cache.
// Eviction runs even if ctx was cancelled after the store delete succeeded.
func (s *Service) Delete(ctx context.Context, code Code) error {
	if err := s.store.DeleteByCode(ctx, code); err != nil {
		return err
	}

	s.cache.Evict(context.WithoutCancel(ctx), code)

	return nil
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: url must be absolute", ErrInvalidInput)
	}

	return nil
}
