package container_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/container"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInMemoryInjector(t *testing.T, cache string) *do.Injector {
	t.Helper()

	opts := validOptions()
	opts.Store = container.StoreMemory
	opts.Cache = cache
	opts.Migrate = false
	opts.BaseURL = "https://sho.rt"
	opts.LogLevel = "error"

	injector := do.New()
	container.Register(injector, opts)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector
}

func TestRepositoryPackage(t *testing.T) {
	t.Run("memory cache is shared with the service", func(t *testing.T) {
		injector := newInMemoryInjector(t, container.CacheMemory)

		cache := do.MustInvoke[shortener.Cache](injector)
		local := do.MustInvoke[*store.MemoryCache](injector)

		assert.Same(t, local, cache)
	})

	t.Run("none disables caching", func(t *testing.T) {
		injector := newInMemoryInjector(t, container.CacheNone)

		cache := do.MustInvoke[shortener.Cache](injector)

		assert.IsType(t, store.NoopCache{}, cache)
	})

	t.Run("memory store is selected", func(t *testing.T) {
		injector := newInMemoryInjector(t, container.CacheNone)

		repo := do.MustInvoke[shortener.Repository](injector)

		assert.IsType(t, &store.MemoryStore{}, repo)
	})
}

func TestHTTPPackage(t *testing.T) {
	injector := newInMemoryInjector(t, container.CacheMemory)
	_ = do.MustInvoke[huma.API](injector)
	router := do.MustInvoke[*chi.Mux](injector)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		return w
	}

	var created struct {
		ShortCode string `json:"short_code"`
		ShortURL  string `json:"short_url"`
	}

	t.Run("create uses the configured base url", func(t *testing.T) {
		w := serve(http.MethodPost, "/api/v1/shorten", `{"long_url":"https://example.com/a"}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "https://sho.rt/"+created.ShortCode, created.ShortURL)
	})

	t.Run("redirect resolves the new code", func(t *testing.T) {
		w := serve(http.MethodGet, "/"+created.ShortCode, "")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/a", w.Header().Get("Location"))
	})

	t.Run("health reports no external dependencies", func(t *testing.T) {
		w := serve(http.MethodGet, "/api/v1/health", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		w := serve(http.MethodGet, "/metrics", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "shortener_creations_total")
	})
}
