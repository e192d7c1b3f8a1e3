package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(_ context.Context) error {
	return m.err
}

func TestHandler_Check(t *testing.T) {
	t.Run("returns ok when all dependencies are healthy", func(t *testing.T) {
		handler := health.NewHandler(map[string]health.Checker{
			"postgres": &mockChecker{},
			"redis":    &mockChecker{},
		})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, health.StatusOK, resp.Body.Status)
		assert.Equal(t, "1.0.0", resp.Body.Version)
		assert.Equal(t, map[string]string{
			"postgres": health.StatusHealthy,
			"redis":    health.StatusHealthy,
		}, resp.Body.Dependencies)
	})

	t.Run("returns degraded when a dependency is unhealthy", func(t *testing.T) {
		handler := health.NewHandler(map[string]health.Checker{
			"postgres": &mockChecker{},
			"redis":    &mockChecker{err: errors.New("connection refused")},
		})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, health.StatusDegraded, resp.Body.Status)
		assert.Equal(t, health.StatusHealthy, resp.Body.Dependencies["postgres"])
		assert.Equal(t, health.StatusUnhealthy, resp.Body.Dependencies["redis"])
	})

	t.Run("returns ok with no dependencies", func(t *testing.T) {
		handler := health.NewHandler(nil)

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, health.StatusOK, resp.Body.Status)
		assert.Empty(t, resp.Body.Dependencies)
	})
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	health.RegisterRoutes(api, health.NewHandler(map[string]health.Checker{
		"redis": &mockChecker{err: errors.New("down")},
	}))

	resp := humatest.Wrap(t, api).Get("/api/v1/health")

	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Status       string            `json:"status"`
		Version      string            `json:"version"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, health.StatusDegraded, body.Status)
	assert.Equal(t, health.Version, body.Version)
	assert.Equal(t, health.StatusUnhealthy, body.Dependencies["redis"])
}
