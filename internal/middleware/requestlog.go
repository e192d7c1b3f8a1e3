package middleware

import (
	"net"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RequestLogger writes one access log entry per request handled by the API.
// Server errors are logged at warn level; everything else at info.
func RequestLogger(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	logger = logger.With(zap.String("component", "http"))

	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		status := ctx.Status()
		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.URL().Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", extractClientIP(ctx)),
			zap.String("user_agent", ctx.Header("User-Agent")),
		}

		if op := ctx.Operation(); op != nil && op.OperationID != "" {
			fields = append(fields, zap.String("operation", op.OperationID))
		}

		if status >= 500 {
			logger.Warn("request", fields...)

			return
		}

		logger.Info("request", fields...)
	}
}

func extractClientIP(ctx huma.Context) string {
	// X-Forwarded-For may carry a chain; the first entry is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}

	return addr
}
