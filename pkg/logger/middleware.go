package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// correlationIDKey marks the context storage slot for the correlation identifier.
type correlationIDKey struct{}

// CorrelationIDFromContext returns the correlation identifier stored in ctx, or an empty string when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}

	return ""
}

// Middleware injects a correlation identifier into the request context and
// echoes it back in the X-Correlation-ID response header.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			correlationID := uuid.NewString()

			req := c.Request()
			ctxWithID := context.WithValue(req.Context(), correlationIDKey{}, correlationID)
			c.SetRequest(req.WithContext(ctxWithID))
			c.Response().Header().Set("X-Correlation-ID", correlationID)

			return next(c)
		}
	}
}
