package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kobo-labs/budget-agent/internal/ratelimit"
)

// RateLimit creates an echo middleware throttling requests per client IP.
// Limiter failures fail open: a degraded limiter must not take the endpoint
// down with it.
func RateLimit(limiter ratelimit.Limiter, limit int, window time.Duration, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}

			result, err := limiter.Check(c.Request().Context(), c.RealIP(), limit, window)
			if err != nil {
				log.Warn("rate limiter check failed", slog.Any("error", err))
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": ratelimit.ErrLimitExceeded.Error(),
				})
			}

			return next(c)
		}
	}
}
