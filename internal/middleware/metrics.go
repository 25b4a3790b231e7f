package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kobo-labs/budget-agent/pkg/metrics"
)

// Metrics measures request duration and status for HTTP handlers, reporting
// them to Prometheus.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
			}

			metrics.RecordHTTPRequest(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
				time.Since(start),
			)

			return err
		}
	}
}
