package middleware

import (
	"log/slog"
	"time"

	"apartmani/internal/caching"
	"apartmani/internal/common"

	"github.com/labstack/echo/v4"
)

// RateLimit allows at most limit requests per client IP and scope within
// window. Limiter errors let the request through.
func RateLimit(limiter caching.RateLimiter, scope string, limit int, window time.Duration, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limit <= 0 {
				return next(c)
			}

			key := "ratelimit:" + scope + ":" + c.RealIP()
			allowed, err := limiter.Allow(c.Request().Context(), key, limit, window)
			if err != nil {
				logger.WarnContext(c.Request().Context(), "rate limiter unavailable", "scope", scope, "error", err)
				return next(c)
			}
			if !allowed {
				return common.TooManyRequestsError("Too many requests from this IP, please try again later")
			}
			return next(c)
		}
	}
}
