package middleware

import (
	"github.com/labstack/echo/v4"
)

// APIVersion is the version served under /api.
const APIVersion = "v1"

// VersionHeader stamps the API version on every response of the group.
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}

// VersionRoute creates the /api/<version> route group.
func VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/api/" + version)
	group.Use(VersionHeader(version))
	return group
}
