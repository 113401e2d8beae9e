// Package server assembles the HTTP surface.
package server

import (
	"log/slog"
	"net"
	"time"

	"apartmani/internal/caching"
	"apartmani/internal/common"
	"apartmani/internal/handlers"
	"apartmani/internal/middleware"
	"apartmani/internal/services"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Accounts     services.AccountService
	Units        services.UnitService
	Reservations services.ReservationService
	Tokens       services.TokenService
	Resolver     middleware.AccountResolver
	Health       *handlers.HealthHandlers

	// RateLimiter may be nil, which disables rate limiting.
	RateLimiter        caching.RateLimiter
	RateLimitPerMinute int

	// TrustedProxies are the only peers whose X-Forwarded-For is honoured.
	// When empty the client IP is the connection's remote address.
	TrustedProxies []*net.IPNet

	Logger *slog.Logger
}

// NewRouter builds the echo instance with every route registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = common.HTTPErrorHandler(d.Logger)
	e.IPExtractor = ipExtractor(d.TrustedProxies)

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoMiddleware.CORS())

	if d.Health != nil {
		e.GET("/health", d.Health.HealthCheck)
		e.GET("/health/ready", d.Health.ReadinessCheck)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authHandlers := handlers.NewAuthHandlers(d.Accounts)
	userHandlers := handlers.NewUserHandlers(d.Accounts)
	unitHandlers := handlers.NewUnitHandlers(d.Units, d.Reservations)
	reservationHandlers := handlers.NewReservationHandlers(d.Reservations)

	limit := func(scope string) echo.MiddlewareFunc {
		if d.RateLimiter == nil {
			return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		}
		return middleware.RateLimit(d.RateLimiter, scope, d.RateLimitPerMinute, time.Minute, d.Logger)
	}

	v1 := middleware.VersionRoute(e, middleware.APIVersion)

	v1.POST("/signup", authHandlers.Signup)
	v1.POST("/login", authHandlers.Login, limit("login"))
	v1.POST("/activate/:token", authHandlers.Activate)
	v1.POST("/user/reset-password", authHandlers.RequestPasswordReset, limit("reset"))
	v1.PATCH("/user/reset-password/:token", authHandlers.ResetPassword)

	protected := v1.Group("")
	protected.Use(middleware.AuthGate(d.Tokens, d.Resolver, d.Logger))

	protected.GET("/me", userHandlers.Me)
	protected.PATCH("/user/me", userHandlers.UpdateProfile)
	protected.PATCH("/user/password", userHandlers.ChangePassword)

	protected.POST("/units", unitHandlers.CreateUnit)
	protected.GET("/units", unitHandlers.ListUnits)
	protected.GET("/units/:id", unitHandlers.GetUnit)
	protected.GET("/units/:id/reservations", unitHandlers.ListUnitReservations)

	protected.POST("/reservations", reservationHandlers.CreateReservation)
	protected.GET("/reservations/:id", reservationHandlers.NotImplemented)
	protected.PATCH("/reservations/:id", reservationHandlers.NotImplemented)
	protected.DELETE("/reservations/:id", reservationHandlers.NotImplemented)

	return e
}

func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipRange := range trusted {
		options = append(options, echo.TrustIPRange(ipRange))
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

// requestLogger writes one access log line per request. It logs the route
// template, never the raw URI: activation and reset paths carry one-shot tokens.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= 500 {
				level = slog.LevelWarn
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("route", routeOrUnmatched(v.RoutePath)),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

func routeOrUnmatched(route string) string {
	if route == "" {
		return "unmatched"
	}
	return route
}
