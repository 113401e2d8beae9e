package middleware

import (
	"context"
	"errors"
	"log/slog"

	"apartmani/internal/common"
	"apartmani/internal/metrics"
	"apartmani/internal/models"
	"apartmani/internal/repositories"
	"apartmani/internal/services"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// AccountIDContextKey is the echo context key holding the resolved account id.
const AccountIDContextKey = "account_id"

const rejectionContextKey = "auth_rejection"

// AccountResolver looks up the account a bearer token names.
type AccountResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// AuthGate resolves the bearer token on every protected request to an
// account id stored in the request context. It does not check whether the
// account is active.
func AuthGate(tokens services.TokenService, accounts AccountResolver, logger *slog.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: AccountIDContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			accountID, err := resolve(c.Request().Context(), tokens, accounts, auth)
			if err != nil {
				c.Set(rejectionContextKey, err)
				return nil, err
			}
			c.SetRequest(c.Request().WithContext(common.WithAccountID(c.Request().Context(), accountID)))
			return accountID, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if rejection, ok := c.Get(rejectionContextKey).(error); ok {
				if common.IsKind(rejection, common.KindInternal) {
					logger.ErrorContext(c.Request().Context(), "failed to resolve account", "error", rejection)
				}
				return rejection
			}
			metrics.ObserveGateRejection("missing")
			return common.UnauthorizedError("You are not logged in! Please log in to get access.")
		},
	})
}

func resolve(ctx context.Context, tokens services.TokenService, accounts AccountResolver, raw string) (uuid.UUID, error) {
	accountID, err := tokens.Verify(raw)
	if err != nil {
		reason := "invalid"
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			reason = "expired"
		case errors.Is(err, services.ErrTokenInvalidSignature):
			reason = "bad_signature"
		case errors.Is(err, services.ErrTokenMalformed):
			reason = "malformed"
		}
		metrics.ObserveGateRejection(reason)
		return uuid.Nil, common.UnauthorizedError("Invalid token! Please log in again.")
	}

	if _, err := accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.ObserveGateRejection("account_gone")
			return uuid.Nil, common.UnauthorizedError("The account belonging to this token no longer exists.")
		}
		return uuid.Nil, common.InternalError("resolve account", err)
	}
	return accountID, nil
}

// AccountID returns the account resolved by AuthGate.
func AccountID(c echo.Context) (uuid.UUID, bool) {
	return common.GetAccountIDFromContext(c.Request().Context())
}
