package services

import (
	"encoding/hex"
	"errors"
	"io"
	"time"

	"apartmani/internal/common"
	"apartmani/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer = "apartmani-auth"

	// DefaultOneShotTokenLength is the length of activation and reset tokens.
	DefaultOneShotTokenLength = 16
)

// Reasons a bearer token is rejected. Callers collapse all of them into a
// single unauthorized outcome; they stay distinct for diagnostics.
var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
)

// TokenService issues and verifies bearer tokens and mints one-shot tokens.
type TokenService interface {
	Issue(accountID uuid.UUID) (*models.TokenResponse, error)
	Verify(token string) (uuid.UUID, error)
	NewOneShotToken() (string, error)
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret        []byte
	ttl           time.Duration
	oneShotLength int
	clock         Clock
	random        RandomSource
}

// NewTokenService creates a token service signing with the shared secret.
func NewTokenService(secret string, ttl time.Duration, oneShotLength int, clock Clock, random RandomSource) TokenService {
	if oneShotLength <= 0 {
		oneShotLength = DefaultOneShotTokenLength
	}
	if clock == nil {
		clock = SystemClock
	}
	if random == nil {
		random = SecureRandom
	}
	return &tokenService{
		secret:        []byte(secret),
		ttl:           ttl,
		oneShotLength: oneShotLength,
		clock:         clock,
		random:        random,
	}
}

// Issue signs a bearer token for the account valid for the configured window.
func (s *tokenService) Issue(accountID uuid.UUID) (*models.TokenResponse, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)

	claims := TokenClaims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, common.InternalError("sign token", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

// Verify checks signature and expiry and returns the account id the token
// was issued for. Failures are ErrTokenExpired, ErrTokenInvalidSignature or
// ErrTokenMalformed.
func (s *tokenService) Verify(token string) (uuid.UUID, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, ErrTokenInvalidSignature
		default:
			return uuid.Nil, ErrTokenMalformed
		}
	}
	if !parsed.Valid {
		return uuid.Nil, ErrTokenMalformed
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil || accountID == uuid.Nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return accountID, nil
}

// NewOneShotToken returns an opaque hex token of the configured length read
// from the secure random source.
func (s *tokenService) NewOneShotToken() (string, error) {
	buf := make([]byte, (s.oneShotLength+1)/2)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", common.InternalError("generate one-shot token", err)
	}
	return hex.EncodeToString(buf)[:s.oneShotLength], nil
}
