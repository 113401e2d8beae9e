package services

import (
	"bytes"
	"errors"
	"regexp"
	"testing"
	"time"

	"apartmani/internal/common"
	"apartmani/testhelpers"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough"

func newTestTokenService(clock Clock) TokenService {
	return NewTokenService(testSecret, time.Hour, DefaultOneShotTokenLength, clock, nil)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	clock := testhelpers.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestTokenService(clock)
	accountID := uuid.New()

	token, err := svc.Issue(accountID)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, 3600, token.ExpiresIn)
	assert.Equal(t, clock.Now().Add(time.Hour), token.ExpiresAt)

	got, err := svc.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)
}

func TestTokenService_VerifyExpired(t *testing.T) {
	clock := testhelpers.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestTokenService(clock)

	token, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	clock.Advance(time.Hour + time.Second)

	_, err = svc.Verify(token.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_VerifyBadSignature(t *testing.T) {
	clock := testhelpers.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	other := NewTokenService("another-secret", time.Hour, 0, clock, nil)

	token, err := other.Issue(uuid.New())
	require.NoError(t, err)

	_, err = newTestTokenService(clock).Verify(token.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalidSignature)
}

func TestTokenService_VerifyRejectsUnsignedToken(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestTokenService(SystemClock).Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalidSignature)
}

func TestTokenService_VerifyMalformed(t *testing.T) {
	svc := newTestTokenService(SystemClock)

	tests := []struct {
		name  string
		token func() string
	}{
		{name: "garbage", token: func() string { return "not-a-token" }},
		{name: "empty", token: func() string { return "" }},
		{
			name: "subject is not an id",
			token: func() string {
				claims := jwt.RegisteredClaims{
					Issuer:    tokenIssuer,
					Subject:   "admin",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}
				s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "no expiry",
			token: func() string {
				claims := jwt.RegisteredClaims{Issuer: tokenIssuer, Subject: uuid.NewString()}
				s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token())
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestTokenService_NewOneShotToken(t *testing.T) {
	svc := newTestTokenService(SystemClock)
	hexToken := regexp.MustCompile(`^[0-9a-f]{16}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := svc.NewOneShotToken()
		require.NoError(t, err)
		assert.Regexp(t, hexToken, token)
		assert.False(t, seen[token], "one-shot tokens must not repeat")
		seen[token] = true
	}
}

func TestTokenService_NewOneShotTokenUsesRandomSource(t *testing.T) {
	random := bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef, 0x01})
	svc := NewTokenService(testSecret, time.Hour, 9, SystemClock, random)

	token, err := svc.NewOneShotToken()
	require.NoError(t, err)
	assert.Equal(t, "deadbeef0", token)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestTokenService_NewOneShotTokenRandomFailure(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, 16, SystemClock, failingReader{})

	_, err := svc.NewOneShotToken()
	assert.True(t, common.IsKind(err, common.KindInternal))
}
