package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_StatusFollowsActivationToken(t *testing.T) {
	token := "0123456789abcdef"
	account := &Account{ActivationToken: &token}
	assert.Equal(t, AccountStatusPendingActivation, account.Status())
	assert.False(t, account.IsActive())

	account.Activate()
	assert.Equal(t, AccountStatusActive, account.Status())
	assert.Nil(t, account.ActivationToken)
}

func TestAccount_PasswordResetPair(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	account := &Account{}
	assert.True(t, account.PasswordResetExpired(now))

	account.SetPasswordReset("token", now.Add(10*time.Minute))
	assert.False(t, account.PasswordResetExpired(now))
	assert.False(t, account.PasswordResetExpired(now.Add(10*time.Minute)))
	assert.True(t, account.PasswordResetExpired(now.Add(10*time.Minute+time.Nanosecond)))

	account.ClearPasswordReset()
	assert.Nil(t, account.PasswordResetToken)
	assert.Nil(t, account.PasswordResetExpiresAt)
}

func TestAccount_JSONHidesSecrets(t *testing.T) {
	token := "0123456789abcdef"
	account := &Account{
		Email:              "marko@example.com",
		Username:           "marko",
		PasswordHash:       "$2a$10$hash",
		ActivationToken:    &token,
		PasswordResetToken: &token,
	}

	raw, err := json.Marshal(account)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "$2a$10$hash")
	assert.NotContains(t, string(raw), token)
}
