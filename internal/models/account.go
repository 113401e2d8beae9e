package models

import (
	"time"

	"github.com/google/uuid"
)

type AccountStatus string

const (
	AccountStatusPendingActivation AccountStatus = "pending_activation"
	AccountStatusActive            AccountStatus = "active"
)

// Account is a registered user. Status is derived from ActivationToken and
// is never stored on its own.
type Account struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	Email                  string     `json:"email" db:"email"`
	Username               string     `json:"username" db:"username"`
	PasswordHash           string     `json:"-" db:"password_hash"` // Never serialize in JSON
	ActivationToken        *string    `json:"-" db:"activation_token"`
	PasswordResetToken     *string    `json:"-" db:"password_reset_token"`
	PasswordResetExpiresAt *time.Time `json:"-" db:"password_reset_expires_at"`
	PasswordChangedAt      *time.Time `json:"password_changed_at,omitempty" db:"password_changed_at"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

func (a *Account) Status() AccountStatus {
	if a.ActivationToken != nil {
		return AccountStatusPendingActivation
	}
	return AccountStatusActive
}

func (a *Account) IsActive() bool {
	return a.Status() == AccountStatusActive
}

// Activate clears the activation token, moving the account to Active.
func (a *Account) Activate() {
	a.ActivationToken = nil
}

// SetPasswordReset stores a reset token together with its expiry.
func (a *Account) SetPasswordReset(token string, expiresAt time.Time) {
	a.PasswordResetToken = &token
	a.PasswordResetExpiresAt = &expiresAt
}

// ClearPasswordReset removes the reset token and its expiry together.
func (a *Account) ClearPasswordReset() {
	a.PasswordResetToken = nil
	a.PasswordResetExpiresAt = nil
}

// PasswordResetExpired reports whether the stored reset token can no longer be used at now.
func (a *Account) PasswordResetExpired(now time.Time) bool {
	if a.PasswordResetToken == nil || a.PasswordResetExpiresAt == nil {
		return true
	}
	return now.After(*a.PasswordResetExpiresAt)
}

func (a *Account) Profile() *Profile {
	return &Profile{Username: a.Username, Email: a.Email}
}

// Profile is the minimal public view of an account.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
