package models

import "time"

// TokenResponse is returned by login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginResult pairs the issued bearer token with the public profile.
type LoginResult struct {
	TokenResponse
	User *Profile `json:"user"`
}
