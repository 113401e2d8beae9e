package services

import (
	"errors"

	"apartmani/internal/common"

	"golang.org/x/crypto/bcrypt"
)

// CredentialService hashes and verifies account passwords.
type CredentialService interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type credentialService struct {
	cost int
}

// NewCredentialService creates a bcrypt backed credential service. A cost
// outside bcrypt's accepted range falls back to bcrypt.DefaultCost.
func NewCredentialService(cost int) CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &credentialService{cost: cost}
}

// Hash salts and hashes the password. Any failure is internal: an unhashed
// password must never reach the store.
func (s *credentialService) Hash(password string) (string, error) {
	if password == "" {
		return "", common.InternalError("hash password", errors.New("empty password"))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", common.InternalError("hash password", err)
	}
	return string(hashed), nil
}

func (s *credentialService) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
