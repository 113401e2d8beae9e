package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is a rentable property owned by exactly one account.
type Unit struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (u *Unit) OwnedBy(accountID uuid.UUID) bool {
	return u.OwnerID == accountID
}
