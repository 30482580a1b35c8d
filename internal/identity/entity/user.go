package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	// TOTPSecret is the sealed Base32 seed, empty unless the state is Pending or Enabled.
	TOTPSecret string
	TOTPState  TOTPState
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastLogin  *time.Time
}

// UserUpdate carries the optional fields of a profile update. Nil means unchanged.
type UserUpdate struct {
	ID           uuid.UUID
	Username     *string
	Email        *string
	PasswordHash *string
	UpdatedAt    time.Time
}

func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil
}

type RecoveryCode struct {
	ID        int64
	UserID    uuid.UUID
	CodeHash  string
	UsedAt    *time.Time
	CreatedAt time.Time
}
