package entity

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ParentID    *uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryUpdate carries optional fields. Nil means unchanged, ClearParent moves
// the category to the top level.
type CategoryUpdate struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        *string
	Description *string
	ParentID    *uuid.UUID
	ClearParent bool
	UpdatedAt   time.Time
}

// Credential is a stored login. Password holds the encrypted secret, never plaintext.
type Credential struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	Name       string
	Username   string
	Password   string
	Website    string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CredentialUpdate struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	CategoryID    *uuid.UUID
	ClearCategory bool
	Name          *string
	Username      *string
	Password      *string
	Website       *string
	Notes         *string
	UpdatedAt     time.Time
}
