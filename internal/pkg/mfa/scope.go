package mfa

import (
	"crypto/sha256"

	"github.com/google/uuid"
)

// Purpose separates ciphertexts sealed for different uses.
type Purpose string

const (
	PurposeOTPSeed Purpose = "otp_seed"
)

// Scope is bound to a ciphertext as AES-GCM additional data, so a seed sealed
// for one account cannot be opened for another.
type Scope struct {
	UserID  uuid.UUID
	Purpose Purpose
}

func (s Scope) aad() []byte {
	sum := sha256.Sum256([]byte("uid=" + s.UserID.String() + "\npurpose=" + string(s.Purpose) + "\n"))
	return sum[:]
}
