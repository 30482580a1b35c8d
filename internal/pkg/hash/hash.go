package hash

import "errors"

var (
	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	ErrMalformedHash = errors.New("hash: malformed stored hash")

	// ErrMalformedSalt is returned by DeriveKey when the salt is not raw base64.
	ErrMalformedSalt = errors.New("hash: malformed salt")
)

// Hash turns a password into a self describing stored hash and checks it back.
//
// Verify returns false with a nil error on mismatch. An error means the stored
// value itself is unusable.
type Hash interface {
	Hash(password string) (string, error)
	Verify(password, stored string) (bool, error)
}

// KeyDeriver derives deterministic key bytes from a secret and a salt. The
// result carries no encoding or parameter prefix.
type KeyDeriver interface {
	DeriveKey(material, salt string) ([]byte, error)
}
