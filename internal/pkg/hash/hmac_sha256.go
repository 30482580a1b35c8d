package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 is a keyed digest for short lived or high entropy values such as
// recovery codes, where a lookup by digest is needed.
type HMACSHA256 struct {
	key []byte
}

func NewHMACSHA256(key []byte) *HMACSHA256 {
	return &HMACSHA256{key: key}
}

// Hash returns the hex digest of value.
func (s *HMACSHA256) Hash(value string) (string, error) {
	return hex.EncodeToString(s.sum(value)), nil
}

func (s *HMACSHA256) Verify(value, stored string) (bool, error) {
	expected, err := hex.DecodeString(stored)
	if err != nil {
		return false, ErrMalformedHash
	}
	return hmac.Equal(expected, s.sum(value)), nil
}

func (s *HMACSHA256) sum(value string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}
