package mfa

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// Sealed layout before base64: version(1) | nonce(12) | ciphertext+tag.
const (
	sealVersion byte = 1
	aesKeyLen        = 32
)

var (
	ErrEmptyPlaintext  = errors.New("mfa: plaintext is empty")
	ErrInvalidKey      = errors.New("mfa: key must be 32 bytes")
	ErrMalformedSealed = errors.New("mfa: malformed sealed value")
	ErrOpenFailed      = errors.New("mfa: open failed")
)

// KeyProvider returns the AES-256 key for a scope.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}

// StaticKeyProvider uses one key for every scope.
type StaticKeyProvider struct {
	KeyBytes []byte
}

func (p StaticKeyProvider) Key(Scope) ([]byte, error) {
	if len(p.KeyBytes) != aesKeyLen {
		return nil, ErrInvalidKey
	}
	return append([]byte(nil), p.KeyBytes...), nil
}

// Sealer encrypts short secrets with AES-256-GCM into base64 text that fits a
// TEXT column.
type Sealer struct {
	keys KeyProvider
}

func NewSealer(keys KeyProvider) *Sealer {
	return &Sealer{keys: keys}
}

// Seal encrypts plaintext bound to scope.
func (s *Sealer) Seal(plaintext string, scope Scope) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	gcm, err := s.gcm(scope)
	if err != nil {
		return "", err
	}

	out := make([]byte, 1+gcm.NonceSize(), 1+gcm.NonceSize()+len(plaintext)+gcm.Overhead())
	out[0] = sealVersion
	if _, err := rand.Read(out[1:]); err != nil {
		return "", fmt.Errorf("mfa: nonce: %w", err)
	}

	out = gcm.Seal(out, out[1:], []byte(plaintext), scope.aad())

	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. A wrong scope, key or a tampered value all yield ErrOpenFailed.
func (s *Sealer) Open(sealed string, scope Scope) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) == 0 || raw[0] != sealVersion {
		return "", ErrMalformedSealed
	}

	gcm, err := s.gcm(scope)
	if err != nil {
		return "", err
	}

	if len(raw) < 1+gcm.NonceSize()+gcm.Overhead() {
		return "", ErrMalformedSealed
	}

	nonce, body := raw[1:1+gcm.NonceSize()], raw[1+gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, body, scope.aad())
	if err != nil {
		return "", ErrOpenFailed
	}

	return string(plain), nil
}

func (s *Sealer) gcm(scope Scope) (cipher.AEAD, error) {
	key, err := s.keys.Key(scope)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mfa: aes: %w", err)
	}

	return cipher.NewGCM(block)
}
