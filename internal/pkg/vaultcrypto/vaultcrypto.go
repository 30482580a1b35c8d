package vaultcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/hash"
)

const (
	separator  = ":"
	saltLength = 16
)

var (
	// ErrMalformedSecret is returned when the stored value is not exactly "{salt}:{payload}".
	ErrMalformedSecret = errors.New("vaultcrypto: malformed encrypted secret")

	// ErrNotText is returned when decryption yields bytes that are not UTF-8.
	ErrNotText = errors.New("vaultcrypto: decrypted value is not text")

	// ErrDecrypt is returned when an authenticated payload fails to open.
	ErrDecrypt = errors.New("vaultcrypto: decryption failed")

	// ErrMissingSecret is returned when the process secret is empty.
	ErrMissingSecret = errors.New("vaultcrypto: process secret is not configured")

	// ErrUnknownMode is returned by New for an unsupported mode.
	ErrUnknownMode = errors.New("vaultcrypto: unknown cipher mode")
)

// Mode selects the payload construction. The stored value does not record
// the mode, so rows written under one mode must be re-encrypted before the
// service switches to the other.
type Mode string

const (
	ModeXOR    Mode = "xor"
	ModeAESGCM Mode = "aes-gcm"
)

// Cipher encrypts and decrypts vault secrets for one owner.
type Cipher interface {
	Encrypt(plaintext string, owner uuid.UUID) (string, error)
	Decrypt(secret string, owner uuid.UUID) (string, error)
}

// SecretSource returns the current process secret.
type SecretSource func() string

// Config configures a Service.
type Config struct {
	Mode    Mode
	Secret  SecretSource
	Deriver hash.KeyDeriver
}

// Service implements Cipher.
type Service struct {
	mode    Mode
	secret  SecretSource
	deriver hash.KeyDeriver
}

// New returns a Service. An empty mode means ModeXOR.
func New(cfg Config) (*Service, error) {
	switch cfg.Mode {
	case "":
		cfg.Mode = ModeXOR
	case ModeXOR, ModeAESGCM:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
	if cfg.Secret == nil {
		return nil, ErrMissingSecret
	}
	if cfg.Deriver == nil {
		return nil, errors.New("vaultcrypto: key deriver is required")
	}

	return &Service{mode: cfg.Mode, secret: cfg.Secret, deriver: cfg.Deriver}, nil
}

func (s *Service) Mode() Mode { return s.mode }

// Encrypt protects plaintext for owner under a fresh salt.
func (s *Service) Encrypt(plaintext string, owner uuid.UUID) (string, error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("vaultcrypto: generate salt: %w", err)
	}
	salt := base64.RawStdEncoding.EncodeToString(raw)

	key, err := s.keyMaterial(owner, salt)
	if err != nil {
		return "", err
	}

	var payload []byte
	switch s.mode {
	case ModeAESGCM:
		if payload, err = seal(key, []byte(plaintext), owner); err != nil {
			return "", err
		}
	default:
		payload = xorCycle([]byte(plaintext), key)
	}

	return salt + separator + base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt reverses Encrypt for the same owner and process secret.
func (s *Service) Decrypt(secret string, owner uuid.UUID) (string, error) {
	if strings.Count(secret, separator) != 1 {
		return "", ErrMalformedSecret
	}

	salt, encoded, _ := strings.Cut(secret, separator)
	if salt == "" {
		return "", ErrMalformedSecret
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformedSecret
	}

	key, err := s.keyMaterial(owner, salt)
	if err != nil {
		return "", err
	}

	var plain []byte
	switch s.mode {
	case ModeAESGCM:
		if plain, err = open(key, payload, owner); err != nil {
			return "", err
		}
	default:
		plain = xorCycle(payload, key)
	}

	if !utf8.Valid(plain) {
		return "", ErrNotText
	}

	return string(plain), nil
}

func (s *Service) keyMaterial(owner uuid.UUID, salt string) ([]byte, error) {
	secret := s.secret()
	if secret == "" {
		return nil, ErrMissingSecret
	}

	key, err := s.deriver.DeriveKey(owner.String()+separator+secret, salt)
	if errors.Is(err, hash.ErrMalformedSalt) {
		return nil, ErrMalformedSecret
	}
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, errors.New("vaultcrypto: key deriver returned no bytes")
	}

	return key, nil
}

func xorCycle(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}

func newGCM(material []byte) (cipher.AEAD, error) {
	key := sha256.Sum256(material)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

func seal(material, plaintext []byte, owner uuid.UUID) ([]byte, error) {
	gcm, err := newGCM(material)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("vaultcrypto: generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, owner[:]), nil
}

func open(material, payload []byte, owner uuid.UUID) ([]byte, error) {
	gcm, err := newGCM(material)
	if err != nil {
		return nil, err
	}

	if len(payload) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrMalformedSecret
	}

	nonce, sealed := payload[:gcm.NonceSize()], payload[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, owner[:])
	if err != nil {
		return nil, ErrDecrypt
	}

	return plain, nil
}
