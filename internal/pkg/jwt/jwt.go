package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultIssuer    = "dragonfruit"
	DefaultTTL       = 24 * time.Hour
	DefaultAlgorithm = "HS256"
)

var (
	// ErrTokenExpired is returned when a correctly signed token is past exp.
	ErrTokenExpired = errors.New("jwt: token expired")

	// ErrInvalidToken covers every other signature or structural failure.
	ErrInvalidToken = errors.New("jwt: invalid token")

	// ErrInvalidSubject is returned when a correctly signed token carries a
	// subject that is not a UUID. It points at a server side integrity fault.
	ErrInvalidSubject = errors.New("jwt: signed subject is not a valid identity")

	// ErrMissingKey is returned when the KeySource yields no key.
	ErrMissingKey = errors.New("jwt: signing key is not configured")

	// ErrUnsupportedAlgorithm is returned by NewHMAC for non HMAC algorithms.
	ErrUnsupportedAlgorithm = errors.New("jwt: unsupported signing algorithm")
)

// JWT issues tokens for an identity and validates them back.
type JWT interface {
	Issue(subject uuid.UUID) (string, error)
	Validate(token string) (uuid.UUID, error)
}

// KeySource returns the current signing key.
type KeySource func() []byte

// StaticKey returns a KeySource that always yields key.
func StaticKey(key []byte) KeySource {
	return func() []byte { return key }
}

type clocker interface {
	Now() time.Time
}

// Config configures an HMAC token service.
type Config struct {
	Key       KeySource
	Issuer    string
	TTL       time.Duration
	Algorithm string
	Clock     clocker
}

type authContextKey struct{}

// SetAuth stores the authenticated identity in ctx.
func SetAuth(ctx context.Context, subject uuid.UUID) context.Context {
	return context.WithValue(ctx, authContextKey{}, subject)
}

// GetAuth returns the authenticated identity stored in ctx.
func GetAuth(ctx context.Context) (uuid.UUID, bool) {
	subject, ok := ctx.Value(authContextKey{}).(uuid.UUID)
	return subject, ok && subject != uuid.Nil
}
