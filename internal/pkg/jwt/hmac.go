package jwt

import (
	"errors"
	"fmt"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// HMAC is the symmetric JWT implementation.
type HMAC struct {
	key    KeySource
	method *libJWT.SigningMethodHMAC
	issuer string
	ttl    time.Duration
	clock  clocker
}

// NewHMAC builds an HMAC token service. Empty fields take the package defaults.
func NewHMAC(cfg Config) (*HMAC, error) {
	if cfg.Key == nil {
		return nil, ErrMissingKey
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = DefaultAlgorithm
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}

	method, ok := libJWT.GetSigningMethod(cfg.Algorithm).(*libJWT.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}

	return &HMAC{
		key:    cfg.Key,
		method: method,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		clock:  cfg.Clock,
	}, nil
}

// Issue signs {sub, iss, iat, exp} for subject.
func (s *HMAC) Issue(subject uuid.UUID) (string, error) {
	key := s.key()
	if len(key) == 0 {
		return "", ErrMissingKey
	}

	now := s.clock.Now()

	return libJWT.NewWithClaims(s.method, libJWT.RegisteredClaims{
		Subject:   subject.String(),
		Issuer:    s.issuer,
		IssuedAt:  libJWT.NewNumericDate(now),
		ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
	}).SignedString(key)
}

// Validate checks signature, algorithm, issuer, iat and exp and returns the subject.
func (s *HMAC) Validate(token string) (uuid.UUID, error) {
	key := s.key()
	if len(key) == 0 {
		return uuid.Nil, ErrMissingKey
	}

	var claims libJWT.RegisteredClaims
	_, err := libJWT.ParseWithClaims(token, &claims,
		func(*libJWT.Token) (any, error) { return key, nil },
		libJWT.WithValidMethods([]string{s.method.Alg()}),
		libJWT.WithIssuer(s.issuer),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil || subject == uuid.Nil {
		return uuid.Nil, ErrInvalidSubject
	}

	return subject, nil
}
