// Package authn turns an Authorization header into an authenticated identity.
package authn

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/jwt"
)

const scheme = "Bearer"

type validator interface {
	Validate(token string) (uuid.UUID, error)
}

// Boundary validates bearer tokens. A failure is final for the request.
type Boundary struct {
	tokens validator
}

func New(tokens validator) *Boundary {
	return &Boundary{tokens: tokens}
}

// Authenticate accepts "Bearer <token>" and returns the token subject.
//
// Every error is a *goerror.Error: 401 with a reason for client faults, or a
// server error when the token is signed but its subject is corrupt or the
// signing key is missing.
func (b *Boundary) Authenticate(header string) (uuid.UUID, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], scheme) {
		return uuid.Nil, goerror.NewUnauthorized(goerror.ReasonMissingOrMalformedHeader, "Authentication required")
	}

	subject, err := b.tokens.Validate(parts[1])
	switch {
	case err == nil:
		return subject, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return uuid.Nil, goerror.NewUnauthorized(goerror.ReasonExpiredToken, "Token has expired, please log in again")
	case errors.Is(err, jwt.ErrInvalidToken):
		return uuid.Nil, goerror.NewUnauthorized(goerror.ReasonInvalidToken, "Invalid token")
	default:
		return uuid.Nil, goerror.NewServer(err)
	}
}
