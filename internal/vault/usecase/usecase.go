package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/clock"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/config"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goroutine"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/idempotency"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/jwt"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/validator"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/vaultcrypto"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	ListCategories(ctx context.Context, userID uuid.UUID) ([]entity.Category, error)
	GetCategory(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error)
	CreateCategory(ctx context.Context, in entity.Category) error
	UpdateCategory(ctx context.Context, in entity.CategoryUpdate) (*entity.Category, error)
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error

	ListCredentials(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]entity.Credential, error)
	GetCredential(ctx context.Context, userID, id uuid.UUID) (*entity.Credential, error)
	CreateCredential(ctx context.Context, in entity.Credential) error
	UpdateCredential(ctx context.Context, in entity.CredentialUpdate) (*entity.Credential, error)
	DeleteCredential(ctx context.Context, userID, id uuid.UUID) error
}

type repoBlob interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type cipher interface {
	vaultcrypto.Cipher
	Mode() vaultcrypto.Mode
}

type Usecase struct {
	repoDB    repoDB
	repoBlob  repoBlob
	cipher    cipher
	limiter   *goroutine.Limiter
	idemp     idempotency.Idempotency
	validator validator.Validator
	cfg       config.Config
	uuid      uid.UUIDGenerator
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	RepoBlob    repoBlob
	Cipher      cipher
	Limiter     *goroutine.Limiter
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Config      config.Config
	UUID        uid.UUIDGenerator
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		repoBlob:  dep.RepoBlob,
		cipher:    dep.Cipher,
		limiter:   dep.Limiter,
		idemp:     dep.Idempotency,
		validator: dep.Validator,
		cfg:       dep.Config,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.usecase").Start(ctx, name)
}

func (s *Usecase) owner(ctx context.Context) (uuid.UUID, error) {
	userID, ok := jwt.GetAuth(ctx)
	if !ok {
		return uuid.Nil, goerror.NewUnauthorized(goerror.ReasonMissingOrMalformedHeader, "Authentication required")
	}
	return userID, nil
}

func (s *Usecase) encrypt(ctx context.Context, plaintext string, owner uuid.UUID) (string, error) {
	var secret string
	err := s.limiter.Do(ctx, func() error {
		var err error
		secret, err = s.cipher.Encrypt(plaintext, owner)
		return err
	})
	return secret, err
}

func (s *Usecase) decrypt(ctx context.Context, secret string, owner uuid.UUID) (string, error) {
	var plaintext string
	err := s.limiter.Do(ctx, func() error {
		var err error
		plaintext, err = s.cipher.Decrypt(secret, owner)
		return err
	})
	return plaintext, err
}

// ensureCategory reports NotFound unless id names a category of userID.
func (s *Usecase) ensureCategory(ctx context.Context, userID, id uuid.UUID) error {
	_, err := s.repoDB.GetCategory(ctx, userID, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Category not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get category", "user_id", userID, "category_id", id, "error", err)
		return goerror.NewServer(err)
	}
	return nil
}
