package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/clock"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/config"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goroutine"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/hash"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/jwt"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/mfa"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/validator"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
	"go.opentelemetry.io/otel/trace"
)

// SecurityEvent is a security relevant action published for auditing.
type SecurityEvent struct {
	Kind       event.SecurityKind
	UserID     uuid.UUID
	Email      string
	IP         string
	UserAgent  string
	Metadata   map[string]string
	OccurredAt time.Time
}

// ClientInfo describes the caller of a request, for audit events.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type repoDB interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)

	CreateUser(ctx context.Context, user entity.User) error
	UpdateUser(ctx context.Context, in entity.UserUpdate) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, at time.Time) error

	SetTOTPPending(ctx context.Context, id uuid.UUID, sealedSecret string, at time.Time) error
	EnableTOTP(ctx context.Context, id uuid.UUID, codes []entity.RecoveryCode, at time.Time) error
	DisableTOTP(ctx context.Context, id uuid.UUID, at time.Time) error
	UseRecoveryCode(ctx context.Context, userID uuid.UUID, codeHash string, at time.Time) (bool, error)
}

type repoCache interface {
	// MarkTOTPUsed records that a code of step was accepted for userID.
	// It returns false when the step was already used.
	MarkTOTPUsed(ctx context.Context, userID uuid.UUID, step uint64, ttl time.Duration) (bool, error)
}

type repoMessaging interface {
	PublishSecurityEvent(ctx context.Context, ev SecurityEvent) error
}

type passwordHasher interface {
	hash.Hash
	NeedsRehash(stored string) bool
}

type totpService interface {
	Label() string
	GenerateSecret(label, account string) (secret, uri string, err error)
	Step(at time.Time) uint64
	Verify(secret, candidate string, at time.Time) (bool, error)
	QRCode(uri string, size int) ([]byte, error)
}

type sealer interface {
	Seal(plaintext string, scope mfa.Scope) (string, error)
	Open(sealed string, scope mfa.Scope) (string, error)
}

type recoveryCodeGenerator interface {
	Generate() ([]string, error)
}

type Usecase struct {
	repoDB        repoDB
	repoCache     repoCache
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	password      passwordHasher
	hmac          hash.Hash
	limiter       *goroutine.Limiter
	sealer        sealer
	recoveryCode  recoveryCodeGenerator
	totp          totpService
	jwt           jwt.JWT
	uid           uid.NumberID
	uuid          uid.UUIDGenerator
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoCache     repoCache
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Password      passwordHasher
	HMAC          hash.Hash
	Limiter       *goroutine.Limiter
	Sealer        sealer
	RecoveryCode  recoveryCodeGenerator
	TOTP          totpService
	JWT           jwt.JWT
	UID           uid.NumberID
	UUID          uid.UUIDGenerator
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoCache:     dep.RepoCache,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		password:      dep.Password,
		hmac:          dep.HMAC,
		limiter:       dep.Limiter,
		sealer:        dep.Sealer,
		recoveryCode:  dep.RecoveryCode,
		totp:          dep.TOTP,
		jwt:           dep.JWT,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

// currentUser loads the account of the authenticated caller.
func (s *Usecase) currentUser(ctx context.Context) (*entity.User, error) {
	userID, ok := jwt.GetAuth(ctx)
	if !ok {
		return nil, goerror.NewUnauthorized(goerror.ReasonMissingOrMalformedHeader, "Authentication required")
	}

	user, err := s.repoDB.GetUserByID(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "authenticated user account not found", "user_id", userID)
		return nil, goerror.NewUnauthorized(goerror.ReasonInvalidToken, "Invalid token")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}

func (s *Usecase) hashPassword(ctx context.Context, password string) (string, error) {
	var hashed string
	err := s.limiter.Do(ctx, func() error {
		var err error
		hashed, err = s.password.Hash(password)
		return err
	})
	return hashed, err
}

func (s *Usecase) verifyPassword(ctx context.Context, password, stored string) (bool, error) {
	var ok bool
	err := s.limiter.Do(ctx, func() error {
		var err error
		ok, err = s.password.Verify(password, stored)
		return err
	})
	return ok, err
}

func (s *Usecase) otpScope(userID uuid.UUID) mfa.Scope {
	return mfa.Scope{UserID: userID, Purpose: mfa.PurposeOTPSeed}
}

// publish sends ev and only logs a failure, the action it describes already happened.
func (s *Usecase) publish(ctx context.Context, ev SecurityEvent) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.clock.Now()
	}

	if err := s.repoMessaging.PublishSecurityEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "failed to publish security event", "kind", ev.Kind, "user_id", ev.UserID, "error", err)
	}
}

// replayWindow is how long a used TOTP step is remembered.
func (s *Usecase) replayWindow() time.Duration {
	period := s.cfg.GetSecond("modules.identity.totp_period_seconds")
	if period <= 0 {
		period = 30 * time.Second
	}
	return 2 * period
}
