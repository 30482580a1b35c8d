package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/mfa"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
)

type LoginInput struct {
	Username     string `validate:"required"`
	Password     string `validate:"required"`
	TOTPCode     string
	RecoveryCode string
	Client       ClientInfo
}

type LoginOutput struct {
	User  entity.User
	Token string
}

var errInvalidLogin = goerror.NewUnauthorized(goerror.ReasonInvalidCredentials, "Invalid username or password")

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, errInvalidLogin
	}

	user, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "username", in.Username)
		return nil, errInvalidLogin
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	ok, err := s.verifyPassword(ctx, in.Password, user.PasswordHash)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify stored password hash", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		s.loginFailed(ctx, user, in.Client, "password")
		return nil, errInvalidLogin
	}

	now := s.clock.Now()
	if user.TOTPState == entity.TOTPStateEnabled {
		if err := s.secondFactor(ctx, user, in, now); err != nil {
			return nil, err
		}
	}

	if err := s.repoDB.UpdateLastLogin(ctx, user.ID, now); err != nil {
		slog.ErrorContext(ctx, "failed to repo update last login", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	user.LastLogin = &now

	if s.password.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, in.Password, now)
	}

	token, err := s.jwt.Issue(user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publish(ctx, SecurityEvent{
		Kind:       event.KindLoginSucceeded,
		UserID:     user.ID,
		Email:      user.Email,
		IP:         in.Client.IP,
		UserAgent:  in.Client.UserAgent,
		OccurredAt: now,
	})

	user.PasswordHash = ""
	user.TOTPSecret = ""
	return &LoginOutput{User: *user, Token: token}, nil
}

// secondFactor accepts either a TOTP code of the current step or an unused recovery code.
func (s *Usecase) secondFactor(ctx context.Context, user *entity.User, in LoginInput, now time.Time) error {
	code := strings.TrimSpace(in.TOTPCode)
	recovery := strings.TrimSpace(in.RecoveryCode)

	switch {
	case code != "":
		return s.checkTOTP(ctx, user, in.Client, code, now)
	case recovery != "":
		return s.checkRecoveryCode(ctx, user, in.Client, recovery, now)
	default:
		slog.WarnContext(ctx, "totp code required but not supplied", "user_id", user.ID)
		return goerror.NewUnauthorized(goerror.ReasonInvalidCredentials, "TOTP code required")
	}
}

func (s *Usecase) checkTOTP(ctx context.Context, user *entity.User, client ClientInfo, code string, now time.Time) error {
	secret, err := s.sealer.Open(user.TOTPSecret, s.otpScope(user.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to open totp secret", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	valid, err := s.totp.Verify(secret, code, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify totp code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !valid {
		slog.WarnContext(ctx, "totp code not match", "user_id", user.ID)
		s.loginFailed(ctx, user, client, "totp")
		return goerror.NewUnauthorized(goerror.ReasonInvalidCredentials, "Invalid TOTP code")
	}

	fresh, err := s.repoCache.MarkTOTPUsed(ctx, user.ID, s.totp.Step(now), s.replayWindow())
	if err != nil {
		slog.ErrorContext(ctx, "failed to cache mark totp step used", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !fresh {
		slog.WarnContext(ctx, "totp code replayed within its step", "user_id", user.ID)
		s.loginFailed(ctx, user, client, "totp_replay")
		return goerror.NewUnauthorized(goerror.ReasonInvalidCredentials, "Invalid TOTP code")
	}

	return nil
}

func (s *Usecase) checkRecoveryCode(ctx context.Context, user *entity.User, client ClientInfo, raw string, now time.Time) error {
	code := mfa.NormalizeRecoveryCode(raw)
	if code == "" {
		s.loginFailed(ctx, user, client, "recovery_code")
		return goerror.NewUnauthorized(goerror.ReasonInvalidCredentials, "Invalid recovery code")
	}

	digest, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash recovery code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	used, err := s.repoDB.UseRecoveryCode(ctx, user.ID, digest, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo use recovery code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !used {
		slog.WarnContext(ctx, "recovery code unknown or already used", "user_id", user.ID)
		s.loginFailed(ctx, user, client, "recovery_code")
		return goerror.NewUnauthorized(goerror.ReasonInvalidCredentials, "Invalid recovery code")
	}

	s.publish(ctx, SecurityEvent{
		Kind:       event.KindRecoveryCodeUsed,
		UserID:     user.ID,
		Email:      user.Email,
		IP:         client.IP,
		UserAgent:  client.UserAgent,
		OccurredAt: now,
	})

	return nil
}

// rehash upgrades a legacy or outdated password hash after a successful login.
func (s *Usecase) rehash(ctx context.Context, user *entity.User, password string, now time.Time) {
	hashed, err := s.hashPassword(ctx, password)
	if err != nil {
		slog.WarnContext(ctx, "failed to rehash password", "user_id", user.ID, "error", err)
		return
	}

	if err := s.repoDB.UpdatePasswordHash(ctx, user.ID, hashed, now); err != nil {
		slog.WarnContext(ctx, "failed to repo update password hash", "user_id", user.ID, "error", err)
		return
	}

	user.PasswordHash = hashed
}

func (s *Usecase) loginFailed(ctx context.Context, user *entity.User, client ClientInfo, factor string) {
	s.publish(ctx, SecurityEvent{
		Kind:      event.KindLoginFailed,
		UserID:    user.ID,
		Email:     user.Email,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Metadata:  map[string]string{"factor": factor},
	})
}
