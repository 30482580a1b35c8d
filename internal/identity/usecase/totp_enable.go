package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
)

type TOTPEnableInput struct {
	Code   string
	Client ClientInfo
}

type TOTPEnableOutput struct {
	RecoveryCodes []string
}

func (s *Usecase) TOTPEnable(ctx context.Context, in TOTPEnableInput) (*TOTPEnableOutput, error) {
	ctx, span := s.startSpan(ctx, "TOTPEnable")
	defer span.End()

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, goerror.NewMalformed("TOTP code is required", nil)
	}

	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if user.TOTPState == entity.TOTPStateEnabled {
		return nil, goerror.NewBusiness("TOTP is already enabled", goerror.CodeConflict)
	}
	if user.TOTPState != entity.TOTPStatePending || user.TOTPSecret == "" {
		return nil, goerror.NewBusiness("TOTP not set up yet", goerror.CodeInvalidFormat)
	}

	if err := s.validator.Validate(struct {
		Code string `validate:"otp"`
	}{Code: code}); err != nil {
		return nil, goerror.NewMalformed("Invalid TOTP code", err)
	}

	secret, err := s.sealer.Open(user.TOTPSecret, s.otpScope(user.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to open totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	valid, err := s.totp.Verify(secret, code, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify totp code", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !valid {
		slog.WarnContext(ctx, "totp confirmation code not match", "user_id", user.ID)
		return nil, goerror.NewBusiness("Invalid TOTP code", goerror.CodeInvalidFormat)
	}

	fresh, err := s.repoCache.MarkTOTPUsed(ctx, user.ID, s.totp.Step(now), s.replayWindow())
	if err != nil {
		slog.ErrorContext(ctx, "failed to cache mark totp step used", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !fresh {
		return nil, goerror.NewBusiness("Invalid TOTP code", goerror.CodeInvalidFormat)
	}

	plain, err := s.recoveryCode.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate recovery codes", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	codes := make([]entity.RecoveryCode, 0, len(plain))
	for _, c := range plain {
		digest, err := s.hmac.Hash(c)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash recovery code", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		codes = append(codes, entity.RecoveryCode{
			ID:        s.uid.Generate(),
			UserID:    user.ID,
			CodeHash:  digest,
			CreatedAt: now,
		})
	}

	err = s.repoDB.EnableTOTP(ctx, user.ID, codes, now)
	if errors.Is(err, entity.ErrTOTPTransition) {
		return nil, goerror.NewBusiness("TOTP not set up yet", goerror.CodeInvalidFormat)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo enable totp", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publish(ctx, SecurityEvent{
		Kind:       event.KindTOTPEnabled,
		UserID:     user.ID,
		Email:      user.Email,
		IP:         in.Client.IP,
		UserAgent:  in.Client.UserAgent,
		OccurredAt: now,
	})

	return &TOTPEnableOutput{RecoveryCodes: plain}, nil
}
