package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
)

type TOTPGenerateOutput struct {
	Secret string
	URI    string
}

// TOTPGenerate stores a fresh Pending secret for the caller. A Pending secret
// that was never confirmed is replaced.
func (s *Usecase) TOTPGenerate(ctx context.Context) (*TOTPGenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "TOTPGenerate")
	defer span.End()

	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if !user.TOTPState.CanTransition(entity.TOTPStatePending) {
		return nil, goerror.NewBusiness("TOTP is already enabled", goerror.CodeConflict)
	}

	secret, uri, err := s.totp.GenerateSecret(s.totp.Label(), user.ID.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	sealed, err := s.sealer.Seal(secret, s.otpScope(user.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to seal totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	err = s.repoDB.SetTOTPPending(ctx, user.ID, sealed, s.clock.Now())
	if errors.Is(err, entity.ErrTOTPTransition) {
		return nil, goerror.NewBusiness("TOTP is already enabled", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo set totp pending", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TOTPGenerateOutput{Secret: secret, URI: uri}, nil
}
