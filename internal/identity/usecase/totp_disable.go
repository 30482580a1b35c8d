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

type TOTPDisableInput struct {
	Code         string
	RecoveryCode string
	Client       ClientInfo
}

// TOTPDisable turns TOTP off after proving possession of the second factor.
func (s *Usecase) TOTPDisable(ctx context.Context, in TOTPDisableInput) error {
	ctx, span := s.startSpan(ctx, "TOTPDisable")
	defer span.End()

	code := strings.TrimSpace(in.Code)
	recovery := strings.TrimSpace(in.RecoveryCode)
	if code == "" && recovery == "" {
		return goerror.NewMalformed("TOTP code or recovery code is required", nil)
	}

	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	if user.TOTPState != entity.TOTPStateEnabled {
		return goerror.NewBusiness("TOTP is not enabled", goerror.CodeInvalidFormat)
	}

	now := s.clock.Now()
	if code != "" {
		err = s.checkTOTP(ctx, user, in.Client, code, now)
	} else {
		err = s.checkRecoveryCode(ctx, user, in.Client, recovery, now)
	}
	if err != nil {
		return err
	}

	err = s.repoDB.DisableTOTP(ctx, user.ID, now)
	if errors.Is(err, entity.ErrTOTPTransition) {
		return goerror.NewBusiness("TOTP is not enabled", goerror.CodeInvalidFormat)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo disable totp", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.publish(ctx, SecurityEvent{
		Kind:       event.KindTOTPDisabled,
		UserID:     user.ID,
		Email:      user.Email,
		IP:         in.Client.IP,
		UserAgent:  in.Client.UserAgent,
		OccurredAt: now,
	})

	return nil
}
