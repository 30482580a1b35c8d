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

type ProfileUpdateInput struct {
	Username *string `validate:"omitempty,username"`
	Email    *string `validate:"omitempty,email,max=254"`
	Password *string `validate:"omitempty,password"`
	Client   ClientInfo
}

func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		in.Username = &v
	}
	if in.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &v
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	upd := entity.UserUpdate{
		ID:        user.ID,
		Username:  in.Username,
		Email:     in.Email,
		UpdatedAt: now,
	}

	if in.Password != nil {
		hashed, err := s.hashPassword(ctx, *in.Password)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash password", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		upd.PasswordHash = &hashed
	}

	if upd.IsEmpty() {
		user.PasswordHash = ""
		user.TOTPSecret = ""
		return user, nil
	}

	err = s.repoDB.UpdateUser(ctx, upd)
	switch {
	case errors.Is(err, entity.ErrEmailTaken):
		return nil, goerror.NewBusiness("Email already exists", goerror.CodeConflict)
	case errors.Is(err, entity.ErrUsernameTaken):
		return nil, goerror.NewBusiness("Username already exists", goerror.CodeConflict)
	case errors.Is(err, goerror.ErrNotFound):
		return nil, goerror.NewUnauthorized(goerror.ReasonInvalidToken, "Invalid token")
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo update user", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	user.UpdatedAt = now

	if in.Password != nil {
		s.publish(ctx, SecurityEvent{
			Kind:       event.KindPasswordChanged,
			UserID:     user.ID,
			Email:      user.Email,
			IP:         in.Client.IP,
			UserAgent:  in.Client.UserAgent,
			OccurredAt: now,
		})
	}

	user.PasswordHash = ""
	user.TOTPSecret = ""
	return user, nil
}
