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

type RegisterInput struct {
	Username string `validate:"required,username"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,password"`
	Client   ClientInfo
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	hashed, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	user := entity.User{
		ID:           s.uuid.Generate(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		TOTPState:    entity.TOTPStateUnset,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repoDB.CreateUser(ctx, user)
	switch {
	case errors.Is(err, entity.ErrEmailTaken):
		return nil, goerror.NewBusiness("Email already exists", goerror.CodeConflict)
	case errors.Is(err, entity.ErrUsernameTaken):
		return nil, goerror.NewBusiness("Username already exists", goerror.CodeConflict)
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo create user", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publish(ctx, SecurityEvent{
		Kind:       event.KindUserRegistered,
		UserID:     user.ID,
		Email:      user.Email,
		IP:         in.Client.IP,
		UserAgent:  in.Client.UserAgent,
		OccurredAt: now,
	})

	user.PasswordHash = ""
	return &user, nil
}
