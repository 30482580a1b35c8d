package usecase

import (
	"context"

	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
)

func (s *Usecase) Profile(ctx context.Context) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	user.TOTPSecret = ""
	return user, nil
}
