package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/dragonfruit/internal/audit/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/jwt"
)

const defaultEventLimit = 20

type ListEventsInput struct {
	Limit *int `validate:"omitempty,min=1,max=100"`
}

// ListEvents returns the caller's newest security events.
func (s *Usecase) ListEvents(ctx context.Context, in ListEventsInput) ([]entity.SecurityEvent, error) {
	ctx, span := s.startSpan(ctx, "ListEvents")
	defer span.End()

	userID, ok := jwt.GetAuth(ctx)
	if !ok {
		return nil, goerror.NewUnauthorized(goerror.ReasonMissingOrMalformedHeader, "Authentication required")
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	limit := defaultEventLimit
	if in.Limit != nil {
		limit = *in.Limit
	}

	events, err := s.repoDB.ListEvents(ctx, userID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list security events", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return events, nil
}
