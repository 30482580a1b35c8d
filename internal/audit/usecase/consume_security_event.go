package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/audit/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/valueobject"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
)

type ConsumeSecurityEventInput struct {
	EventID    string
	Kind       event.SecurityKind
	UserID     uuid.UUID
	Email      string
	IP         string
	UserAgent  string
	Metadata   map[string]string
	OccurredAt time.Time
}

// ConsumeSecurityEvent stores the event once per event id and mails an alert
// for kinds that warrant one. Redeliveries are stored and mailed only once.
func (s *Usecase) ConsumeSecurityEvent(ctx context.Context, in ConsumeSecurityEventInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeSecurityEvent")
	defer span.End()

	if !in.Kind.IsKnown() || in.UserID == uuid.Nil || in.EventID == "" {
		slog.WarnContext(ctx, "dropping unusable security event", "event_id", in.EventID, "kind", in.Kind.String(), "user_id", in.UserID)
		return nil
	}

	createdAt := in.OccurredAt
	if createdAt.IsZero() {
		createdAt = s.clock.Now()
	}

	meta := make(valueobject.JSONMap, len(in.Metadata))
	for k, v := range in.Metadata {
		meta[k] = v
	}
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		meta = meta.With("correlation_id", cID)
	}

	inserted, err := s.repoDB.CreateEvent(ctx, entity.SecurityEvent{
		ID:        s.uid.Generate(),
		EventID:   in.EventID,
		UserID:    in.UserID,
		Kind:      in.Kind,
		IP:        in.IP,
		UserAgent: in.UserAgent,
		Metadata:  meta,
		CreatedAt: createdAt,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create security event", "event_id", in.EventID, "user_id", in.UserID, "error", err)
		return err
	}
	if !inserted {
		slog.InfoContext(ctx, "security event already stored", "event_id", in.EventID)
		return nil
	}

	if in.Kind.Alerting() && in.Email != "" {
		s.sendAlert(ctx, in, createdAt)
	}

	return nil
}
