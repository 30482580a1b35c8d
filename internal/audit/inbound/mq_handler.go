package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/dragonfruit/internal/audit/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/messaging"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.UUIDGenerator
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers map[string]string) context.Context {
	if cID := headers[keyOfCorrelationID]; cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate().String())
}

// SecurityEvent records one delivery of event.SecurityMessage. Undecodable
// bodies are acknowledged and dropped.
func (h *MQHandler) SecurityEvent(ctx context.Context, msg *messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers)

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "SecurityEvent")
	defer span.End()

	var payload event.SecurityMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of security event", "msg_id", msg.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: security event", "event_id", payload.EventID, "kind", payload.Kind.String())

	if err := h.uc.ConsumeSecurityEvent(ctx, usecase.ConsumeSecurityEventInput{
		EventID:    payload.EventID,
		Kind:       payload.Kind,
		UserID:     payload.UserID,
		Email:      payload.Email,
		IP:         payload.IP,
		UserAgent:  payload.UserAgent,
		Metadata:   payload.Metadata,
		OccurredAt: payload.OccurredAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume security event", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
