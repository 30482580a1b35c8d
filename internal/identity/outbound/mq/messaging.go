package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/dragonfruit/internal/identity/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/messaging"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	uuid   uid.UUIDGenerator
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, uuid uid.UUIDGenerator, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, uuid: uuid, ins: ins}
}

// PublishSecurityEvent keys the message by user so brokers that partition keep
// one user's events in order.
func (m *Messaging) PublishSecurityEvent(ctx context.Context, ev usecase.SecurityEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishSecurityEvent")
	defer span.End()

	eventID := m.uuid.Generate().String()
	body, err := json.Marshal(event.SecurityMessage{
		EventID:    eventID,
		Kind:       ev.Kind,
		UserID:     ev.UserID,
		Email:      ev.Email,
		IP:         ev.IP,
		UserAgent:  ev.UserAgent,
		Metadata:   ev.Metadata,
		OccurredAt: ev.OccurredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Publish(ctx, event.SecurityDestination, &messaging.Message{
		ID:        eventID,
		Key:       []byte(ev.UserID.String()),
		Body:      body,
		Headers:   map[string]string{keyOfCorrelationID: instrument.GetCorrelationID(ctx)},
		Timestamp: ev.OccurredAt,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
