package mq_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/identity/outbound/mq"
	"github.com/shandysiswandi/dragonfruit/internal/identity/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/messaging"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	topic string
	msg   *messaging.Message
	err   error
}

func (c *capture) Publish(_ context.Context, topic string, msg *messaging.Message) error {
	c.topic, c.msg = topic, msg
	return c.err
}

type fixedUUID uuid.UUID

func (f fixedUUID) Generate() uuid.UUID { return uuid.UUID(f) }

func TestMessaging_PublishSecurityEvent(t *testing.T) {
	t.Parallel()

	eventID := uuid.MustParse("0190b7a2-7c1d-7000-8000-0000000000ee")
	user := uuid.MustParse("0190b7a2-7c1d-7000-8000-00000000000a")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	pub := &capture{}
	m := mq.NewMessaging(pub, fixedUUID(eventID), instrument.NewNoop())

	ctx := instrument.SetCorrelationID(context.Background(), "cid-1")
	err := m.PublishSecurityEvent(ctx, usecase.SecurityEvent{
		Kind:       event.KindTOTPDisabled,
		UserID:     user,
		Email:      "alice@example.com",
		IP:         "10.0.0.1",
		Metadata:   map[string]string{"factor": "totp"},
		OccurredAt: at,
	})
	require.NoError(t, err)

	assert.Equal(t, event.SecurityDestination, pub.topic)
	assert.Equal(t, eventID.String(), pub.msg.ID)
	assert.Equal(t, user.String(), string(pub.msg.Key))
	assert.Equal(t, "cid-1", pub.msg.Headers["cID"])

	var body event.SecurityMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
	assert.Equal(t, event.SecurityMessage{
		EventID:    eventID.String(),
		Kind:       event.KindTOTPDisabled,
		UserID:     user,
		Email:      "alice@example.com",
		IP:         "10.0.0.1",
		Metadata:   map[string]string{"factor": "totp"},
		OccurredAt: at,
	}, body)
}

func TestMessaging_PublishError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	m := mq.NewMessaging(&capture{err: boom}, fixedUUID(uuid.New()), instrument.NewNoop())

	err := m.PublishSecurityEvent(context.Background(), usecase.SecurityEvent{Kind: event.KindLoginFailed})
	require.ErrorIs(t, err, boom)
}
