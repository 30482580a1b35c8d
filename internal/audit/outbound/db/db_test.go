package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/audit/entity"
	"github.com/shandysiswandi/dragonfruit/internal/audit/outbound/db"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/testinfra"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/valueobject"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB(t *testing.T) {
	repo := db.NewDB(testinfra.Postgres(t), instrument.NewNoop())
	ctx := context.Background()

	alice := uuid.Must(uuid.NewV7())
	base := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	for i, kind := range []event.SecurityKind{event.KindUserRegistered, event.KindLoginSucceeded, event.KindTOTPDisabled} {
		inserted, err := repo.CreateEvent(ctx, entity.SecurityEvent{
			ID:        int64(100 + i),
			EventID:   "evt-" + kind.String(),
			UserID:    alice,
			Kind:      kind,
			IP:        "10.0.0.1",
			Metadata:  valueobject.JSONMap{"factor": "password"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.True(t, inserted)
	}

	inserted, err := repo.CreateEvent(ctx, entity.SecurityEvent{
		ID: 999, EventID: "evt-" + event.KindLoginSucceeded.String(), UserID: alice, Kind: event.KindLoginSucceeded, CreatedAt: base,
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	events, err := repo.ListEvents(ctx, alice, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, event.KindTOTPDisabled, events[0].Kind)
	assert.Equal(t, event.KindLoginSucceeded, events[1].Kind)
	assert.Equal(t, "password", events[0].Metadata.String("factor"))

	events, err = repo.ListEvents(ctx, uuid.New(), 20)
	require.NoError(t, err)
	assert.Empty(t, events)
}
