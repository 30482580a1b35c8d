package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/valueobject"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
)

// SecurityEvent is one stored row of a user's security history.
type SecurityEvent struct {
	ID        int64
	EventID   string
	UserID    uuid.UUID
	Kind      event.SecurityKind
	IP        string
	UserAgent string
	Metadata  valueobject.JSONMap
	CreatedAt time.Time
}
