package inbound

import (
	"context"

	"github.com/shandysiswandi/dragonfruit/internal/audit/entity"
	"github.com/shandysiswandi/dragonfruit/internal/audit/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
)

type uc interface {
	ConsumeSecurityEvent(ctx context.Context, in usecase.ConsumeSecurityEventInput) error
	ListEvents(ctx context.Context, in usecase.ListEventsInput) ([]entity.SecurityEvent, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/security/events", end.ListEvents)
}
