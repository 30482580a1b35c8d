package inbound

import (
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/dragonfruit/internal/audit/entity"
	"github.com/shandysiswandi/dragonfruit/internal/audit/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/valueobject"
)

type HTTPEndpoint struct {
	uc uc
}

type SecurityEventResponse struct {
	ID        string              `json:"id"`
	Kind      string              `json:"kind"`
	IP        string              `json:"ip"`
	UserAgent string              `json:"user_agent"`
	Metadata  valueobject.JSONMap `json:"metadata"`
	CreatedAt time.Time           `json:"created_at"`
}

type ListEventsResponse []SecurityEventResponse

func (l ListEventsResponse) Meta() map[string]any { return map[string]any{"count": len(l)} }

func (h *HTTPEndpoint) ListEvents(r *router.Request) (any, error) {
	var in usecase.ListEventsInput
	if r.GetQuery("limit") != "" {
		limit, err := r.GetQueryInt("limit")
		if err != nil {
			return nil, err
		}
		in.Limit = &limit
	}

	events, err := h.uc.ListEvents(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return ListEventsResponse(lo.Map(events, func(ev entity.SecurityEvent, _ int) SecurityEventResponse {
		return SecurityEventResponse{
			ID:        ev.EventID,
			Kind:      ev.Kind.String(),
			IP:        ev.IP,
			UserAgent: ev.UserAgent,
			Metadata:  ev.Metadata,
			CreatedAt: ev.CreatedAt,
		}
	})), nil
}
