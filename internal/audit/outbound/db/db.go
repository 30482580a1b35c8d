package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/dragonfruit/internal/audit/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("audit.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateEvent(ctx context.Context, ev entity.SecurityEvent) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "CreateEvent")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
INSERT INTO security_events (id, event_id, user_id, kind, ip, user_agent, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (event_id) DO NOTHING`,
		ev.ID, ev.EventID, ev.UserID, ev.Kind.String(), ev.IP, ev.UserAgent, ev.Metadata, ev.CreatedAt,
	)
	if err != nil {
		err = s.mapError(err)
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (s *DB) ListEvents(ctx context.Context, userID uuid.UUID, limit int) (_ []entity.SecurityEvent, err error) {
	ctx, span := s.startSpan(ctx, "ListEvents")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
SELECT id, event_id, user_id, kind, ip, user_agent, metadata, created_at
FROM security_events
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := []entity.SecurityEvent{}
	for rows.Next() {
		var (
			ev   entity.SecurityEvent
			kind string
		)
		if err = rows.Scan(&ev.ID, &ev.EventID, &ev.UserID, &kind, &ev.IP, &ev.UserAgent, &ev.Metadata, &ev.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		ev.Kind = event.SecurityKind(kind)
		out = append(out, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}
