package blob

import (
	"bytes"
	"context"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Blob struct {
	store storage.Storage
	ins   instrument.Instrumentation
}

func NewBlob(store storage.Storage, ins instrument.Instrumentation) *Blob {
	return &Blob{store: store, ins: ins}
}

func (s *Blob) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	ctx, span := s.startSpan(ctx, "Put", key)
	defer func() { s.endSpan(span, err) }()

	span.SetAttributes(attribute.Int("blob.size", len(data)))

	err = s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	return err
}

func (s *Blob) PresignGet(ctx context.Context, key string, expiry time.Duration) (_ string, err error) {
	ctx, span := s.startSpan(ctx, "PresignGet", key)
	defer func() { s.endSpan(span, err) }()

	url, err := s.store.PresignGet(ctx, key, expiry)
	if err != nil {
		return "", err
	}

	return url, nil
}

func (s *Blob) startSpan(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.outbound.blob").Start(ctx, name, trace.WithAttributes(attribute.String("blob.key", key)))
}

func (s *Blob) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
