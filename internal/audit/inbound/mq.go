package inbound

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/config"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goroutine"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/messaging"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/uid"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
)

// RegisterMQConsumer starts one background subscription per enabled consumer.
// An empty modules.audit.consumer_names enables every consumer.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	sub messaging.Subscriber,
	uuid uid.UUIDGenerator,
	uc uc,
	ins instrument.Instrumentation,
) {
	handler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.audit.consumer_names")
	concurrency := cfg.GetInt("modules.audit.consumer_concurrency")

	consumers := []struct {
		group   string
		topic   string
		handler messaging.Handler
	}{
		{
			group:   event.SecurityConsumerAudit,
			topic:   event.SecurityDestination,
			handler: handler.SecurityEvent,
		},
	}

	for _, consumer := range consumers {
		if len(enabled) > 0 && !slices.Contains(enabled, consumer.group) {
			continue
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.group, "topic", consumer.topic)
			err := sub.Subscribe(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithGroup(consumer.group),
				messaging.WithConcurrency(concurrency),
			)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
}
