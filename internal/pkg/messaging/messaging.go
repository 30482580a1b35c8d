package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/stacktrace"
)

var (
	ErrTopicRequired   = errors.New("messaging: topic is required")
	ErrHandlerRequired = errors.New("messaging: handler is required")
	ErrGroupRequired   = errors.New("messaging: consumer group is required")
	ErrClosed          = errors.New("messaging: broker is closed")
)

// Message is the broker neutral envelope for both directions.
type Message struct {
	ID        string
	Topic     string
	Key       []byte
	Body      []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes one delivery.
type Handler func(ctx context.Context, msg *Message) error

type Publisher interface {
	Publish(ctx context.Context, topic string, msg *Message) error
}

type Subscriber interface {
	// Subscribe blocks, dispatching deliveries to h until ctx is done.
	Subscribe(ctx context.Context, topic string, h Handler, opts ...SubscribeOption) error
}

type Broker interface {
	io.Closer
	Publisher
	Subscriber
}

type subscribeOptions struct {
	group       string
	concurrency int
}

type SubscribeOption func(*subscribeOptions)

// WithGroup names the consumer group. It maps to a Kafka group id, an NSQ
// channel, a NATS queue group or a Pub/Sub subscription.
func WithGroup(name string) SubscribeOption {
	return func(o *subscribeOptions) { o.group = name }
}

func WithConcurrency(n int) SubscribeOption {
	return func(o *subscribeOptions) { o.concurrency = n }
}

func newSubscribeOptions(opts []SubscribeOption) subscribeOptions {
	o := subscribeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.concurrency <= 0 {
		o.concurrency = 1
	}
	return o
}

func validateSubscribe(ctx context.Context, topic string, h Handler, o subscribeOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if h == nil {
		return ErrHandlerRequired
	}
	if o.group == "" {
		return ErrGroupRequired
	}
	return nil
}

// dispatch runs h and turns a panic into an error so the delivery is retried.
func dispatch(ctx context.Context, driver string, h Handler, msg *Message) (err error) {
	defer func() {
		rvr := recover()
		if rvr == nil {
			return
		}

		stack := debug.Stack()
		if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
			slog.ErrorContext(ctx, "messaging: handler panicked", "driver", driver, "topic", msg.Topic, "panic", rvr, "stack", paths)
		} else {
			slog.ErrorContext(ctx, "messaging: handler panicked", "driver", driver, "topic", msg.Topic, "panic", rvr, "stack", string(stack))
		}
		err = fmt.Errorf("messaging: %s handler panic: %v", driver, rvr)
	}()

	return h(ctx, msg)
}
