package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"
)

var ErrNATSURLRequired = errors.New("messaging: nats url is required")

type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS uses core subjects with queue groups. Core NATS has no redelivery, so a
// failed handler is only logged by the caller.
type NATS struct {
	conn   *nats.Conn
	closed atomic.Bool
}

func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}
	return &NATS{conn: conn}, nil
}

func (n *NATS) Publish(ctx context.Context, topic string, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.closed.Load() {
		return ErrClosed
	}
	if topic == "" {
		return ErrTopicRequired
	}

	nm := nats.NewMsg(topic)
	nm.Data = msg.Body
	for k, v := range msg.Headers {
		nm.Header.Set(k, v)
	}
	if msg.ID != "" {
		nm.Header.Set(nats.MsgIdHdr, msg.ID)
	}

	if err := n.conn.PublishMsg(nm); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	return n.conn.FlushWithContext(ctx)
}

func (n *NATS) Subscribe(ctx context.Context, topic string, h Handler, opts ...SubscribeOption) error {
	o := newSubscribeOptions(opts)
	if err := validateSubscribe(ctx, topic, h, o); err != nil {
		return err
	}
	if n.closed.Load() {
		return ErrClosed
	}

	deliveries := make(chan *nats.Msg, o.concurrency)
	sub, err := n.conn.QueueSubscribe(topic, o.group, func(m *nats.Msg) {
		select {
		case deliveries <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	var wg sync.WaitGroup
	for range o.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case m := <-deliveries:
					n.handle(ctx, h, m)
				}
			}
		})
	}

	<-ctx.Done()
	drainErr := sub.Drain()
	wg.Wait()

	return errors.Join(ctx.Err(), drainErr)
}

func (n *NATS) handle(ctx context.Context, h Handler, m *nats.Msg) {
	msg := &Message{
		ID:        m.Header.Get(nats.MsgIdHdr),
		Topic:     m.Subject,
		Body:      m.Data,
		Headers:   flattenHeader(m.Header),
		Timestamp: time.Now(),
	}
	if err := dispatch(ctx, DriverNATS, h, msg); err != nil {
		_ = m.Nak()
		return
	}
	_ = m.Ack()
}

func (n *NATS) Close() error {
	if n.closed.Swap(true) {
		return nil
	}
	err := n.conn.Drain()
	n.conn.Close()
	return err
}

func flattenHeader(h nats.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
