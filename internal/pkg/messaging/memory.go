package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

const (
	memoryBuffer       = 256
	memoryMaxRedeliver = 3
)

// Memory is an in-process broker. Each group on a topic gets every message once;
// subscribers sharing a group compete for deliveries. Messages published to a
// topic with no group yet are dropped.
type Memory struct {
	mu     sync.RWMutex
	topics map[string]map[string]chan *Message
	closed atomic.Bool
}

func NewMemory() *Memory {
	return &Memory{topics: map[string]map[string]chan *Message{}}
}

func (m *Memory) Publish(ctx context.Context, topic string, msg *Message) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if topic == "" {
		return ErrTopicRequired
	}

	out := *msg
	out.Topic = topic
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}

	m.mu.RLock()
	queues := make([]chan *Message, 0, len(m.topics[topic]))
	for _, q := range m.topics[topic] {
		queues = append(queues, q)
	}
	m.mu.RUnlock()

	for _, q := range queues {
		cp := out
		select {
		case q <- &cp:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Memory) queue(topic, group string) chan *Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups, ok := m.topics[topic]
	if !ok {
		groups = map[string]chan *Message{}
		m.topics[topic] = groups
	}
	q, ok := groups[group]
	if !ok {
		q = make(chan *Message, memoryBuffer)
		groups[group] = q
	}
	return q
}

func (m *Memory) Subscribe(ctx context.Context, topic string, h Handler, opts ...SubscribeOption) error {
	o := newSubscribeOptions(opts)
	if err := validateSubscribe(ctx, topic, h, o); err != nil {
		return err
	}
	if m.closed.Load() {
		return ErrClosed
	}

	q := m.queue(topic, o.group)

	var wg sync.WaitGroup
	for range o.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-q:
					m.deliver(ctx, h, msg)
				}
			}
		})
	}
	wg.Wait()

	return ctx.Err()
}

func (m *Memory) deliver(ctx context.Context, h Handler, msg *Message) {
	for attempt := 1; ; attempt++ {
		err := dispatch(ctx, DriverMemory, h, msg)
		if err == nil {
			return
		}
		if attempt >= memoryMaxRedeliver || ctx.Err() != nil {
			slog.ErrorContext(ctx, "messaging: dropping message after redeliveries",
				"topic", msg.Topic, "id", msg.ID, "attempts", attempt, "error", err)
			return
		}
	}
}

func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}
