package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/atomic"
)

var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

const kafkaHeaderID = "message-id"

type KafkaConfig struct {
	Brokers []string
}

// Kafka commits an offset only after the handler succeeds. A failure stops the
// partition reader and the message is read again after the group rebalances.
type Kafka struct {
	brokers []string
	closed  atomic.Bool

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}
	return &Kafka{brokers: cfg.Brokers, writers: map[string]*kafka.Writer{}}, nil
}

func (k *Kafka) writer(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()

	w, ok := k.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:         kafka.TCP(k.brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
		k.writers[topic] = w
	}
	return w
}

func (k *Kafka) Publish(ctx context.Context, topic string, msg *Message) error {
	if k.closed.Load() {
		return ErrClosed
	}
	if topic == "" {
		return ErrTopicRequired
	}

	km := kafka.Message{Key: msg.Key, Value: msg.Body, Time: msg.Timestamp}
	if msg.ID != "" {
		km.Headers = append(km.Headers, kafka.Header{Key: kafkaHeaderID, Value: []byte(msg.ID)})
	}
	for key, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: key, Value: []byte(v)})
	}

	if err := k.writer(topic).WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}
	return nil
}

func (k *Kafka) Subscribe(ctx context.Context, topic string, h Handler, opts ...SubscribeOption) error {
	o := newSubscribeOptions(opts)
	if err := validateSubscribe(ctx, topic, h, o); err != nil {
		return err
	}
	if k.closed.Load() {
		return ErrClosed
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.brokers,
		GroupID:  o.group,
		Topic:    topic,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	for {
		km, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("messaging: kafka fetch: %w", err)
		}

		msg := &Message{Topic: km.Topic, Key: km.Key, Body: km.Value, Timestamp: km.Time, Headers: map[string]string{}}
		for _, hd := range km.Headers {
			if hd.Key == kafkaHeaderID {
				msg.ID = string(hd.Value)
				continue
			}
			msg.Headers[hd.Key] = string(hd.Value)
		}

		if err := dispatch(ctx, DriverKafka, h, msg); err != nil {
			return fmt.Errorf("messaging: kafka handler at offset %d: %w", km.Offset, err)
		}
		if err := reader.CommitMessages(ctx, km); err != nil {
			return fmt.Errorf("messaging: kafka commit: %w", err)
		}
	}
}

func (k *Kafka) Close() error {
	if k.closed.Swap(true) {
		return nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	var err error
	for _, w := range k.writers {
		err = errors.Join(err, w.Close())
	}
	return err
}
