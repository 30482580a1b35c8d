package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

type RetryConfig struct {
	// Attempts counts the first try. Zero means 3.
	Attempts uint64
	// Base is the first backoff step. Zero means 100ms.
	Base time.Duration
	// Cap bounds a single backoff step. Zero means 2s.
	Cap time.Duration
}

type retryPublisher struct {
	next    Publisher
	backoff func() retry.Backoff
}

// NewRetryPublisher retries failed publishes with capped exponential backoff.
// Context errors are never retried.
func NewRetryPublisher(next Publisher, cfg RetryConfig) Publisher {
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Base <= 0 {
		cfg.Base = 100 * time.Millisecond
	}
	if cfg.Cap <= 0 {
		cfg.Cap = 2 * time.Second
	}

	return &retryPublisher{
		next: next,
		backoff: func() retry.Backoff {
			b := retry.NewExponential(cfg.Base)
			b = retry.WithCappedDuration(cfg.Cap, b)
			b = retry.WithJitterPercent(10, b)
			return retry.WithMaxRetries(cfg.Attempts-1, b)
		},
	}
}

func (r *retryPublisher) Publish(ctx context.Context, topic string, msg *Message) error {
	attempt := 0
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		attempt++
		err := r.next.Publish(ctx, topic, msg)
		if err == nil || ctx.Err() != nil {
			return err
		}

		slog.WarnContext(ctx, "messaging: publish failed", "topic", topic, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
}
