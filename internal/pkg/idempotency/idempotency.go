// Package idempotency remembers the outcome of client keyed operations in redis
// so a retried request replays the first result instead of running twice.
package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInProgress is returned while another request holds the same key.
	ErrInProgress = errors.New("idempotency: operation already in progress")

	// ErrCorruptState is returned when the stored value is not a known state.
	ErrCorruptState = errors.New("idempotency: invalid stored state")
)

const (
	stateInProgress = "in_progress"
	completedPrefix = "completed:"

	defaultLock = time.Minute
	defaultTTL  = 24 * time.Hour
)

// Idempotency runs fn at most once per key and returns its recorded result on replays.
type Idempotency interface {
	Do(ctx context.Context, key string, fn func(context.Context) (string, error)) (result string, replayed bool, err error)
}

type Tracker struct {
	client redis.Cmdable
	prefix string
	lock   time.Duration
	ttl    time.Duration
}

type Option func(*Tracker)

// WithLockDuration bounds how long an unfinished run blocks the key.
func WithLockDuration(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.lock = d
		}
	}
}

// WithResultTTL sets how long a completed result is replayed.
func WithResultTTL(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.ttl = d
		}
	}
}

func New(client redis.Cmdable, opts ...Option) *Tracker {
	t := &Tracker{client: client, prefix: "idempotency:", lock: defaultLock, ttl: defaultTTL}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do claims key and runs fn. A failed fn releases the key so the client may retry.
func (t *Tracker) Do(ctx context.Context, key string, fn func(context.Context) (string, error)) (string, bool, error) {
	fk := t.prefix + key

	claimed, err := t.client.SetNX(ctx, fk, stateInProgress, t.lock).Result()
	if err != nil {
		return "", false, err
	}

	if !claimed {
		stored, err := t.client.Get(ctx, fk).Result()
		switch {
		case errors.Is(err, redis.Nil):
			return "", false, ErrInProgress
		case err != nil:
			return "", false, err
		case stored == stateInProgress:
			return "", false, ErrInProgress
		case strings.HasPrefix(stored, completedPrefix):
			return strings.TrimPrefix(stored, completedPrefix), true, nil
		default:
			return "", false, ErrCorruptState
		}
	}

	result, err := fn(ctx)
	if err != nil {
		if delErr := t.client.Del(context.WithoutCancel(ctx), fk).Err(); delErr != nil {
			return "", false, errors.Join(err, delErr)
		}
		return "", false, err
	}

	if err := t.client.Set(ctx, fk, completedPrefix+result, t.ttl).Err(); err != nil {
		return "", false, err
	}

	return result, false, nil
}
