package goroutine

import (
	"context"
	"errors"
	"runtime"
)

// ErrLimiterBusy is returned by Do when ctx ends before a slot frees up.
var ErrLimiterBusy = errors.New("goroutine: limiter busy")

// Limiter bounds how many CPU heavy calls (password hashing, key derivation)
// run at the same time, so a burst of logins cannot starve request handling.
//
// A call waits for a slot while honoring ctx. Once it holds a slot it runs to
// completion even if ctx is canceled.
type Limiter struct {
	sema chan struct{}
}

// NewLimiter allows size concurrent calls. A non-positive size means NumCPU.
func NewLimiter(size int) *Limiter {
	if size < 1 {
		size = runtime.NumCPU()
	}
	return &Limiter{sema: make(chan struct{}, size)}
}

// Do runs f once a slot is free.
func (l *Limiter) Do(ctx context.Context, f func() error) error {
	select {
	case l.sema <- struct{}{}:
	case <-ctx.Done():
		return errors.Join(ErrLimiterBusy, ctx.Err())
	}
	defer func() { <-l.sema }()

	return f()
}

// Size is the number of slots.
func (l *Limiter) Size() int {
	return cap(l.sema)
}
