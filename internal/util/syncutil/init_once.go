// Package syncutil holds small synchronization helpers shared by the stores.
package syncutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultInitTimeout = 10 * time.Second

// InitOnce runs a lazy initializer until it succeeds once. A failed attempt
// is retried by the next caller. The initializer ignores the caller's
// cancellation and is bounded by Timeout instead.
type InitOnce struct {
	Timeout time.Duration

	mu   sync.Mutex
	done atomic.Bool
}

func (o *InitOnce) Do(ctx context.Context, fn func(context.Context) error) error {
	if o.done.Load() {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done.Load() {
		return nil
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultInitTimeout
	}
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := fn(ictx); err != nil {
		return err
	}
	o.done.Store(true)
	return nil
}
