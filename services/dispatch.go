package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultSideEffectTimeout bounds a single background side effect
const DefaultSideEffectTimeout = 8 * time.Second

// Dispatcher runs best-effort side effects (calendar mirror, email
// notifications) outside the request that triggered them. Each task gets its
// own context, detached from the request and bounded by the timeout. Failures
// and panics are logged and never reach the caller.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher; a non-positive timeout uses DefaultSideEffectTimeout
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSideEffectTimeout
	}
	return &Dispatcher{timeout: timeout}
}

// Timeout returns the per-task deadline
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// Go schedules fn and returns immediately
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.run(fn); err != nil {
			log.Printf("[WARNING] Background task %q failed: %v", name, err)
		}
	}()
}

// Run executes fn synchronously under the same timeout and panic guard used by Go
func (d *Dispatcher) Run(fn func(ctx context.Context) error) error {
	return d.run(fn)
}

func (d *Dispatcher) run(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	// Buffered so an abandoned task can still finish without blocking
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("timed out after %s: %w", d.timeout, ctx.Err())
	}
}

// Wait blocks until every scheduled task has finished or timed out
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
