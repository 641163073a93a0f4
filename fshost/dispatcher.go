package fshost

import (
	"context"
)

// Task is a unit of work run by a [Dispatcher].
type Task func(ctx context.Context)

// Dispatcher runs posted tasks one at a time, in order, on the goroutine
// calling [Dispatcher.Run].
//
// Create instances with [NewDispatcher].
type Dispatcher struct {
	tasks chan Task
}

// NewDispatcher creates a [Dispatcher] queueing up to size tasks.
func NewDispatcher(size int) *Dispatcher {
	return &Dispatcher{tasks: make(chan Task, max(size, 0))}
}

// Post queues fn. It blocks while the queue is full and returns the context
// error if ctx is done first.
func (d *Dispatcher) Post(ctx context.Context, fn Task) error {
	select {
	case d.tasks <- fn:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Run executes queued tasks until ctx is done. Tasks still queued at that
// point are dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-d.tasks:
			fn(ctx)
		}
	}
}
