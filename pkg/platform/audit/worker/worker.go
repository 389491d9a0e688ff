package worker

import (
	"context"

	audit "election/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them until the
// channel closes or ctx ends.
type Worker struct {
	store audit.Store
	inbox <-chan audit.Event
	onErr func(audit.Event, error)
}

// Option configures a Worker.
type Option func(*Worker)

// WithErrorHandler is called for every event the store rejects. Without it
// the first failure stops the worker.
func WithErrorHandler(fn func(audit.Event, error)) Option {
	return func(w *Worker) {
		w.onErr = fn
	}
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, opts ...Option) *Worker {
	w := &Worker{store: store, inbox: inbox}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the inbox. It returns nil once the inbox is closed and empty.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				if w.onErr == nil {
					return err
				}
				w.onErr(event, err)
			}
		}
	}
}
