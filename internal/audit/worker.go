package audit

import (
	"context"
	"log/slog"
	"time"
)

const appendTimeout = 5 * time.Second

// Worker consumes audit events from a channel and persists them. A failed
// append is logged and the worker keeps draining; one bad event must not
// wedge the pipeline.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			w.append(event)
		}
	}
}

func (w *Worker) append(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := w.store.Append(ctx, event); err != nil {
		w.logger.Error("append audit event",
			"error", err,
			"action", event.Action,
			"event_id", event.EventID.String(),
		)
	}
}
