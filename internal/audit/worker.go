package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// workerBatchSize bounds one outbox drain.
const workerBatchSize = 100

// Worker polls the outbox and publishes pending entries. Publication is
// at-least-once: a crash between publish and mark redelivers, and consumers
// deduplicate on the event ID.
type Worker struct {
	store     Store
	publisher Publisher
	interval  time.Duration
	logger    *slog.Logger
}

func NewWorker(store Store, publisher Publisher, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{store: store, publisher: publisher, interval: interval, logger: logger}
}

// Run drains the outbox until the context is cancelled. Publish errors are
// logged and retried on the next tick rather than crashing the worker.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err.Error())
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	entries, err := w.store.ListUnpublished(ctx, workerBatchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		if err := w.publisher.Publish(ctx, entry); err != nil {
			w.logger.WarnContext(ctx, "audit publish failed, will retry",
				"entry_id", entry.ID,
				"action", entry.Action,
				"error", err.Error(),
			)
			break
		}
		published = append(published, entry.ID)
	}
	return w.store.MarkPublished(ctx, published)
}
