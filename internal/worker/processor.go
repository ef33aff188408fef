package worker

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/solosphere-be/internal/worker/domain"
)

// processMessage records the event in the activity log within the process
// timeout. Store failures are retryable; replays are acknowledged.
func (w *Worker) processMessage(ctx context.Context, msg *domain.ActivityMessage) error {
	ctx, cancel := context.WithTimeout(ctx, w.processTimeout)
	defer cancel()

	e := msg.Event
	outcome, err := w.store.RecordActivity(ctx, e)
	if err != nil {
		return domain.NewRetryableError(err)
	}

	w.logger.Info("Activity processed",
		slog.String("event_id", e.EventID),
		slog.String("type", string(e.Type)),
		slog.String("actor_email", e.ActorEmail),
		slog.String("outcome", outcome),
	)
	return nil
}
