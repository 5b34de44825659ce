package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tripplan/internal/amqp"
	"tripplan/internal/storage"
)

// AuditWorker consumes trip events from AMQP and appends them to the
// audit log. The store keys entries by event ID, so a redelivered
// message is a no-op rather than a duplicate row.
type AuditWorker struct {
	store storage.Store
}

func NewAuditWorker(store storage.Store) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent processes a single trip event message from AMQP
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.EventMessage) error {
	slog.InfoContext(ctx, "Processing trip event",
		"event_id", msg.ID,
		"kind", msg.Kind,
		"trip_id", msg.TripID)

	entry := storage.AuditEntry{
		ID:        msg.ID,
		Kind:      msg.Kind,
		TripID:    msg.TripID,
		Detail:    detailFor(msg),
		CreatedAt: msg.Timestamp,
	}

	if err := w.store.RecordAudit(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	return nil
}

func detailFor(msg *amqp.EventMessage) string {
	switch msg.Kind {
	case amqp.KindExpenseAdded:
		return fmt.Sprintf("expense %q amount %s", msg.Name, msg.Amount)
	case amqp.KindTripDeleted:
		return fmt.Sprintf("trip %q deleted", msg.Name)
	default:
		return msg.Kind
	}
}
