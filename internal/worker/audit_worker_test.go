package worker

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"tripplan/internal/amqp"
	"tripplan/internal/storage"
)

func TestAuditWorker_HandleEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewAuditWorker(store)
	ctx := context.Background()

	tripID := uuid.New()
	added := amqp.NewExpenseAddedMessage(tripID, uuid.New(), "Hotel", "120.50")
	deleted := amqp.NewTripDeletedMessage(tripID, "Summer in Paris")

	for _, msg := range []*amqp.EventMessage{added, deleted} {
		if err := w.HandleEvent(ctx, msg); err != nil {
			t.Fatalf("HandleEvent(%s) error = %v", msg.Kind, err)
		}
	}

	trail, err := store.AuditTrail(ctx, 10)
	if err != nil {
		t.Fatalf("AuditTrail() error = %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(trail))
	}
	// Newest first.
	if trail[0].Kind != amqp.KindTripDeleted {
		t.Errorf("first entry kind = %q, want %q", trail[0].Kind, amqp.KindTripDeleted)
	}
	if !strings.Contains(trail[1].Detail, "120.50") {
		t.Errorf("expense entry detail = %q, want the amount in it", trail[1].Detail)
	}
}

func TestAuditWorker_RedeliveryIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewAuditWorker(store)
	ctx := context.Background()

	msg := amqp.NewExpenseAddedMessage(uuid.New(), uuid.New(), "Hotel", "120.50")
	for i := 0; i < 3; i++ {
		if err := w.HandleEvent(ctx, msg); err != nil {
			t.Fatalf("HandleEvent() attempt %d error = %v", i+1, err)
		}
	}

	trail, err := store.AuditTrail(ctx, 10)
	if err != nil {
		t.Fatalf("AuditTrail() error = %v", err)
	}
	if len(trail) != 1 {
		t.Fatalf("expected 1 audit entry after redeliveries, got %d", len(trail))
	}
}
