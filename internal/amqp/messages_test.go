package amqp

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewExpenseAddedMessage(t *testing.T) {
	tripID := uuid.New()
	expenseID := uuid.New()

	msg := NewExpenseAddedMessage(tripID, expenseID, "Hotel", "120.50")

	if msg.Kind != KindExpenseAdded {
		t.Errorf("Kind = %v, want %v", msg.Kind, KindExpenseAdded)
	}
	if msg.TripID != tripID {
		t.Errorf("TripID = %v, want %v", msg.TripID, tripID)
	}
	if msg.ExpenseID != expenseID {
		t.Errorf("ExpenseID = %v, want %v", msg.ExpenseID, expenseID)
	}
	if msg.Name != "Hotel" || msg.Amount != "120.50" {
		t.Errorf("payload = %q/%q, want Hotel/120.50", msg.Name, msg.Amount)
	}
	if msg.ID == "" {
		t.Error("event ID should be set")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestNewTripDeletedMessage(t *testing.T) {
	tripID := uuid.New()

	msg := NewTripDeletedMessage(tripID, "Summer in Paris")

	if msg.Kind != KindTripDeleted {
		t.Errorf("Kind = %v, want %v", msg.Kind, KindTripDeleted)
	}
	if msg.TripID != tripID {
		t.Errorf("TripID = %v, want %v", msg.TripID, tripID)
	}
	if msg.ExpenseID != uuid.Nil {
		t.Errorf("ExpenseID should be unset, got %v", msg.ExpenseID)
	}
	if msg.Name != "Summer in Paris" {
		t.Errorf("Name = %q, want Summer in Paris", msg.Name)
	}
}

func TestEventMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := &EventMessage{
		ID:        uuid.NewString(),
		Kind:      KindExpenseAdded,
		TripID:    uuid.New(),
		ExpenseID: uuid.New(),
		Name:      "Hotel",
		Amount:    "120.50",
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := EventMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("EventMessageFromJSON() error = %v", err)
	}

	if parsedMsg.ID != msg.ID || parsedMsg.Kind != msg.Kind {
		t.Errorf("Parsed header = %v/%v, want %v/%v", parsedMsg.ID, parsedMsg.Kind, msg.ID, msg.Kind)
	}
	if parsedMsg.TripID != msg.TripID || parsedMsg.ExpenseID != msg.ExpenseID {
		t.Errorf("Parsed ids = %v/%v, want %v/%v", parsedMsg.TripID, parsedMsg.ExpenseID, msg.TripID, msg.ExpenseID)
	}
	if parsedMsg.Amount != msg.Amount {
		t.Errorf("Parsed Amount = %v, want %v", parsedMsg.Amount, msg.Amount)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestEventMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"trip_id": 42}`)

	_, err := EventMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("EventMessageFromJSON() should fail with invalid JSON")
	}
}
