package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event kinds carried on the trip event stream.
const (
	KindExpenseAdded = "expense_added"
	KindTripDeleted  = "trip_deleted"
)

// EventMessage is a lightweight notification about a trip mutation.
// It carries identifiers and a human-readable detail; consumers fetch
// anything heavier from the store. The ID is unique per event and lets
// consumers deduplicate redelivered messages.
type EventMessage struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	TripID    uuid.UUID `json:"trip_id"`
	ExpenseID uuid.UUID `json:"expense_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseAddedMessage builds the event published after an expense
// is recorded. The amount is a decimal string to keep it exact.
func NewExpenseAddedMessage(tripID, expenseID uuid.UUID, name, amount string) *EventMessage {
	return &EventMessage{
		ID:        uuid.NewString(),
		Kind:      KindExpenseAdded,
		TripID:    tripID,
		ExpenseID: expenseID,
		Name:      name,
		Amount:    amount,
		Timestamp: time.Now(),
	}
}

// NewTripDeletedMessage builds the event published after a trip and
// its expenses are removed.
func NewTripDeletedMessage(tripID uuid.UUID, name string) *EventMessage {
	return &EventMessage{
		ID:        uuid.NewString(),
		Kind:      KindTripDeleted,
		TripID:    tripID,
		Name:      name,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
