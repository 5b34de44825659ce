// Package storage owns persistence for trips, expenses, and the audit
// trail. Two implementations exist: SQLite for real deployments and an
// in-memory store for tests and ephemeral runs.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplan/internal/core"
)

// AuditEntry is one recorded trip or expense event. ID is the event's
// message id, which keeps redelivered events from duplicating rows.
type AuditEntry struct {
	ID        string
	Kind      string
	TripID    uuid.UUID
	Detail    string
	CreatedAt time.Time
}

// Store is the persistence port shared by the repository, the ledger,
// and the audit worker. Every error it returns is either
// core.ErrTripNotFound or a *core.PersistenceError.
type Store interface {
	CreateTrip(ctx context.Context, trip core.Trip) error
	GetTrip(ctx context.Context, id uuid.UUID) (core.Trip, error)
	// ListTrips returns trips in creation order.
	ListTrips(ctx context.Context) ([]core.Trip, error)
	// DeleteTrip removes the trip and every expense it owns.
	DeleteTrip(ctx context.Context, id uuid.UUID) error

	AddExpense(ctx context.Context, expense core.Expense) error
	// ExpensesByTrip returns expenses in insertion order.
	ExpensesByTrip(ctx context.Context, tripID uuid.UUID) ([]core.Expense, error)
	// TotalByTrip recomputes the trip total from the current expense
	// set; no denormalized total is ever stored.
	TotalByTrip(ctx context.Context, tripID uuid.UUID) (decimal.Decimal, error)

	RecordAudit(ctx context.Context, entry AuditEntry) error
	AuditTrail(ctx context.Context, limit int) ([]AuditEntry, error)

	Close() error
}
