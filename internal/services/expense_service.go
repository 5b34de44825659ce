package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplan/internal/amqp"
	"tripplan/internal/core"
	"tripplan/internal/storage"
)

// ExpenseService is the ledger: it records expenses against trips and
// answers totals recomputed from the stored rows.
type ExpenseService struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewExpenseService(store storage.Store, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Add validates and records one expense. A rejected expense leaves the
// ledger untouched. Publish failures are logged, not returned; the
// expense is already saved locally.
func (s *ExpenseService) Add(ctx context.Context, tripID uuid.UUID, name, amount string) (core.Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Expense{}, core.ErrEmptyName
	}

	parsed, err := core.ParseAmount(amount)
	if err != nil {
		return core.Expense{}, err
	}

	expense := core.Expense{
		ID:        uuid.New(),
		TripID:    tripID,
		Name:      name,
		Amount:    &parsed,
		CreatedAt: time.Now(),
	}

	if err := s.store.AddExpense(ctx, expense); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	msg := amqp.NewExpenseAddedMessage(tripID, expense.ID, expense.Name, parsed.String())
	if err := s.publishEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense added event",
			"trip_id", tripID, "expense_id", expense.ID, "error", err)
	}

	slog.InfoContext(ctx, "Expense added",
		"trip_id", tripID, "expense_id", expense.ID, "amount", parsed.String())
	return expense, nil
}

// ListByTrip returns the trip's expenses in insertion order.
func (s *ExpenseService) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]core.Expense, error) {
	return s.store.ExpensesByTrip(ctx, tripID)
}

// Total returns the sum of the trip's expense amounts, recomputed from
// the stored expenses on every call.
func (s *ExpenseService) Total(ctx context.Context, tripID uuid.UUID) (decimal.Decimal, error) {
	return s.store.TotalByTrip(ctx, tripID)
}

func (s *ExpenseService) publishEvent(ctx context.Context, msg *amqp.EventMessage) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event publish")
		return nil
	}

	return s.amqpClient.PublishEvent(ctx, msg)
}
