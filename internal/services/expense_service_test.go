package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplan/internal/core"
	"tripplan/internal/storage"
)

func newTrip(t *testing.T, store storage.Store, name, origin, destination string) core.Trip {
	t.Helper()
	trip := core.Trip{
		ID:          uuid.New(),
		Name:        name,
		Origin:      origin,
		Destination: destination,
		Notes:       "packing list pending",
		CreatedAt:   time.Now(),
	}
	if err := store.CreateTrip(context.Background(), trip); err != nil {
		t.Fatalf("CreateTrip() error = %v", err)
	}
	return trip
}

func TestExpenseService_AddAndTotal(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewExpenseService(store, nil)
	trip := newTrip(t, store, "Summer in Paris", "Toronto", "Paris")
	ctx := context.Background()

	expense, err := svc.Add(ctx, trip.ID, "Hotel", "120.50")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if expense.Name != "Hotel" || !expense.Amount.Equal(decimal.RequireFromString("120.50")) {
		t.Fatalf("unexpected expense: %+v", expense)
	}

	total, err := svc.Total(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	if !total.Equal(decimal.RequireFromString("120.50")) {
		t.Fatalf("Total() = %s, want 120.50", total)
	}
}

func TestExpenseService_RejectedExpenseLeavesLedgerUntouched(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewExpenseService(store, nil)
	trip := newTrip(t, store, "Summer in Paris", "Toronto", "Paris")
	ctx := context.Background()

	if _, err := svc.Add(ctx, trip.ID, "Hotel", "120.50"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	cases := []struct {
		name    string
		expense string
		amount  string
		wantErr error
	}{
		{"empty amount", "Dinner", "", core.ErrInvalidAmount},
		{"malformed amount", "Dinner", "12,50,0", core.ErrInvalidAmount},
		{"negative amount", "Refund", "-3.00", core.ErrInvalidAmount},
		{"blank name", "   ", "10.00", core.ErrEmptyName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, trip.ID, tc.expense, tc.amount)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Add() error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	total, err := svc.Total(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	if !total.Equal(decimal.RequireFromString("120.50")) {
		t.Fatalf("Total() = %s, want 120.50 after rejected expenses", total)
	}

	expenses, err := svc.ListByTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListByTrip() error = %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}
}

func TestExpenseService_CommaDecimalSeparator(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewExpenseService(store, nil)
	trip := newTrip(t, store, "Summer in Paris", "Toronto", "Paris")

	expense, err := svc.Add(context.Background(), trip.ID, "Museum", "12,50")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !expense.Amount.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("Amount = %s, want 12.50", expense.Amount)
	}
}

func TestExpenseService_UnknownTrip(t *testing.T) {
	svc := NewExpenseService(storage.NewMemoryStore(), nil)

	_, err := svc.Add(context.Background(), uuid.New(), "Hotel", "10.00")
	if !errors.Is(err, core.ErrTripNotFound) {
		t.Fatalf("Add() error = %v, want %v", err, core.ErrTripNotFound)
	}
}

func TestExpenseService_TotalTracksEveryAddition(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewExpenseService(store, nil)
	trip := newTrip(t, store, "Summer in Paris", "Toronto", "Paris")
	ctx := context.Background()

	amounts := []string{"100.10", "0.15", "37.50"}
	running := decimal.Zero
	for _, amount := range amounts {
		if _, err := svc.Add(ctx, trip.ID, "item", amount); err != nil {
			t.Fatalf("Add(%s) error = %v", amount, err)
		}
		running = running.Add(decimal.RequireFromString(amount))

		total, err := svc.Total(ctx, trip.ID)
		if err != nil {
			t.Fatalf("Total() error = %v", err)
		}
		if !total.Equal(running) {
			t.Fatalf("Total() = %s, want %s", total, running)
		}
	}

	if want := decimal.RequireFromString("137.75"); !running.Equal(want) {
		t.Fatalf("running total = %s, want %s", running, want)
	}
}
