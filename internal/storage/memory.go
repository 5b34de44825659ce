package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplan/internal/core"
)

// MemoryStore is an in-memory Store used by tests and the "memory"
// backend. Trips and expenses keep insertion order; expenses are an
// arena keyed by id with a trip back-reference, never a live object
// graph.
type MemoryStore struct {
	mu       sync.RWMutex
	trips    []core.Trip
	expenses []core.Expense
	audit    []AuditEntry
	auditIDs map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{auditIDs: make(map[string]struct{})}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateTrip(_ context.Context, trip core.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = append(s.trips, trip)
	return nil
}

func (s *MemoryStore) GetTrip(_ context.Context, id uuid.UUID) (core.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trips {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Trip{}, core.ErrTripNotFound
}

func (s *MemoryStore) ListTrips(_ context.Context) ([]core.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Trip, len(s.trips))
	copy(out, s.trips)
	return out, nil
}

func (s *MemoryStore) DeleteTrip(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.trips {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.ErrTripNotFound
	}
	s.trips = append(s.trips[:idx], s.trips[idx+1:]...)

	kept := s.expenses[:0]
	for _, e := range s.expenses {
		if e.TripID != id {
			kept = append(kept, e)
		}
	}
	s.expenses = kept
	return nil
}

func (s *MemoryStore) AddExpense(_ context.Context, expense core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, t := range s.trips {
		if t.ID == expense.TripID {
			found = true
			break
		}
	}
	if !found {
		return core.ErrTripNotFound
	}
	s.expenses = append(s.expenses, expense)
	return nil
}

func (s *MemoryStore) ExpensesByTrip(_ context.Context, tripID uuid.UUID) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) TotalByTrip(ctx context.Context, tripID uuid.UUID) (decimal.Decimal, error) {
	expenses, err := s.ExpensesByTrip(ctx, tripID)
	if err != nil {
		return decimal.Zero, err
	}
	return core.SumAmounts(expenses), nil
}

func (s *MemoryStore) RecordAudit(_ context.Context, entry AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.auditIDs[entry.ID]; seen {
		return nil
	}
	s.auditIDs[entry.ID] = struct{}{}
	s.audit = append(s.audit, entry)
	return nil
}

func (s *MemoryStore) AuditTrail(_ context.Context, limit int) ([]AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.audit)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]AuditEntry, 0, n)
	for i := len(s.audit) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.audit[i])
	}
	return out, nil
}
