package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"tripplan/internal/core"
)

const dateFormat = "2006-01-02"

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) CreateTrip(ctx context.Context, trip core.Trip) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (id, name, origin, destination, start_date, end_date, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.ID.String(), trip.Name, trip.Origin, trip.Destination,
		dateToNull(trip.StartDate), dateToNull(trip.EndDate),
		trip.Notes, trip.CreatedAt.UTC(),
	)
	if err != nil {
		return &core.PersistenceError{Op: "create trip", Err: err}
	}

	slog.InfoContext(ctx, "Trip saved",
		"id", trip.ID,
		"name", trip.Name,
		"destination", trip.Destination)
	return nil
}

func (s *SQLiteStore) GetTrip(ctx context.Context, id uuid.UUID) (core.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, origin, destination, start_date, end_date, notes, created_at
		 FROM trips WHERE id = ?`, id.String())
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Trip{}, core.ErrTripNotFound
	}
	if err != nil {
		return core.Trip{}, &core.PersistenceError{Op: "get trip", Err: err}
	}
	return trip, nil
}

func (s *SQLiteStore) ListTrips(ctx context.Context) ([]core.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, origin, destination, start_date, end_date, notes, created_at
		 FROM trips ORDER BY rowid`)
	if err != nil {
		return nil, &core.PersistenceError{Op: "list trips", Err: err}
	}
	defer rows.Close()

	var trips []core.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, &core.PersistenceError{Op: "list trips", Err: err}
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "list trips", Err: err}
	}
	return trips, nil
}

func (s *SQLiteStore) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.PersistenceError{Op: "delete trip", Err: err}
	}
	defer tx.Rollback()

	// Owned expenses go with the trip. The FK cascade covers this too;
	// the explicit delete keeps the invariant visible and testable.
	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE trip_id = ?`, id.String()); err != nil {
		return &core.PersistenceError{Op: "delete trip expenses", Err: err}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id.String())
	if err != nil {
		return &core.PersistenceError{Op: "delete trip", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &core.PersistenceError{Op: "delete trip", Err: err}
	}
	if affected == 0 {
		return core.ErrTripNotFound
	}

	if err := tx.Commit(); err != nil {
		return &core.PersistenceError{Op: "delete trip", Err: err}
	}

	slog.InfoContext(ctx, "Trip deleted", "id", id)
	return nil
}

// AddExpense commits the expense in a single transaction. Totals are
// never stored, so there is no separate total write to keep in step.
func (s *SQLiteStore) AddExpense(ctx context.Context, expense core.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.PersistenceError{Op: "add expense", Err: err}
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM trips WHERE id = ?`, expense.TripID.String()).Scan(&exists)
	if err != nil {
		return &core.PersistenceError{Op: "add expense", Err: err}
	}
	if exists == 0 {
		return core.ErrTripNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, name, amount, created_at) VALUES (?, ?, ?, ?, ?)`,
		expense.ID.String(), expense.TripID.String(), expense.Name,
		amountToNull(expense.Amount), expense.CreatedAt.UTC(),
	)
	if err != nil {
		return &core.PersistenceError{Op: "add expense", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &core.PersistenceError{Op: "add expense", Err: err}
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", expense.ID,
		"trip_id", expense.TripID,
		"name", expense.Name)
	return nil
}

func (s *SQLiteStore) ExpensesByTrip(ctx context.Context, tripID uuid.UUID) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, name, amount, created_at
		 FROM expenses WHERE trip_id = ? ORDER BY rowid`, tripID.String())
	if err != nil {
		return nil, &core.PersistenceError{Op: "list expenses", Err: err}
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e              core.Expense
			idStr, tripStr string
			amount         sql.NullString
		)
		if err := rows.Scan(&idStr, &tripStr, &e.Name, &amount, &e.CreatedAt); err != nil {
			return nil, &core.PersistenceError{Op: "list expenses", Err: err}
		}
		if e.ID, err = uuid.Parse(idStr); err != nil {
			return nil, &core.PersistenceError{Op: "list expenses", Err: err}
		}
		if e.TripID, err = uuid.Parse(tripStr); err != nil {
			return nil, &core.PersistenceError{Op: "list expenses", Err: err}
		}
		if amount.Valid {
			d, err := decimal.NewFromString(amount.String)
			if err != nil {
				return nil, &core.PersistenceError{Op: "list expenses", Err: err}
			}
			e.Amount = &d
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "list expenses", Err: err}
	}
	return expenses, nil
}

// TotalByTrip sums amounts in Go rather than SQL so the addition stays
// exact decimal arithmetic.
func (s *SQLiteStore) TotalByTrip(ctx context.Context, tripID uuid.UUID) (decimal.Decimal, error) {
	expenses, err := s.ExpensesByTrip(ctx, tripID)
	if err != nil {
		return decimal.Zero, err
	}
	return core.SumAmounts(expenses), nil
}

func (s *SQLiteStore) RecordAudit(ctx context.Context, entry AuditEntry) error {
	// INSERT OR IGNORE keeps redelivered events from duplicating rows.
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO audit_log (id, kind, trip_id, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Kind, entry.TripID.String(), entry.Detail, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return &core.PersistenceError{Op: "record audit", Err: err}
	}
	return nil
}

func (s *SQLiteStore) AuditTrail(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, trip_id, detail, created_at FROM audit_log ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, &core.PersistenceError{Op: "audit trail", Err: err}
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			e       AuditEntry
			tripStr string
		)
		if err := rows.Scan(&e.ID, &e.Kind, &tripStr, &e.Detail, &e.CreatedAt); err != nil {
			return nil, &core.PersistenceError{Op: "audit trail", Err: err}
		}
		if e.TripID, err = uuid.Parse(tripStr); err != nil {
			return nil, &core.PersistenceError{Op: "audit trail", Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "audit trail", Err: err}
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (core.Trip, error) {
	var (
		trip           core.Trip
		idStr          string
		startStr, endStr sql.NullString
	)
	err := row.Scan(&idStr, &trip.Name, &trip.Origin, &trip.Destination,
		&startStr, &endStr, &trip.Notes, &trip.CreatedAt)
	if err != nil {
		return core.Trip{}, err
	}
	if trip.ID, err = uuid.Parse(idStr); err != nil {
		return core.Trip{}, err
	}
	if trip.StartDate, err = dateFromNull(startStr); err != nil {
		return core.Trip{}, err
	}
	if trip.EndDate, err = dateFromNull(endStr); err != nil {
		return core.Trip{}, err
	}
	return trip, nil
}

func dateToNull(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateFormat), Valid: true}
}

func dateFromNull(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func amountToNull(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
