package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tripplan/internal/amqp"
	"tripplan/internal/core"
	"tripplan/internal/storage"
)

// TripService orchestrates trip operations across the store and AMQP
type TripService struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewTripService(store storage.Store, amqpClient *amqp.Client) *TripService {
	return &TripService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Create validates and persists a new trip. The ID and creation time
// are assigned here when the caller left them unset.
func (s *TripService) Create(ctx context.Context, trip core.Trip) (core.Trip, error) {
	if err := trip.Validate(); err != nil {
		return core.Trip{}, err
	}

	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now()
	}

	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return core.Trip{}, fmt.Errorf("create trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip created", "trip_id", trip.ID, "name", trip.Name)
	return trip, nil
}

// Get returns one trip by ID.
func (s *TripService) Get(ctx context.Context, id uuid.UUID) (core.Trip, error) {
	return s.store.GetTrip(ctx, id)
}

// List returns all trips in creation order.
func (s *TripService) List(ctx context.Context) ([]core.Trip, error) {
	return s.store.ListTrips(ctx)
}

// Search returns the trips whose name or destination contains the
// query, case-insensitively. A blank query returns every trip.
func (s *TripService) Search(ctx context.Context, query string) ([]core.Trip, error) {
	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]core.Trip, 0, len(trips))
	for _, trip := range trips {
		if trip.Matches(query) {
			matched = append(matched, trip)
		}
	}
	return matched, nil
}

// Delete removes a trip along with its expenses and publishes a
// trip_deleted event. Publish failures are logged, not returned; the
// local delete already happened.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	trip, err := s.store.GetTrip(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTrip(ctx, id); err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}

	if err := s.publishEvent(ctx, amqp.NewTripDeletedMessage(id, trip.Name)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish trip deleted event",
			"trip_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Trip deleted", "trip_id", id, "name", trip.Name)
	return nil
}

func (s *TripService) publishEvent(ctx context.Context, msg *amqp.EventMessage) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event publish")
		return nil
	}

	return s.amqpClient.PublishEvent(ctx, msg)
}
