package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type (
	// Coordinate is a geographic point in WGS84.
	Coordinate struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}

	// BoundingBox is the axis-aligned region enclosing a route path.
	BoundingBox struct {
		MinLat float64 `json:"min_lat"`
		MinLon float64 `json:"min_lon"`
		MaxLat float64 `json:"max_lat"`
		MaxLon float64 `json:"max_lon"`
	}

	// Trip is a planned journey. StartDate and EndDate are optional;
	// when both are set, StartDate must not be after EndDate.
	Trip struct {
		ID          uuid.UUID
		Name        string
		Origin      string
		Destination string
		StartDate   *time.Time
		EndDate     *time.Time
		Notes       string
		CreatedAt   time.Time
	}

	// Expense is a named monetary entry owned by exactly one trip.
	// A nil Amount means the amount was never specified and counts as
	// zero in the trip total.
	Expense struct {
		ID        uuid.UUID
		TripID    uuid.UUID
		Name      string
		Amount    *decimal.Decimal
		CreatedAt time.Time
	}

	// WeatherSnapshot holds current conditions at a destination. It is
	// produced fresh per enrichment call and never persisted.
	WeatherSnapshot struct {
		City        string
		Description string
		Icon        string
		TempC       int
		Humidity    int
		WindKmh     float64
	}

	// RouteResult is a drivable path between two coordinates plus the
	// region to frame it in. Used once to render and then discarded.
	RouteResult struct {
		Path      []Coordinate
		Bounds    BoundingBox
		DistanceM float64
		DurationS float64
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyOrigin      = errors.New("empty origin")
	ErrEmptyDestination = errors.New("empty destination")
	ErrEmptyNotes       = errors.New("empty notes")
	ErrEndBeforeStart   = errors.New("end date precedes start date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrTripNotFound     = errors.New("trip not found")
)

func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.Origin) == "" {
		return ErrEmptyOrigin
	}
	if strings.TrimSpace(t.Destination) == "" {
		return ErrEmptyDestination
	}
	if strings.TrimSpace(t.Notes) == "" {
		return ErrEmptyNotes
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

// Matches reports whether the trip's name or destination contains the
// query, case-insensitively. An empty query matches every trip.
func (t Trip) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Destination), q)
}

// AmountOrZero returns the expense amount, treating an unspecified
// amount as zero.
func (e Expense) AmountOrZero() decimal.Decimal {
	if e.Amount == nil {
		return decimal.Zero
	}
	return *e.Amount
}

// WindDisplay renders wind speed to one decimal place for display.
func (w WeatherSnapshot) WindDisplay() string {
	return fmt.Sprintf("%.1f km/h", w.WindKmh)
}

// BoundsOf computes the bounding region of a path. Returns the zero
// box for an empty path.
func BoundsOf(path []Coordinate) BoundingBox {
	if len(path) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{
		MinLat: path[0].Lat, MaxLat: path[0].Lat,
		MinLon: path[0].Lon, MaxLon: path[0].Lon,
	}
	for _, c := range path[1:] {
		if c.Lat < b.MinLat {
			b.MinLat = c.Lat
		}
		if c.Lat > b.MaxLat {
			b.MaxLat = c.Lat
		}
		if c.Lon < b.MinLon {
			b.MinLon = c.Lon
		}
		if c.Lon > b.MaxLon {
			b.MaxLon = c.Lon
		}
	}
	return b
}
