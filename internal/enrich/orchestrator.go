// Package enrich runs the trip enrichment pipeline: resolve origin,
// resolve destination, then compute the route and fetch destination
// weather concurrently. Each stage reports its own outcome; a missing
// map never implies missing weather, and vice versa.
package enrich

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tripplan/internal/core"
	"tripplan/internal/geo"
	"tripplan/internal/weather"
)

// Stage is one pipeline step. The two resolutions are distinct stages
// here; both surface failures as the geocode stage of core.StageError.
type Stage string

const (
	StageResolveOrigin      Stage = "resolve-origin"
	StageResolveDestination Stage = "resolve-destination"
	StageRoute              Stage = "route"
	StageWeather            Stage = "weather"
)

// EventKind discriminates busy-indicator transitions from stage
// outcomes.
type EventKind int

const (
	KindBusy EventKind = iota
	KindStage
)

// Event is one progress report streamed back to the caller. For
// KindStage events exactly one of the payload fields or Err is set.
type Event struct {
	Kind    EventKind
	Busy    bool
	Stage   Stage
	Coord   *core.Coordinate
	Route   *core.RouteResult
	Weather *core.WeatherSnapshot
	Icon    []byte
	Err     error
}

// Orchestrator sequences the enrichment stages for one trip at a time.
// It holds no per-invocation state beyond the generation counters that
// let a newer invocation supersede a stale one.
type Orchestrator struct {
	resolver geo.Resolver
	router   geo.Router
	weather  weather.Fetcher

	mu   sync.Mutex
	gens map[uuid.UUID]uint64
}

func NewOrchestrator(resolver geo.Resolver, router geo.Router, fetcher weather.Fetcher) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		router:   router,
		weather:  fetcher,
		gens:     make(map[uuid.UUID]uint64),
	}
}

// Enrich starts the pipeline for one trip and returns the event
// stream. The channel is closed when every started stage has reported,
// or earlier when a newer invocation for the same trip supersedes this
// one. The channel buffer covers the maximum event count, so the
// pipeline never blocks on a slow caller.
func (o *Orchestrator) Enrich(ctx context.Context, tripID uuid.UUID, origin, destination string) <-chan Event {
	events := make(chan Event, 8)
	gen := o.begin(tripID)

	go func() {
		defer close(events)
		o.run(ctx, tripID, gen, origin, destination, events)
	}()

	return events
}

func (o *Orchestrator) run(ctx context.Context, tripID uuid.UUID, gen uint64, origin, destination string, events chan<- Event) {
	emit := func(ev Event) {
		if o.current(tripID) != gen {
			return
		}
		events <- ev
	}
	busy := func(b bool) { emit(Event{Kind: KindBusy, Busy: b}) }

	// Busy from the first stage. It clears when the route branch's
	// outcome is known; geocode failures clear it too, since no route
	// will ever arrive.
	busy(true)

	originCoord, err := o.resolver.Resolve(ctx, origin)
	if err != nil {
		slog.WarnContext(ctx, "Origin resolution failed", "trip_id", tripID, "error", err)
		emit(Event{Kind: KindStage, Stage: StageResolveOrigin, Err: err})
		busy(false)
		return
	}
	emit(Event{Kind: KindStage, Stage: StageResolveOrigin, Coord: &originCoord})

	if o.current(tripID) != gen {
		return
	}

	// Destination resolution starts only after the origin succeeds:
	// both points are needed before routing.
	destCoord, err := o.resolver.Resolve(ctx, destination)
	if err != nil {
		slog.WarnContext(ctx, "Destination resolution failed", "trip_id", tripID, "error", err)
		emit(Event{Kind: KindStage, Stage: StageResolveDestination, Err: err})
		busy(false)
		return
	}
	emit(Event{Kind: KindStage, Stage: StageResolveDestination, Coord: &destCoord})

	if o.current(tripID) != gen {
		return
	}

	// Route and weather run independently; a failure in one never
	// cancels the other, so no shared cancellation context here.
	var g errgroup.Group

	g.Go(func() error {
		route, err := o.router.Route(ctx, originCoord, destCoord)
		if err != nil {
			slog.WarnContext(ctx, "Route computation failed", "trip_id", tripID, "error", err)
			emit(Event{Kind: KindStage, Stage: StageRoute, Err: err})
		} else {
			emit(Event{Kind: KindStage, Stage: StageRoute, Route: &route})
		}
		// The busy indicator follows the route branch only; the map is
		// the primary interactive artifact.
		busy(false)
		return nil
	})

	g.Go(func() error {
		snap, err := o.weather.Current(ctx, destCoord)
		if err != nil {
			slog.WarnContext(ctx, "Weather fetch failed", "trip_id", tripID, "error", err)
			emit(Event{Kind: KindStage, Stage: StageWeather, Err: err})
			return nil
		}
		ev := Event{Kind: KindStage, Stage: StageWeather, Weather: &snap}
		if snap.Icon != "" {
			if icon, err := o.weather.Icon(ctx, snap.Icon); err != nil {
				slog.WarnContext(ctx, "Weather icon fetch failed", "trip_id", tripID, "icon", snap.Icon, "error", err)
			} else {
				ev.Icon = icon
			}
		}
		emit(ev)
		return nil
	})

	_ = g.Wait()
}

// begin registers a new invocation for the trip and returns its
// generation. Any older invocation is superseded from this point on.
func (o *Orchestrator) begin(tripID uuid.UUID) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gens[tripID]++
	return o.gens[tripID]
}

func (o *Orchestrator) current(tripID uuid.UUID) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gens[tripID]
}
