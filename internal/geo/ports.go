// Package geo resolves free-text addresses to coordinates and computes
// driving routes between them. Both providers are opaque REST services;
// their failure reasons are passed through, never interpreted.
package geo

import (
	"context"

	"tripplan/internal/core"
)

// Resolver turns a free-text location into one coordinate. When the
// provider returns multiple candidates, the first is authoritative.
type Resolver interface {
	Resolve(ctx context.Context, address string) (core.Coordinate, error)
}

// Router computes a drivable path between two coordinates. Route
// ranking is the provider's; the first-ranked route is passed through.
type Router interface {
	Route(ctx context.Context, origin, destination core.Coordinate) (core.RouteResult, error)
}
