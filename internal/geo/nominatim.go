package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tripplan/internal/cache"
	"tripplan/internal/core"
)

// NominatimResolver resolves addresses against a Nominatim-compatible
// search endpoint. Results are LRU-cached; weather and routes never
// are, but a coordinate for a fixed address string is stable enough to
// keep for a while.
type NominatimResolver struct {
	baseURL string
	client  *http.Client
	cache   *cache.LRU[core.Coordinate]
}

func NewNominatimResolver(baseURL string, client *http.Client, cacheSize int, cacheTTL time.Duration) *NominatimResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &NominatimResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		cache:   cache.New[core.Coordinate](cacheSize, cacheTTL),
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (r *NominatimResolver) Resolve(ctx context.Context, address string) (core.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return core.Coordinate{}, &core.StageError{Stage: core.StageGeocode, Reason: "empty address"}
	}

	key := strings.ToLower(address)
	if coord, ok := r.cache.Get(key); ok {
		slog.DebugContext(ctx, "Geocode cache hit", "address", address)
		return coord, nil
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return core.Coordinate{}, &core.StageError{Stage: core.StageGeocode, Reason: "build request", Err: err}
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", "tripplan/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return core.Coordinate{}, &core.StageError{Stage: core.StageGeocode, Reason: "geocoding service unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Coordinate{}, &core.StageError{
			Stage:  core.StageGeocode,
			Reason: fmt.Sprintf("geocoding service returned %d", resp.StatusCode),
		}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return core.Coordinate{}, &core.StageError{Stage: core.StageGeocode, Reason: "decode response", Err: err}
	}
	if len(places) == 0 {
		return core.Coordinate{}, &core.StageError{
			Stage:  core.StageGeocode,
			Reason: fmt.Sprintf("no match for %q", address),
		}
	}

	// First match is authoritative; no disambiguation.
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return core.Coordinate{}, &core.StageError{Stage: core.StageGeocode, Reason: "malformed latitude", Err: err}
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return core.Coordinate{}, &core.StageError{Stage: core.StageGeocode, Reason: "malformed longitude", Err: err}
	}

	coord := core.Coordinate{Lat: lat, Lon: lon}
	r.cache.Set(key, coord)

	slog.DebugContext(ctx, "Address resolved", "address", address, "lat", lat, "lon", lon)
	return coord, nil
}
