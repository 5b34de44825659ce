package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tripplan/internal/core"
)

// OSRMRouter computes driving routes against an OSRM-compatible
// endpoint.
type OSRMRouter struct {
	baseURL string
	client  *http.Client
}

func NewOSRMRouter(baseURL string, client *http.Client) *OSRMRouter {
	if client == nil {
		client = http.DefaultClient
	}
	return &OSRMRouter{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (r *OSRMRouter) Route(ctx context.Context, origin, destination core.Coordinate) (core.RouteResult, error) {
	// OSRM wants lon,lat pairs.
	endpoint := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=full&geometries=geojson&alternatives=false",
		r.baseURL,
		coordPart(origin.Lon), coordPart(origin.Lat),
		coordPart(destination.Lon), coordPart(destination.Lat),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return core.RouteResult{}, &core.StageError{Stage: core.StageRoute, Reason: "build request", Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return core.RouteResult{}, &core.StageError{Stage: core.StageRoute, Reason: "routing service unreachable", Err: err}
	}
	defer resp.Body.Close()

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return core.RouteResult{}, &core.StageError{Stage: core.StageRoute, Reason: "decode response", Err: err}
	}

	if body.Code != "Ok" {
		// Provider-supplied reason, passed through.
		reason := body.Message
		if reason == "" {
			reason = fmt.Sprintf("routing failed with code %q", body.Code)
		}
		return core.RouteResult{}, &core.StageError{Stage: core.StageRoute, Reason: reason}
	}
	if len(body.Routes) == 0 {
		return core.RouteResult{}, &core.StageError{Stage: core.StageRoute, Reason: "no route between points"}
	}

	// First route is the provider's best-ranked one.
	best := body.Routes[0]
	path := make([]core.Coordinate, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			return core.RouteResult{}, &core.StageError{Stage: core.StageRoute, Reason: "malformed geometry"}
		}
		path = append(path, core.Coordinate{Lon: pair[0], Lat: pair[1]})
	}

	return core.RouteResult{
		Path:      path,
		Bounds:    core.BoundsOf(path),
		DistanceM: best.Distance,
		DurationS: best.Duration,
	}, nil
}

func coordPart(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
