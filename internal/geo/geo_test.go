package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tripplan/internal/core"
)

func TestNominatimResolver_Resolve(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("q") == "Nowhereland" {
			w.Write([]byte(`[]`))
			return
		}
		// Two candidates; the first must win.
		w.Write([]byte(`[{"lat":"48.8588897","lon":"2.3200410"},{"lat":"33.6617962","lon":"-95.5555131"}]`))
	}))
	defer srv.Close()

	r := NewNominatimResolver(srv.URL, srv.Client(), 16, time.Minute)
	ctx := context.Background()

	t.Run("first match wins", func(t *testing.T) {
		coord, err := r.Resolve(ctx, "Paris")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if coord.Lat != 48.8588897 || coord.Lon != 2.3200410 {
			t.Fatalf("unexpected coordinate: %+v", coord)
		}
	})

	t.Run("cache avoids second call", func(t *testing.T) {
		before := hits.Load()
		if _, err := r.Resolve(ctx, "paris"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if hits.Load() != before {
			t.Fatal("expected cache hit, provider was called again")
		}
	})

	t.Run("no match fails the geocode stage", func(t *testing.T) {
		_, err := r.Resolve(ctx, "Nowhereland")
		var se *core.StageError
		if !errors.As(err, &se) || se.Stage != core.StageGeocode {
			t.Fatalf("expected geocode stage error, got %v", err)
		}
	})

	t.Run("empty address rejected without a call", func(t *testing.T) {
		before := hits.Load()
		if _, err := r.Resolve(ctx, "  "); err == nil {
			t.Fatal("expected error")
		}
		if hits.Load() != before {
			t.Fatal("empty address must not reach the provider")
		}
	})
}

func TestNominatimResolver_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	r := NewNominatimResolver(srv.URL, nil, 16, time.Minute)
	_, err := r.Resolve(context.Background(), "Paris")
	var se *core.StageError
	if !errors.As(err, &se) || se.Stage != core.StageGeocode {
		t.Fatalf("expected geocode stage error, got %v", err)
	}
}

func TestOSRMRouter_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [
				{"distance": 6009240.1, "duration": 218791.5,
				 "geometry": {"coordinates": [[-79.38,43.65],[-73.56,45.50],[2.32,48.85]]}},
				{"distance": 9999999.0, "duration": 999999.0,
				 "geometry": {"coordinates": [[-79.38,43.65],[2.32,48.85]]}}
			]
		}`))
	}))
	defer srv.Close()

	router := NewOSRMRouter(srv.URL, srv.Client())
	route, err := router.Route(context.Background(),
		core.Coordinate{Lat: 43.65, Lon: -79.38},
		core.Coordinate{Lat: 48.85, Lon: 2.32})
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	if len(route.Path) != 3 {
		t.Fatalf("expected first route's 3 points, got %d", len(route.Path))
	}
	if route.Path[0].Lat != 43.65 || route.Path[0].Lon != -79.38 {
		t.Fatalf("unexpected first point: %+v", route.Path[0])
	}
	if route.DistanceM != 6009240.1 {
		t.Fatalf("expected first-ranked route, got distance %f", route.DistanceM)
	}
	want := core.BoundingBox{MinLat: 43.65, MaxLat: 48.85, MinLon: -79.38, MaxLon: 2.32}
	if route.Bounds != want {
		t.Fatalf("unexpected bounds: %+v", route.Bounds)
	}
}

func TestOSRMRouter_Failures(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no route", `{"code":"NoRoute","message":"Impossible route between points","routes":[]}`},
		{"ok but empty", `{"code":"Ok","routes":[]}`},
		{"malformed geometry", `{"code":"Ok","routes":[{"geometry":{"coordinates":[[2.32]]}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			router := NewOSRMRouter(srv.URL, srv.Client())
			_, err := router.Route(context.Background(), core.Coordinate{}, core.Coordinate{})
			var se *core.StageError
			if !errors.As(err, &se) || se.Stage != core.StageRoute {
				t.Fatalf("expected route stage error, got %v", err)
			}
		})
	}
}
