package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripplan/internal/core"
)

const parisPayload = `{"main":{"temp":20.3,"humidity":55},"wind":{"speed":5.0},"weather":[{"description":"clear sky","icon":"01d"}],"name":"Paris"}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL, "test-key", srv.Client())
}

func TestClient_Current(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(parisPayload))
	})

	snap, err := c.Current(context.Background(), core.Coordinate{Lat: 48.85, Lon: 2.32})
	if err != nil {
		t.Fatalf("current: %v", err)
	}

	if snap.City != "Paris" {
		t.Fatalf("expected Paris, got %q", snap.City)
	}
	if snap.Description != "clear sky" || snap.Icon != "01d" {
		t.Fatalf("unexpected conditions: %+v", snap)
	}
	if snap.TempC != 20 {
		t.Fatalf("expected truncated 20°C, got %d", snap.TempC)
	}
	if snap.Humidity != 55 {
		t.Fatalf("expected 55%% humidity, got %d", snap.Humidity)
	}
	if got := snap.WindDisplay(); got != "18.0 km/h" {
		t.Fatalf("expected 18.0 km/h (5.0 m/s * 3.6), got %q", got)
	}

	for _, part := range []string{"units=metric", "appid=test-key", "lat=48.85", "lon=2.32"} {
		if !strings.Contains(gotQuery, part) {
			t.Fatalf("query %q missing %q", gotQuery, part)
		}
	}
}

func TestClient_Current_TemperatureTruncates(t *testing.T) {
	cases := []struct {
		temp float64
		want int
	}{
		{20.3, 20},
		{20.9, 20},
		{-3.7, -3},
		{0.0, 0},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"main":{"temp":%f,"humidity":50},"wind":{"speed":1.0},"weather":[{"description":"x","icon":"01d"}],"name":"X"}`, tc.temp)
		})
		snap, err := c.Current(context.Background(), core.Coordinate{})
		if err != nil {
			t.Fatalf("current(%f): %v", tc.temp, err)
		}
		if snap.TempC != tc.want {
			t.Fatalf("temp %f: expected %d, got %d", tc.temp, tc.want, snap.TempC)
		}
	}
}

func TestClient_Current_Failures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"unauthorized", http.StatusUnauthorized, `{"cod":401}`},
		{"not json", http.StatusOK, `<html>`},
		{"missing name", http.StatusOK, `{"main":{"temp":1,"humidity":1},"wind":{"speed":1},"weather":[{"description":"x","icon":"y"}]}`},
		{"missing weather", http.StatusOK, `{"main":{"temp":1,"humidity":1},"wind":{"speed":1},"name":"X","weather":[]}`},
		{"missing temp", http.StatusOK, `{"main":{"humidity":1},"wind":{"speed":1},"weather":[{"description":"x","icon":"y"}],"name":"X"}`},
		{"missing humidity", http.StatusOK, `{"main":{"temp":1},"wind":{"speed":1},"weather":[{"description":"x","icon":"y"}],"name":"X"}`},
		{"missing wind", http.StatusOK, `{"main":{"temp":1,"humidity":1},"weather":[{"description":"x","icon":"y"}],"name":"X"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			_, err := c.Current(context.Background(), core.Coordinate{})
			var se *core.StageError
			if !errors.As(err, &se) || se.Stage != core.StageWeather {
				t.Fatalf("expected weather stage error, got %v", err)
			}
		})
	}
}

func TestClient_Icon(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/01d@2x.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(png)
	})

	data, err := c.Icon(context.Background(), "01d")
	if err != nil {
		t.Fatalf("icon: %v", err)
	}
	if string(data) != string(png) {
		t.Fatalf("unexpected icon bytes: %v", data)
	}

	if _, err := c.Icon(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown icon")
	}
}
