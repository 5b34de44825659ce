// Package weather retrieves current conditions from an
// OpenWeatherMap-compatible API. Snapshots are produced fresh per call
// and never cached.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tripplan/internal/core"
)

// Fetcher is the port the enrichment pipeline consumes.
type Fetcher interface {
	Current(ctx context.Context, coord core.Coordinate) (core.WeatherSnapshot, error)
	// Icon fetches the raw PNG for an icon identifier. Failures are
	// non-fatal to enrichment; the icon is simply absent.
	Icon(ctx context.Context, icon string) ([]byte, error)
}

// Client fetches current weather and icon assets over HTTP.
type Client struct {
	baseURL     string
	iconBaseURL string
	apiKey      string
	client      *http.Client
}

func NewClient(baseURL, iconBaseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL:     baseURL,
		iconBaseURL: strings.TrimRight(iconBaseURL, "/"),
		apiKey:      apiKey,
		client:      client,
	}
}

// Wire format. Pointers distinguish "absent" from zero so a payload
// missing required fields is rejected instead of silently zeroed.
type currentPayload struct {
	Name    *string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

func (p currentPayload) validate() error {
	switch {
	case p.Name == nil:
		return fmt.Errorf("missing field name")
	case len(p.Weather) == 0:
		return fmt.Errorf("missing field weather")
	case p.Main == nil || p.Main.Temp == nil:
		return fmt.Errorf("missing field main.temp")
	case p.Main.Humidity == nil:
		return fmt.Errorf("missing field main.humidity")
	case p.Wind == nil || p.Wind.Speed == nil:
		return fmt.Errorf("missing field wind.speed")
	}
	return nil
}

func (c *Client) Current(ctx context.Context, coord core.Coordinate) (core.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return core.WeatherSnapshot{}, &core.StageError{Stage: core.StageWeather, Reason: "build request", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return core.WeatherSnapshot{}, &core.StageError{Stage: core.StageWeather, Reason: "weather service unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.WeatherSnapshot{}, &core.StageError{
			Stage:  core.StageWeather,
			Reason: fmt.Sprintf("weather service returned %d", resp.StatusCode),
		}
	}

	var payload currentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return core.WeatherSnapshot{}, &core.StageError{Stage: core.StageWeather, Reason: "decode response", Err: err}
	}
	if err := payload.validate(); err != nil {
		return core.WeatherSnapshot{}, &core.StageError{Stage: core.StageWeather, Reason: err.Error()}
	}

	return core.WeatherSnapshot{
		City:        *payload.Name,
		Description: payload.Weather[0].Description,
		Icon:        payload.Weather[0].Icon,
		// Truncated, not rounded: 20.9°C displays as 20°C.
		TempC:    int(*payload.Main.Temp),
		Humidity: *payload.Main.Humidity,
		WindKmh:  *payload.Wind.Speed * 3.6,
	}, nil
}

func (c *Client) Icon(ctx context.Context, icon string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s@2x.png", c.iconBaseURL, url.PathEscape(icon)), nil)
	if err != nil {
		return nil, fmt.Errorf("build icon request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("icon fetch returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read icon: %w", err)
	}
	return data, nil
}
