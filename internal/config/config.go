package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	Backend      string
	SQLiteDBPath string

	// AMQP (optional; events are skipped when unset)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Enrichment providers
	GeocodeBaseURL     string
	RouteBaseURL       string
	WeatherBaseURL     string
	WeatherIconBaseURL string
	WeatherAPIKey      string
	ProviderTimeout    time.Duration

	// Geocode cache
	GeocodeCacheSize int
	GeocodeCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Backend:      getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tripplan.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tripplan"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "trip_events"),

		GeocodeBaseURL:     getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		RouteBaseURL:       getEnv("ROUTE_BASE_URL", "https://router.project-osrm.org"),
		WeatherBaseURL:     getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		WeatherIconBaseURL: getEnv("WEATHER_ICON_BASE_URL", "https://openweathermap.org/img/wn"),
		WeatherAPIKey:      getEnv("WEATHER_API_KEY", ""),
		ProviderTimeout:    getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),

		GeocodeCacheSize: getEnvInt("GEOCODE_CACHE_SIZE", 128),
		GeocodeCacheTTL:  getEnvDuration("GEOCODE_CACHE_TTL", 30*time.Minute),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case "sqlite", "memory":
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite memory]", c.Backend))
	}

	if c.Backend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	for name, raw := range map[string]string{
		"GEOCODE_BASE_URL":      c.GeocodeBaseURL,
		"ROUTE_BASE_URL":        c.RouteBaseURL,
		"WEATHER_BASE_URL":      c.WeatherBaseURL,
		"WEATHER_ICON_BASE_URL": c.WeatherIconBaseURL,
	} {
		if raw == "" {
			errors = append(errors, fmt.Sprintf("%s cannot be empty", name))
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid %s '%s'", name, raw))
		}
	}

	if c.ProviderTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid provider timeout %v: must be at least 1 second", c.ProviderTimeout))
	}
	if c.GeocodeCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid geocode cache size %d: must be at least 1", c.GeocodeCacheSize))
	}
	if c.GeocodeCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid geocode cache TTL %v: must be at least 1 second", c.GeocodeCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
