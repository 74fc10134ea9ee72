package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// HTTPTimeout bounds upstream calls; zero means no timeout.
	HTTPTimeout time.Duration

	GeocodeBaseURL       string
	GeocodeAPIKey        string
	GoogleGeocoderAPIKey string // selects the Google geocoder when set

	ForecastBaseURL string
	ArchiveBaseURL  string

	// Session retention.
	SessionMaxAge        time.Duration
	SessionSweepInterval time.Duration

	// CORSAllowOrigins lists front-end origins allowed to make credentialed
	// calls. Empty means same-origin only.
	CORSAllowOrigins string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}

	cfg.GeocodeBaseURL = getenvDefault("GEOCODE_BASE_URL", "https://geocode.maps.co")
	cfg.GeocodeAPIKey = os.Getenv("GEOCODE_API_KEY")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	cfg.ForecastBaseURL = getenvDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1")
	cfg.ArchiveBaseURL = getenvDefault("ARCHIVE_BASE_URL", "https://archive-api.open-meteo.com/v1")

	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval, err = getenvDuration("SESSION_SWEEP_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval > 0 && cfg.SessionSweepInterval < time.Second {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: must be at least 1s")
	}

	cfg.CORSAllowOrigins = strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS"))
	if strings.Contains(cfg.CORSAllowOrigins, "*") {
		return nil, fmt.Errorf("invalid CORS_ALLOW_ORIGINS: the session cookie needs explicit origins, not %q", cfg.CORSAllowOrigins)
	}

	for _, u := range []string{cfg.GeocodeBaseURL, cfg.ForecastBaseURL, cfg.ArchiveBaseURL} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return nil, fmt.Errorf("invalid base url %q: must start with http:// or https://", u)
		}
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
