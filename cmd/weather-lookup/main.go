package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

var rootCmd = &cobra.Command{
	Use:   "weather-lookup",
	Short: "Weather lookup by place name or device position",
	Long: `weather-lookup resolves a place name or a device position to coordinates and
shows current conditions, the 7-day forecast and historical daily weather from Open-Meteo.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService builds the lookup service from configuration.
func newService(cfg *config.AppConfig, recorder providers.Recorder) *weather.Service {
	// Shared HTTP client for outbound calls.
	httpCfg := providers.HTTPClientConfig{
		Client:   &http.Client{Timeout: cfg.HTTPTimeout},
		Recorder: recorder,
	}

	var geocoder weather.Geocoder
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoder = providers.NewGoogleGeocoder(httpCfg, cfg.GoogleGeocoderAPIKey)
	} else {
		geocoder = providers.NewMapsCoGeocoder(httpCfg, cfg.GeocodeBaseURL, cfg.GeocodeAPIKey)
	}

	querier := providers.NewOpenMeteoProvider(httpCfg, cfg.ForecastBaseURL, cfg.ArchiveBaseURL)
	return weather.NewService(geocoder, querier)
}
