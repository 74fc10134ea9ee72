package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	DefaultForecastBaseURL = "https://api.open-meteo.com/v1"
	DefaultArchiveBaseURL  = "https://archive-api.open-meteo.com/v1"

	currentHourly   = "temperature_2m,relativehumidity_2m,windspeed_10m"
	forecastDaily   = "temperature_2m_max,temperature_2m_min,sunrise,sunset,uv_index_max"
	historicalDaily = "temperature_2m_max,temperature_2m_min,temperature_2m_mean,sunrise,sunset,precipitation_sum"
)

// OpenMeteoProvider implements weather.Querier against the Open-Meteo forecast
// and archive APIs.
type OpenMeteoProvider struct {
	forecastURL string
	archiveURL  string
	httpCfg     HTTPClientConfig
	forecast    *gobreaker.CircuitBreaker
	archive     *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider. Empty base URLs select the public endpoints.
func NewOpenMeteoProvider(cfg HTTPClientConfig, forecastBaseURL, archiveBaseURL string) *OpenMeteoProvider {
	if forecastBaseURL == "" {
		forecastBaseURL = DefaultForecastBaseURL
	}
	if archiveBaseURL == "" {
		archiveBaseURL = DefaultArchiveBaseURL
	}

	return &OpenMeteoProvider{
		forecastURL: strings.TrimRight(forecastBaseURL, "/") + "/forecast",
		archiveURL:  strings.TrimRight(archiveBaseURL, "/") + "/archive",
		httpCfg:     cfg,
		forecast:    newBreaker("openmeteo-forecast"),
		archive:     newBreaker("openmeteo-archive"),
	}
}

// FetchCurrent requests current weather plus hourly temperature, humidity and wind.
func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, coord weather.Coordinate) (weather.CurrentResponse, error) {
	values := coordValues(coord)
	values.Set("current_weather", "true")
	values.Set("hourly", currentHourly)

	var out weather.CurrentResponse
	err := getJSON(ctx, p.httpCfg, p.forecast, "current", encode(p.forecastURL, values), &out)
	return out, err
}

// FetchForecast requests the 7-day daily forecast.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, coord weather.Coordinate) (weather.DailyResponse, error) {
	values := coordValues(coord)
	values.Set("daily", forecastDaily)
	values.Set("current_weather", "true")
	values.Set("timezone", "auto")

	var out weather.DailyResponse
	err := getJSON(ctx, p.httpCfg, p.forecast, "forecast", encode(p.forecastURL, values), &out)
	return out, err
}

// FetchHistorical requests daily archive data for the closed range r.
func (p *OpenMeteoProvider) FetchHistorical(ctx context.Context, coord weather.Coordinate, r weather.DateRange) (weather.DailyResponse, error) {
	if r.Start.IsZero() || r.End.IsZero() {
		return weather.DailyResponse{}, weather.ErrMissingDateRange
	}

	values := coordValues(coord)
	values.Set("start_date", r.StartDate())
	values.Set("end_date", r.EndDate())
	values.Set("daily", historicalDaily)
	values.Set("timezone", "auto")

	var out weather.DailyResponse
	err := getJSON(ctx, p.httpCfg, p.archive, "historical", encode(p.archiveURL, values), &out)
	return out, err
}

func coordValues(coord weather.Coordinate) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	return values
}

// encode keeps the comma-separated variable lists readable; Open-Meteo accepts
// both escaped and literal commas.
func encode(base string, values url.Values) string {
	return fmt.Sprintf("%s?%s", base, strings.ReplaceAll(values.Encode(), "%2C", ","))
}
