package weather

import (
	"fmt"
	"time"
)

// Coordinate is a latitude/longitude pair identifying a query location.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%g,%g", c.Latitude, c.Longitude)
}

// Preset names a shortcut that fills a historical date range.
type Preset string

const (
	PresetMonth Preset = "month"
	PresetYear  Preset = "year"
)

// DateRange is a closed range of calendar dates. Start and End are UTC midnights.
type DateRange struct {
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// StartDate returns Start in the 2006-01-02 form used by the archive API.
func (r DateRange) StartDate() string {
	return r.Start.Format(DateLayout)
}

// EndDate returns End in the 2006-01-02 form used by the archive API.
func (r DateRange) EndDate() string {
	return r.End.Format(DateLayout)
}

// CurrentSnapshot is a single point-in-time reading for a resolved location.
type CurrentSnapshot struct {
	Label         string     `json:"label"`
	Coordinate    Coordinate `json:"coordinate"`
	Temperature   float64    `json:"temperatureC"`
	WindSpeed     float64    `json:"windSpeed"`
	WindDirection float64    `json:"windDirection"`
	WeatherCode   *int       `json:"weatherCode,omitempty"`
	Description   string     `json:"description,omitempty"`
	Time          string     `json:"time,omitempty"`
}

// DailySeries holds index-aligned per-day arrays. Every non-nil slice has
// the same length as Dates.
type DailySeries struct {
	Title      string   `json:"title"`
	Dates      []string `json:"dates"`
	Categories []string `json:"categories"`

	TemperatureMax   []*float64 `json:"temperatureMax,omitempty"`
	TemperatureMin   []*float64 `json:"temperatureMin,omitempty"`
	TemperatureMean  []*float64 `json:"temperatureMean,omitempty"`
	UVIndexMax       []*float64 `json:"uvIndexMax,omitempty"`
	PrecipitationSum []*float64 `json:"precipitationSum,omitempty"`
	Sunrise          []string   `json:"sunrise,omitempty"`
	Sunset           []string   `json:"sunset,omitempty"`
}

// Len returns the number of days in the series.
func (s DailySeries) Len() int {
	return len(s.Dates)
}

// CurrentWeather is the current_weather block of an Open-Meteo forecast response.
type CurrentWeather struct {
	Time          string   `json:"time"`
	Temperature   *float64 `json:"temperature"`
	WindSpeed     *float64 `json:"windspeed"`
	WindDirection *float64 `json:"winddirection"`
	WeatherCode   *int     `json:"weathercode"`
}

// HourlyBlock is the hourly block of a current-weather response.
type HourlyBlock struct {
	Time             []string   `json:"time"`
	Temperature      []*float64 `json:"temperature_2m"`
	RelativeHumidity []*float64 `json:"relativehumidity_2m"`
	WindSpeed        []*float64 `json:"windspeed_10m"`
}

// DailyBlock is the daily block of forecast and archive responses. A nil
// slice means the field was absent from the response.
type DailyBlock struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	TemperatureMean  []*float64 `json:"temperature_2m_mean"`
	UVIndexMax       []*float64 `json:"uv_index_max"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	Sunrise          []string   `json:"sunrise"`
	Sunset           []string   `json:"sunset"`
}

// CurrentResponse is the raw current+hourly response.
type CurrentResponse struct {
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Timezone       string          `json:"timezone"`
	CurrentWeather *CurrentWeather `json:"current_weather"`
	Hourly         *HourlyBlock    `json:"hourly"`
}

// DailyResponse is the raw 7-day forecast or historical archive response.
type DailyResponse struct {
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Timezone       string          `json:"timezone"`
	CurrentWeather *CurrentWeather `json:"current_weather"`
	Daily          *DailyBlock     `json:"daily"`

	// Range is the requested range for archive responses; zero for forecasts.
	Range DateRange `json:"-"`
}
