package weather

import (
	"context"
)

// Candidate is one geocoding match.
type Candidate struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName,omitempty"`
}

// Geocoder turns free text into candidate locations, best match first.
// An empty result with a nil error means nothing matched.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) ([]Candidate, error)
}

// DeviceLocator reports the position of the user's device once.
type DeviceLocator interface {
	Locate(ctx context.Context) (Coordinate, error)
}

// Querier abstracts the weather API (Open-Meteo forecast and archive endpoints).
type Querier interface {
	FetchCurrent(ctx context.Context, coord Coordinate) (CurrentResponse, error)
	FetchForecast(ctx context.Context, coord Coordinate) (DailyResponse, error)
	FetchHistorical(ctx context.Context, coord Coordinate, r DateRange) (DailyResponse, error)
}
