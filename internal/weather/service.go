package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/common"
)

// Service orchestrates location resolution, weather queries and projection.
type Service struct {
	geocoder Geocoder
	querier  Querier
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for date presets.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service.
func NewService(geocoder Geocoder, querier Querier, opts ...Option) *Service {
	s := &Service{
		geocoder: geocoder,
		querier:  querier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveByName geocodes query and stores the first candidate in the session.
// The session is left untouched on any failure.
func (s *Service) ResolveByName(ctx context.Context, sess *Session, query string) (Coordinate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Coordinate{}, ErrEmptyQuery
	}

	log.Printf("DEBUG: geocoding %q via %s", query, s.geocoder.Name())
	candidates, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		return Coordinate{}, err
	}
	if len(candidates) == 0 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	first := candidates[0]
	coord := Coordinate{Latitude: first.Latitude, Longitude: first.Longitude}
	sess.set(coord, common.TitleWords(query))
	return coord, nil
}

// ResolveByDevice stores the device position in the session.
func (s *Service) ResolveByDevice(ctx context.Context, sess *Session, locator DeviceLocator) (Coordinate, error) {
	coord, err := locator.Locate(ctx)
	if err != nil {
		return Coordinate{}, err
	}
	sess.set(coord, DeviceLabel)
	return coord, nil
}

// Search resolves query and fetches current weather for the resolved place.
// The session keeps the new location even if the weather fetch fails.
func (s *Service) Search(ctx context.Context, sess *Session, query string) (CurrentSnapshot, error) {
	coord, err := s.ResolveByName(ctx, sess, query)
	if err != nil {
		return CurrentSnapshot{}, err
	}
	return s.current(ctx, coord, common.TitleWords(strings.TrimSpace(query)))
}

// Locate resolves the device position and fetches current weather for it.
func (s *Service) Locate(ctx context.Context, sess *Session, locator DeviceLocator) (CurrentSnapshot, error) {
	coord, err := s.ResolveByDevice(ctx, sess, locator)
	if err != nil {
		return CurrentSnapshot{}, err
	}
	return s.current(ctx, coord, DeviceLabel)
}

// Preset computes the named date range against the service clock.
func (s *Service) Preset(preset Preset) (DateRange, error) {
	return ComputeRange(preset, s.now())
}

// Current fetches and projects current weather for the session location.
func (s *Service) Current(ctx context.Context, sess *Session) (CurrentSnapshot, error) {
	coord, label, ok := sess.Location()
	if !ok {
		return CurrentSnapshot{}, ErrNoLocation
	}
	return s.current(ctx, coord, label)
}

// Forecast fetches and projects the 7-day forecast for the session location.
func (s *Service) Forecast(ctx context.Context, sess *Session) (DailySeries, error) {
	coord, _, ok := sess.Location()
	if !ok {
		return DailySeries{}, ErrNoLocation
	}

	raw, err := s.querier.FetchForecast(ctx, coord)
	if err != nil {
		return DailySeries{}, s.logFailure("forecast", coord, err)
	}
	series, err := ProjectForecast(raw)
	if err != nil {
		return DailySeries{}, s.logFailure("forecast", coord, err)
	}
	return series, nil
}

// Historical fetches and projects the archive for the session location
// between the given 2006-01-02 dates.
func (s *Service) Historical(ctx context.Context, sess *Session, start, end string) (DailySeries, error) {
	coord, _, ok := sess.Location()
	if !ok {
		return DailySeries{}, ErrNoLocation
	}

	r, err := ParseDateRange(start, end)
	if err != nil {
		return DailySeries{}, err
	}

	raw, err := s.querier.FetchHistorical(ctx, coord, r)
	if err != nil {
		return DailySeries{}, s.logFailure("historical", coord, err)
	}
	raw.Range = r

	series, err := ProjectHistorical(raw)
	if err != nil {
		return DailySeries{}, s.logFailure("historical", coord, err)
	}
	return series, nil
}

func (s *Service) current(ctx context.Context, coord Coordinate, label string) (CurrentSnapshot, error) {
	raw, err := s.querier.FetchCurrent(ctx, coord)
	if err != nil {
		return CurrentSnapshot{}, s.logFailure("current", coord, err)
	}
	snap, err := ProjectCurrent(raw, coord, label)
	if err != nil {
		return CurrentSnapshot{}, s.logFailure("current", coord, err)
	}
	return snap, nil
}

func (s *Service) logFailure(op string, coord Coordinate, err error) error {
	switch {
	case errors.Is(err, ErrMalformedResponse):
		log.Printf("ERROR: %s response for %s is malformed: %v", op, coord, err)
	case errors.Is(err, context.Canceled):
		log.Printf("INFO: %s request for %s canceled", op, coord)
	default:
		log.Printf("ERROR: %s request for %s failed: %v", op, coord, err)
	}
	return err
}
