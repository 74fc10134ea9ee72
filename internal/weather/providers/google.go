package providers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// GoogleGeocoder implements weather.Geocoder on the Google Geocoding API.
// The underlying client only returns the best match and does its own HTTP
// with the default client, so HTTP_TIMEOUT does not apply to it. The caller's
// context still bounds how long Geocode waits.
type GoogleGeocoder struct {
	name     string
	apiKey   string
	lookup   func(geocoder.Address) (geocoder.Location, error)
	recorder Recorder
	circuit  *gobreaker.CircuitBreaker
}

// googleClientMu serialises use of the client's package-level key.
var googleClientMu sync.Mutex

func NewGoogleGeocoder(cfg HTTPClientConfig, apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:     "google",
		apiKey:   apiKey,
		lookup:   geocoder.Geocoding,
		recorder: cfg.Recorder,
		circuit:  newBreaker("google-geocoder"),
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) ([]weather.Candidate, error) {
	if g.apiKey == "" {
		return nil, &weather.QueryFailedError{Op: "geocode", Err: errors.New("google geocoder api key is not configured")}
	}

	start := time.Now()
	loc, err := g.geocode(ctx, query)
	if g.recorder != nil {
		g.recorder.ObserveUpstream("geocode", outcome(err), time.Since(start))
	}
	if err != nil {
		return nil, &weather.QueryFailedError{Op: "geocode", Err: err}
	}
	if loc == nil {
		return nil, nil
	}

	return []weather.Candidate{{
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		DisplayName: query,
	}}, nil
}

type googleResult struct {
	loc   geocoder.Location
	empty bool
	err   error
}

// geocode runs the blocking client call through the breaker and stops
// waiting once ctx is done. A nil location with a nil error means no match.
func (g *GoogleGeocoder) geocode(ctx context.Context, query string) (*geocoder.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan googleResult, 1)
	go func() {
		// The client reads its key from a package variable and builds the
		// request URL without escaping.
		googleClientMu.Lock()
		defer googleClientMu.Unlock()
		geocoder.ApiKey = g.apiKey

		var res googleResult
		_, res.err = g.circuit.Execute(func() (interface{}, error) {
			loc, err := g.lookup(geocoder.Address{City: url.QueryEscape(query)})
			if err != nil && noResults(err) {
				// An empty answer is not an upstream failure.
				res.empty = true
				return nil, nil
			}
			res.loc = loc
			return nil, err
		})
		done <- res
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if errors.Is(res.err, gobreaker.ErrOpenState) || errors.Is(res.err, gobreaker.ErrTooManyRequests) {
			return nil, errCircuitOpen
		}
		if res.err != nil || res.empty {
			return nil, res.err
		}
		return &res.loc, nil
	}
}

// noResults reports whether err is the client's answer for ZERO_RESULTS.
func noResults(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no results found") || strings.Contains(msg, "zero_results")
}
