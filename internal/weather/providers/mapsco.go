package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

const DefaultGeocodeBaseURL = "https://geocode.maps.co"

// MapsCoGeocoder implements weather.Geocoder for geocode.maps.co.
type MapsCoGeocoder struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewMapsCoGeocoder creates a geocoder. apiKey may be empty for keyless deployments.
func NewMapsCoGeocoder(cfg HTTPClientConfig, baseURL, apiKey string) *MapsCoGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodeBaseURL
	}
	return &MapsCoGeocoder{
		name:    "mapsco",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/") + "/search",
		httpCfg: cfg,
		circuit: newBreaker("mapsco"),
	}
}

func (g *MapsCoGeocoder) Name() string {
	return g.name
}

// Geocode returns candidates in the order the service ranked them.
func (g *MapsCoGeocoder) Geocode(ctx context.Context, query string) ([]weather.Candidate, error) {
	values := url.Values{}
	values.Set("q", query)
	if g.apiKey != "" {
		values.Set("api_key", g.apiKey)
	}

	var payload []struct {
		Lat         json.RawMessage `json:"lat"`
		Lon         json.RawMessage `json:"lon"`
		DisplayName string          `json:"display_name"`
	}
	u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
	if err := getJSON(ctx, g.httpCfg, g.circuit, "geocode", u, &payload); err != nil {
		return nil, err
	}

	// The first entry is the match; later entries are extras and are
	// dropped when they do not carry usable coordinates.
	candidates := make([]weather.Candidate, 0, len(payload))
	for i, item := range payload {
		lat, err := numeric(item.Lat)
		if err != nil {
			if i == 0 {
				return nil, &weather.MalformedResponseError{Field: "[0].lat", Reason: err.Error()}
			}
			continue
		}
		lon, err := numeric(item.Lon)
		if err != nil {
			if i == 0 {
				return nil, &weather.MalformedResponseError{Field: "[0].lon", Reason: err.Error()}
			}
			continue
		}
		candidates = append(candidates, weather.Candidate{
			Latitude:    lat,
			Longitude:   lon,
			DisplayName: item.DisplayName,
		})
	}
	return candidates, nil
}

// numeric accepts both "48.85" and 48.85.
func numeric(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("missing")
	}

	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", string(raw))
	}
	return v, nil
}
