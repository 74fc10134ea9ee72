package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

// Recorder receives one observation per upstream round trip.
type Recorder interface {
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
}

// HTTPClientConfig bundles the HTTP client and instrumentation shared by providers.
type HTTPClientConfig struct {
	Client   *http.Client
	Recorder Recorder
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

const maxErrorBody = 4 << 10

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// getJSON performs a single GET through the circuit breaker and decodes the
// body into out. There is no retry. Every failure is a *weather.QueryFailedError.
func getJSON(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, op, u string, out any) error {
	start := time.Now()
	err := doGetJSON(ctx, cfg, cb, u, out)
	if cfg.Recorder != nil {
		cfg.Recorder.ObserveUpstream(op, outcome(err), time.Since(start))
	}
	if err != nil {
		return &weather.QueryFailedError{Op: op, Err: err}
	}
	return nil
}

func doGetJSON(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, u string, out any) error {
	if cfg.Client == nil {
		return errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		// Only rate limiting and server errors count against the breaker.
		if resp.StatusCode == http.StatusTooManyRequests {
			defer resp.Body.Close()
			return nil, fmt.Errorf("%w%s", errRateLimited, upstreamReason(resp.Body))
		}
		if resp.StatusCode >= 500 {
			defer resp.Body.Close()
			return nil, fmt.Errorf("%w: %d%s", errServerError, resp.StatusCode, upstreamReason(resp.Body))
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d%s", errUnexpected, resp.StatusCode, upstreamReason(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// upstreamReason extracts the Open-Meteo style {"error":true,"reason":"..."} message.
func upstreamReason(body io.Reader) string {
	var payload struct {
		Reason string `json:"reason"`
	}
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Reason == "" {
		return ""
	}
	return ": " + payload.Reason
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
