package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/weather-lookup/internal/metrics"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

type stubGeocoder struct {
	candidates []weather.Candidate
	err        error
}

func (g *stubGeocoder) Name() string { return "stub" }

func (g *stubGeocoder) Geocode(ctx context.Context, query string) ([]weather.Candidate, error) {
	return g.candidates, g.err
}

type stubQuerier struct {
	mu     sync.Mutex
	calls  []string
	coords []weather.Coordinate
	err    error
}

func (q *stubQuerier) record(op string, c weather.Coordinate) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = append(q.calls, op)
	q.coords = append(q.coords, c)
}

func (q *stubQuerier) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}

func fp(v float64) *float64 { return &v }

func (q *stubQuerier) FetchCurrent(ctx context.Context, c weather.Coordinate) (weather.CurrentResponse, error) {
	q.record("current", c)
	code := 0
	return weather.CurrentResponse{CurrentWeather: &weather.CurrentWeather{
		Temperature: fp(21.4), WindSpeed: fp(11.2), WindDirection: fp(250), WeatherCode: &code,
	}}, q.err
}

func (q *stubQuerier) FetchForecast(ctx context.Context, c weather.Coordinate) (weather.DailyResponse, error) {
	q.record("forecast", c)
	return weather.DailyResponse{Daily: &weather.DailyBlock{
		Time:           []string{"2024-06-10", "2024-06-11"},
		TemperatureMax: []*float64{fp(24.1), fp(25)},
		TemperatureMin: []*float64{fp(13), nil},
		UVIndexMax:     []*float64{fp(6.1), fp(6.45)},
		Sunrise:        []string{"2024-06-10T05:46", "2024-06-11T05:46"},
		Sunset:         []string{"2024-06-10T21:55", "2024-06-11T21:56"},
	}}, q.err
}

func (q *stubQuerier) FetchHistorical(ctx context.Context, c weather.Coordinate, r weather.DateRange) (weather.DailyResponse, error) {
	q.record("historical", c)
	return weather.DailyResponse{Daily: &weather.DailyBlock{
		Time:             []string{r.StartDate()},
		TemperatureMax:   []*float64{fp(18.2)},
		TemperatureMin:   []*float64{fp(9.1)},
		TemperatureMean:  []*float64{fp(13.5)},
		PrecipitationSum: []*float64{fp(0)},
		Sunrise:          []string{r.StartDate() + "T06:25"},
		Sunset:           []string{r.StartDate() + "T21:10"},
	}}, q.err
}

type testEnv struct {
	app      *fiber.App
	querier  *stubQuerier
	geo      *stubGeocoder
	sessions *store.SessionStore
	cookie   *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	geo := &stubGeocoder{candidates: []weather.Candidate{
		{Latitude: 48.8566, Longitude: 2.3522, DisplayName: "Paris, France"},
		{Latitude: 33.6609, Longitude: -95.5555, DisplayName: "Paris, Texas"},
	}}
	q := &stubQuerier{}
	now := func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) }
	svc := weather.NewService(geo, q, weather.WithClock(now))

	sessions := store.NewSessionStore(time.Hour)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, svc, sessions, SessionConfig{TTL: time.Hour})
	return &testEnv{app: app, querier: q, geo: geo, sessions: sessions}
}

// do sends a request carrying the session cookie from earlier responses.
func (e *testEnv) do(t *testing.T, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			e.cookie = c
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decode(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func TestSearchThenForecast(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"paris"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status %d: %s", resp.StatusCode, body)
	}
	if env.cookie == nil {
		t.Fatalf("expected a session cookie")
	}
	var lookup struct {
		Location struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Label     string  `json:"label"`
		} `json:"location"`
		Summary struct {
			Temperature string `json:"temperature"`
			Description string `json:"description"`
		} `json:"summary"`
	}
	decode(t, body, &lookup)
	if lookup.Location.Label != "Paris" || lookup.Location.Latitude != 48.8566 {
		t.Errorf("unexpected location %+v", lookup.Location)
	}
	if lookup.Summary.Temperature != "21.4°C" || !strings.HasPrefix(lookup.Summary.Description, "Clear sky") {
		t.Errorf("unexpected summary %+v", lookup.Summary)
	}

	resp, body = env.do(t, http.MethodGet, "/api/v1/weather/forecast", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forecast status %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Series weather.DailySeries `json:"series"`
	}
	decode(t, body, &out)
	if out.Series.Title != weather.ForecastTitle || len(out.Series.Categories) != 2 {
		t.Errorf("unexpected series %+v", out.Series)
	}
	if out.Series.Categories[0] != "6/10/2024" || out.Series.TemperatureMin[1] != nil {
		t.Errorf("unexpected series values %+v", out.Series)
	}

	last := env.querier.coords[len(env.querier.coords)-1]
	if last != (weather.Coordinate{Latitude: 48.8566, Longitude: 2.3522}) {
		t.Errorf("forecast used %v", last)
	}

	resp, body = env.do(t, http.MethodGet, "/api/v1/location", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"label":"Paris"`) {
		t.Errorf("location status %d: %s", resp.StatusCode, body)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"paris"}`)

	other := &testEnv{app: env.app, querier: env.querier}
	resp, _ := other.do(t, http.MethodGet, "/api/v1/location", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a fresh session, got %d", resp.StatusCode)
	}
}

func TestActionsRequireLocation(t *testing.T) {
	for _, target := range []string{
		"/api/v1/weather/current",
		"/api/v1/weather/forecast",
		"/api/v1/weather/historical?start=2024-05-04&end=2024-06-04",
	} {
		t.Run(target, func(t *testing.T) {
			env := newTestEnv(t)
			resp, body := env.do(t, http.MethodGet, target, "")
			if resp.StatusCode != http.StatusConflict {
				t.Fatalf("expected 409, got %d: %s", resp.StatusCode, body)
			}
			if !strings.Contains(string(body), "Please search for a location first") {
				t.Errorf("unexpected message %s", body)
			}
			if env.querier.callCount() != 0 {
				t.Errorf("expected no upstream calls, got %v", env.querier.calls)
			}
		})
	}
}

func TestHistoricalRequiresDates(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"paris"}`)
	calls := env.querier.callCount()

	resp, body := env.do(t, http.MethodGet, "/api/v1/weather/historical?start=&end=2024-06-04", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Please select both the start and end dates.") {
		t.Errorf("unexpected message %s", body)
	}
	if env.querier.callCount() != calls {
		t.Errorf("expected no upstream call")
	}
}

func TestHistoricalFormats(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"paris"}`)

	resp, body := env.do(t, http.MethodGet, "/api/v1/weather/historical?start=2024-05-04&end=2024-06-04&format=table", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("table status %d: %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(body), "Historical Weather Data from 2024-05-04 to 2024-06-04") ||
		!strings.Contains(string(body), "<th>Precipitation Sum</th>") {
		t.Errorf("unexpected table %s", body)
	}

	resp, body = env.do(t, http.MethodGet, "/api/v1/weather/historical?start=2024-05-04&end=2024-06-04&format=chart", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("chart status %d type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(string(body), "\x89PNG") {
		t.Errorf("chart is not a PNG")
	}
}

func TestRequestValidation(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"paris"}`)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"empty query", http.MethodPost, "/api/v1/location/search", `{"query":""}`},
		{"bad body", http.MethodPost, "/api/v1/location/search", `{"query":`},
		{"unknown format", http.MethodGet, "/api/v1/weather/forecast?format=csv", ""},
		{"bad start", http.MethodGet, "/api/v1/weather/historical?start=05/04/2024&end=2024-06-04", ""},
		{"reversed range", http.MethodGet, "/api/v1/weather/historical?start=2024-06-04&end=2024-05-04", ""},
		{"invalid preset", http.MethodGet, "/api/v1/daterange?preset=week", ""},
		{"latitude out of range", http.MethodPost, "/api/v1/location/device", `{"latitude":91,"longitude":2}`},
		{"device unsupported", http.MethodPost, "/api/v1/location/device", `{"error":"position_unavailable"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, tt.method, tt.target, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
			var e struct {
				Error   bool   `json:"error"`
				Message string `json:"message"`
			}
			decode(t, body, &e)
			if !e.Error || e.Message == "" {
				t.Errorf("unexpected error body %s", body)
			}
		})
	}
}

func TestDateRangePreset(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/v1/daterange?preset=month", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var r struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	decode(t, body, &r)
	if r.Start != "2024-05-04" || r.End != "2024-06-04" {
		t.Errorf("unexpected range %+v", r)
	}
}

func TestDeviceLocation(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/location/device", `{"error":"permission_denied"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodPost, "/api/v1/location/device", `{"latitude":51.5072,"longitude":-0.1276}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"label":"`+weather.DeviceLabel+`"`) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestSearchErrors(t *testing.T) {
	env := newTestEnv(t)
	env.geo.candidates = nil

	resp, _ := env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"atlantis"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	env.geo.err = &weather.QueryFailedError{Op: "geocode", Err: errors.New("boom")}
	resp, body := env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"paris"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "An error occurred while retrieving location information.") {
		t.Errorf("unexpected body %s", body)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector("test", reg)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Metrics(collector))
	app.Get("/metrics", MetricsHandler(reg))
	svc := weather.NewService(&stubGeocoder{}, &stubQuerier{})
	RegisterRoutes(app, svc, store.NewSessionStore(time.Hour), SessionConfig{TTL: time.Hour})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/weather/current", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `test_api_requests_total{method="GET",route="/api/v1/weather/current",status="409"} 1`) {
		t.Errorf("request not recorded:\n%s", body)
	}
}

func TestReadsDoNotCreateSessions(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 100; i++ {
		env.cookie = nil
		env.do(t, http.MethodGet, "/api/v1/daterange?preset=month", "")
		env.do(t, http.MethodGet, "/api/v1/weather/forecast", "")
		env.do(t, http.MethodGet, "/api/v1/location", "")
	}
	if env.sessions.Len() != 0 {
		t.Fatalf("expected no stored sessions, got %d", env.sessions.Len())
	}
	if env.cookie != nil {
		t.Fatalf("reads must not issue a session cookie")
	}

	env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"paris"}`)
	if env.sessions.Len() != 1 || env.cookie == nil {
		t.Fatalf("search should create one session, got %d", env.sessions.Len())
	}
	first := env.cookie.Value
	env.do(t, http.MethodPost, "/api/v1/location/search", `{"query":"berlin"}`)
	if env.sessions.Len() != 1 || env.cookie.Value != first {
		t.Fatalf("second search should reuse the session")
	}
}

func TestHistoricalChecksLocationBeforeDates(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/v1/weather/historical?start=05/04/2024&end=2024-06-04", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, body)
	}
}

func TestCrossSiteSession(t *testing.T) {
	geo := &stubGeocoder{candidates: []weather.Candidate{{Latitude: 48.8566, Longitude: 2.3522}}}
	q := &stubQuerier{}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(CORS("https://weather.example.com"))
	RegisterRoutes(app, weather.NewService(geo, q), store.NewSessionStore(time.Hour), SessionConfig{TTL: time.Hour, CrossSite: true})

	preflight := httptest.NewRequest(http.MethodOptions, "/api/v1/location/search", nil)
	preflight.Header.Set("Origin", "https://weather.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(preflight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "https://weather.example.com" {
		t.Errorf("allow origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("credentials not allowed on preflight")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/location/search", strings.NewReader(`{"query":"paris"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://weather.example.com")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("credentials not allowed on the actual request")
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("expected a session cookie")
	}
	if cookie.SameSite != http.SameSiteNoneMode || !cookie.Secure {
		t.Errorf("cross-site cookie must be SameSite=None; Secure, got %+v", cookie)
	}

	forecast := httptest.NewRequest(http.MethodGet, "/api/v1/weather/forecast", nil)
	forecast.Header.Set("Origin", "https://weather.example.com")
	forecast.AddCookie(cookie)
	resp, err = app.Test(forecast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forecast with the session cookie: expected 200, got %d", resp.StatusCode)
	}
}
