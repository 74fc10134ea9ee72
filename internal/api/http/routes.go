package httpapi

import (
	"bytes"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/render"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// SessionCookie carries the session id between browser and service.
const SessionCookie = "weather_session"

const sessionKey = "session"

var validate = validator.New()

// SessionConfig controls the session cookie.
type SessionConfig struct {
	// TTL is the cookie lifetime; zero issues a browser-session cookie.
	TTL time.Duration
	// CrossSite marks the cookie SameSite=None; Secure so a front end on
	// another origin can send it with credentialed requests.
	CrossSite bool
}

// Handler serves the weather lookup actions.
type Handler struct {
	service  *weather.Service
	sessions *store.SessionStore
	cookie   SessionConfig
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, sessions *store.SessionStore, cookie SessionConfig) {
	h := &Handler{service: service, sessions: sessions, cookie: cookie}

	v1 := app.Group("/api/v1", h.withSession)

	v1.Get("/location", h.getLocation)
	v1.Post("/location/search", h.search)
	v1.Post("/location/device", h.device)
	v1.Get("/daterange", h.dateRange)

	v1.Get("/weather/current", h.current)
	v1.Get("/weather/forecast", h.forecast)
	v1.Get("/weather/historical", h.historical)
}

// withSession attaches the caller's stored session, if any. Requests
// without one get an empty session that is never stored.
func (h *Handler) withSession(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Cookies(SessionCookie))
	if err != nil {
		sess = weather.NewSession("")
	}
	c.Locals(sessionKey, sess)
	return c.Next()
}

// writableSession returns the caller's stored session, creating it and
// issuing the cookie when the caller has none yet.
func (h *Handler) writableSession(c *fiber.Ctx) *weather.Session {
	if sess := session(c); sess.ID != "" {
		return sess
	}

	sess := h.sessions.Create()
	cookie := &fiber.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if h.cookie.CrossSite {
		cookie.SameSite = fiber.CookieSameSiteNoneMode
		cookie.Secure = true
	}
	if h.cookie.TTL > 0 {
		cookie.Expires = time.Now().Add(h.cookie.TTL)
	} else {
		cookie.SessionOnly = true
	}
	c.Cookie(cookie)
	c.Locals(sessionKey, sess)
	return sess
}

func session(c *fiber.Ctx) *weather.Session {
	return c.Locals(sessionKey).(*weather.Session)
}

type locationResponse struct {
	weather.Coordinate
	Label string `json:"label"`
}

type lookupResponse struct {
	Location locationResponse        `json:"location"`
	Current  weather.CurrentSnapshot `json:"current"`
	Summary  render.Summary          `json:"summary"`
}

func (h *Handler) getLocation(c *fiber.Ctx) error {
	coord, label, ok := session(c).Location()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no location has been resolved yet")
	}
	return c.JSON(locationResponse{Coordinate: coord, Label: label})
}

type searchRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

func (h *Handler) search(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snap, err := h.service.Search(c.UserContext(), h.writableSession(c), req.Query)
	if err != nil {
		return lookupError(err, "An error occurred while retrieving location information.")
	}
	return c.JSON(newLookupResponse(snap))
}

func (h *Handler) device(c *fiber.Ctx) error {
	var pos weather.ReportedPosition
	if err := c.BodyParser(&pos); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(pos); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snap, err := h.service.Locate(c.UserContext(), h.writableSession(c), pos)
	if err != nil {
		return lookupError(err, "Geolocation is not supported or permission was denied.")
	}
	return c.JSON(newLookupResponse(snap))
}

func newLookupResponse(snap weather.CurrentSnapshot) lookupResponse {
	return lookupResponse{
		Location: locationResponse{Coordinate: snap.Coordinate, Label: snap.Label},
		Current:  snap,
		Summary:  render.Summarize(snap),
	}
}

func (h *Handler) dateRange(c *fiber.Ctx) error {
	preset := weather.Preset(c.Query("preset"))
	r, err := h.service.Preset(preset)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"preset": preset,
		"start":  r.StartDate(),
		"end":    r.EndDate(),
	})
}

func (h *Handler) current(c *fiber.Ctx) error {
	snap, err := h.service.Current(c.UserContext(), session(c))
	if err != nil {
		return actionError(err,
			"Please search for a location first to view the current weather.",
			"Weather information not available for this location.")
	}
	return c.JSON(fiber.Map{
		"current": snap,
		"summary": render.Summarize(snap),
	})
}

type viewQuery struct {
	Format string `validate:"omitempty,oneof=json table chart"`
}

func (h *Handler) forecast(c *fiber.Ctx) error {
	q := viewQuery{Format: c.Query("format")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	series, err := h.service.Forecast(c.UserContext(), session(c))
	if err != nil {
		return actionError(err,
			"Please search for a location first to view the 7-day forecast.",
			"An error occurred while retrieving the 7-day weather forecast.")
	}
	return renderSeries(c, q.Format, series)
}

// historical leaves date checks to the service so a missing location is
// reported before a bad range.
func (h *Handler) historical(c *fiber.Ctx) error {
	q := viewQuery{Format: c.Query("format")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	series, err := h.service.Historical(c.UserContext(), session(c), c.Query("start"), c.Query("end"))
	if err != nil {
		if errors.Is(err, weather.ErrMissingDateRange) {
			return fiber.NewError(fiber.StatusBadRequest, "Please select both the start and end dates.")
		}
		return actionError(err,
			"Please search for a location first to view historical data.",
			"An error occurred while retrieving historical weather data.")
	}
	return renderSeries(c, q.Format, series)
}

func renderSeries(c *fiber.Ctx, format string, series weather.DailySeries) error {
	switch format {
	case "table":
		html, err := render.HTMLTable(series)
		if err != nil {
			return err
		}
		c.Type("html", "utf-8")
		return c.SendString(html)
	case "chart":
		var buf bytes.Buffer
		if err := render.Chart(&buf, series); err != nil {
			return err
		}
		c.Type("png")
		return c.Send(buf.Bytes())
	default:
		return c.JSON(fiber.Map{"series": series})
	}
}
