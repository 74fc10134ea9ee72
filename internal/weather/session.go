package weather

import (
	"context"
	"sync"
	"time"
)

// DeviceLabel is the label shown for device-reported positions.
const DeviceLabel = "Your Current Location"

// Session holds the last resolved location for one user. Only resolution
// operations write to it and the latest write wins.
type Session struct {
	ID string

	mu       sync.RWMutex
	coord    *Coordinate
	label    string
	lastSeen time.Time
}

// NewSession creates a session with no resolved location.
func NewSession(id string) *Session {
	return &Session{ID: id, lastSeen: time.Now()}
}

// Location returns the resolved coordinate and label, ok is false until the
// first successful resolution.
func (s *Session) Location() (coord Coordinate, label string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.coord == nil {
		return Coordinate{}, "", false
	}
	return *s.coord, s.label, true
}

// Touch records activity on the session.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns the time of the last recorded activity.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) set(coord Coordinate, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := coord
	s.coord = &c
	s.label = label
}

// ReportedPosition is a position reported by the browser geolocation API.
// Error carries the browser failure code when no position was obtained.
type ReportedPosition struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Error     string   `json:"error"`
}

// Locate implements DeviceLocator.
func (p ReportedPosition) Locate(ctx context.Context) (Coordinate, error) {
	switch p.Error {
	case "":
	case "permission_denied", "PERMISSION_DENIED", "1":
		return Coordinate{}, ErrPermissionDenied
	default:
		return Coordinate{}, ErrUnsupported
	}

	if p.Latitude == nil || p.Longitude == nil {
		return Coordinate{}, ErrUnsupported
	}
	return Coordinate{Latitude: *p.Latitude, Longitude: *p.Longitude}, nil
}
