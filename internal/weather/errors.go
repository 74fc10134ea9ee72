package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when geocoding yields no candidates.
	ErrNotFound = errors.New("location not found")
	// ErrEmptyQuery is returned when a place search has no text.
	ErrEmptyQuery = errors.New("location query is empty")
	// ErrPermissionDenied is returned when the device refused to share its position.
	ErrPermissionDenied = errors.New("geolocation permission denied")
	// ErrUnsupported is returned when the device cannot report a position.
	ErrUnsupported = errors.New("geolocation is not supported")
	// ErrNoLocation is returned when a weather query runs before any location was resolved.
	ErrNoLocation = errors.New("no location resolved")
	// ErrMissingDateRange is returned when a historical query lacks a start or end date.
	ErrMissingDateRange = errors.New("start and end dates are required")
	// ErrInvalidDateRange is returned for unparsable dates or start after end.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrInvalidPreset is returned for date-range presets other than month and year.
	ErrInvalidPreset = errors.New("invalid date range preset")
	// ErrQueryFailed matches every *QueryFailedError.
	ErrQueryFailed = errors.New("weather query failed")
	// ErrMalformedResponse matches every *MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed response")
)

// QueryFailedError reports a transport, status or decode failure of an upstream call.
type QueryFailedError struct {
	Op  string
	Err error
}

func (e *QueryFailedError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Op, e.Err)
}

func (e *QueryFailedError) Unwrap() error { return e.Err }

func (e *QueryFailedError) Is(target error) bool { return target == ErrQueryFailed }

// MalformedResponseError reports an upstream response that does not match the expected shape.
type MalformedResponseError struct {
	Field  string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %s: %s", e.Field, e.Reason)
}

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

func missingField(field string) error {
	return &MalformedResponseError{Field: field, Reason: "missing"}
}
