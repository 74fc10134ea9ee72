package httpapi

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, weather.ErrNoLocation):
		return fiber.StatusConflict
	case errors.Is(err, weather.ErrUnsupported),
		errors.Is(err, weather.ErrEmptyQuery),
		errors.Is(err, weather.ErrMissingDateRange),
		errors.Is(err, weather.ErrInvalidDateRange),
		errors.Is(err, weather.ErrInvalidPreset):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrQueryFailed), errors.Is(err, weather.ErrMalformedResponse):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// lookupError reports a failed resolution. Client errors keep their own
// message; upstream failures get the user-facing fallback.
func lookupError(err error, fallback string) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("ERROR: location lookup failed: %v", err)
		return fiber.NewError(status, fallback)
	}
	log.Printf("INFO: location lookup rejected: %v", err)
	if errors.Is(err, weather.ErrPermissionDenied) || errors.Is(err, weather.ErrUnsupported) {
		return fiber.NewError(status, fallback)
	}
	return fiber.NewError(status, err.Error())
}

// actionError reports a failed weather action.
func actionError(err error, noLocation, fallback string) error {
	status := statusFor(err)
	switch {
	case errors.Is(err, weather.ErrNoLocation):
		return fiber.NewError(status, noLocation)
	case status >= fiber.StatusInternalServerError:
		return fiber.NewError(status, fallback)
	default:
		return fiber.NewError(status, err.Error())
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.Printf("ERROR: unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
