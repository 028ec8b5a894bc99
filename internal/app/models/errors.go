package models

import (
	"context"
	"errors"
)

// Domain specific errors.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
)

// Recoverable failures of the map and export pipelines. None of them is fatal:
// handlers turn them into a message for the user.
var (
	ErrDependencyLoad       = errors.New("map base library unavailable")
	ErrRenderSurfaceMissing = errors.New("map container missing at render time")
	ErrCaptureFailure       = errors.New("document capture failed")
	ErrDataFetch            = errors.New("data fetch failed")
)

// UserMessage maps an error to the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDependencyLoad):
		return "The map could not be loaded. Please try again later."
	case errors.Is(err, ErrRenderSurfaceMissing):
		return "Map container not found."
	case errors.Is(err, ErrCaptureFailure):
		return "Failed to generate PDF. Please try again."
	case errors.Is(err, ErrDataFetch):
		return "Could not fetch data. Showing the last known information."
	case errors.Is(err, ErrNotFound):
		return "Itinerary not found."
	case errors.Is(err, ErrForbidden):
		return "You do not have access to this itinerary."
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return "The request is invalid: " + err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled."
	default:
		return "Something went wrong. Please try again."
	}
}
