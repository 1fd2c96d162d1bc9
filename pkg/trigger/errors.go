package trigger

import (
	"errors"
	"net/http"
)

var (
	// ErrUnknownTarget indicates no handler is registered for the target.
	ErrUnknownTarget = errors.New("unknown trigger target")
	// ErrQueueFull indicates the local queue cannot accept more invocations.
	ErrQueueFull = errors.New("trigger queue full")
	// ErrUnexpectedStatus indicates a remote invoke endpoint refused the invocation.
	ErrUnexpectedStatus = errors.New("unexpected invoke status")
)

// MapHTTPStatus maps trigger errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownTarget):
		return http.StatusNotFound
	case errors.Is(err, ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
