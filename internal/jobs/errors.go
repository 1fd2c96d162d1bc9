package jobs

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates no document exists for the job.
	ErrNotFound = errors.New("not_found")
	// ErrMalformed indicates a stored document could not be decoded.
	ErrMalformed = errors.New("malformed document")
)

// MapHTTPStatus maps job store errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
