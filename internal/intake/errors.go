package intake

import (
	"errors"
	"net/http"
)

// Rejection reasons. The error text is the machine-readable code returned to
// clients and recorded in error JobDocuments.
var (
	ErrMissingImage       = errors.New("missing_image")
	ErrMissingFilename    = errors.New("missing_filename")
	ErrMissingContentType = errors.New("missing_content_type")
	ErrUnsupportedType    = errors.New("unsupported_content_type")
	ErrFileTooLarge       = errors.New("file_too_large")
	ErrInvalidRequest     = errors.New("invalid_request")
)

// IsRejection reports whether err is a client input rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingImage) ||
		errors.Is(err, ErrMissingFilename) ||
		errors.Is(err, ErrMissingContentType) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrInvalidRequest)
}

// MapHTTPStatus maps intake errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if IsRejection(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
