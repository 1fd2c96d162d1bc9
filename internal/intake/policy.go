package intake

import (
	"mime"
	"slices"
	"strings"
)

// DefaultAllowedTypes is the reference allow-list: two image formats and
// one medical imaging container.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "application/dicom"}

// DefaultMaxBytes is the reference upload ceiling (10 MiB).
const DefaultMaxBytes int64 = 10 << 20

// Policy is the artifact acceptance rule shared by the upload path and the
// object-created listener.
type Policy struct {
	AllowedTypes []string
	MaxBytes     int64
}

// DefaultPolicy returns the reference policy.
func DefaultPolicy() Policy {
	return Policy{AllowedTypes: DefaultAllowedTypes, MaxBytes: DefaultMaxBytes}
}

// Check validates an artifact's declared type and size. A size equal to
// MaxBytes is accepted.
func (p Policy) Check(contentType string, size int64) error {
	if !p.Allows(contentType) {
		return ErrUnsupportedType
	}
	if size > p.MaxBytes {
		return ErrFileTooLarge
	}
	return nil
}

// Allows reports whether contentType, ignoring parameters and case, is on
// the allow-list.
func (p Policy) Allows(contentType string) bool {
	return slices.Contains(p.AllowedTypes, normalizeType(contentType))
}

func normalizeType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
