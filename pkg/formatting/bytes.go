// Package formatting converts byte sizes between counts and the human-readable
// strings used in configuration files ("10MiB", "512KB").
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var units = []string{
	"B", "KB", "MB",
	"GB", "TB", "PB",
	"EB",
}

var bytesPattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// FormatBytes renders n with base-1024 IEC units ("10.0 MiB").
// Negative precision values are clamped to zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}

	if precision < 0 {
		precision = 0
	}

	f := float64(n)
	i := int(math.Floor(math.Log(f) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}

	size := f / math.Pow(1024, float64(i))
	formatted := strconv.FormatFloat(size, 'f', precision, 64)

	if i == 0 {
		return formatted + " B"
	}
	return formatted + " " + iec(units[i])
}

// ParseBytes parses sizes such as "10MiB", "10MB", or "10485760" into a byte count.
// SI-looking and IEC suffixes are both treated as base-1024, matching how upload
// ceilings are written in config. A bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := bytesPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := normalizeUnit(matches[2])
	if unit == "" {
		return int64(value), nil
	}

	idx := slices.Index(units, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", matches[2])
	}

	return int64(value * math.Pow(1024, float64(idx))), nil
}

// normalizeUnit maps "MiB", "mb", "M" and friends onto the units table.
func normalizeUnit(u string) string {
	u = strings.ToUpper(u)
	u = strings.Replace(u, "IB", "B", 1)
	if len(u) == 1 && u != "B" {
		u += "B"
	}
	return u
}

func iec(unit string) string {
	return unit[:1] + "iB"
}
