package cache

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseCapacity reads a capacity from a config value. Bare numbers are byte
// counts; strings may carry a unit ("128MiB", "64 MB").
func ParseCapacity(v any) (int64, error) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		n = clampUint(uint64(t))
	case uint32:
		n = int64(t)
	case uint64:
		n = clampUint(t)
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("%w: capacity %v is not a whole number", ErrConfiguration, t)
		}
		n = int64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, fmt.Errorf("%w: empty capacity", ErrConfiguration)
		}
		b, err := humanize.ParseBytes(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		n = clampUint(b)
	default:
		return 0, fmt.Errorf("%w: unsupported capacity type %T", ErrConfiguration, v)
	}

	if n <= 0 {
		return 0, fmt.Errorf("%w: capacity must be positive, got %d", ErrConfiguration, n)
	}
	return n, nil
}

// FormatCapacity renders a capacity in IEC units.
func FormatCapacity(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}
