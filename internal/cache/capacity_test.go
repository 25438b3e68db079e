package cache

import (
	"errors"
	"testing"
)

func TestParseCapacity(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"bare int", 1024, 1024},
		{"int64", int64(10), 10},
		{"uint64", uint64(7), 7},
		{"yaml float", float64(2048), 2048},
		{"iec string", "128MiB", 128 * 1024 * 1024},
		{"si string", "64 MB", 64 * 1000 * 1000},
		{"plain string", "4096", 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCapacity(tt.in)
			if err != nil {
				t.Fatalf("ParseCapacity(%v) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseCapacity(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCapacity_Invalid(t *testing.T) {
	for _, in := range []any{0, -5, 1.5, "", "lots", true, nil} {
		if _, err := ParseCapacity(in); !errors.Is(err, ErrConfiguration) {
			t.Errorf("ParseCapacity(%v): expected ErrConfiguration, got %v", in, err)
		}
	}
}

func TestFormatCapacity(t *testing.T) {
	if got := FormatCapacity(DefaultCapacity); got != "128 MiB" {
		t.Errorf("FormatCapacity = %q, want %q", got, "128 MiB")
	}
}
