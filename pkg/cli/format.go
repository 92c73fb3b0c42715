package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
)

// FormatDuration formats a duration to a short human readable string
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		if d < time.Millisecond {
			return d.String()
		}
		return fmt.Sprintf("%dms", ms)
	}
	secs := float64(ms) / 1000
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	secs = secs - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatBytes formats a byte count using IEC units (KiB, MiB, ...)
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// ParseBytes parses sizes such as "4096", "64KiB" or "1 MB"
func ParseBytes(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int64(n), nil
}

// Size is a byte count written as a human readable string in flags and
// YAML files. It implements pflag.Value.
type Size int64

// String returns the size in IEC units.
func (s Size) String() string {
	return FormatBytes(int64(s))
}

// Set parses v into s.
func (s *Size) Set(v string) error {
	n, err := ParseBytes(v)
	if err != nil {
		return err
	}
	*s = Size(n)
	return nil
}

// Type names the flag value type in help output.
func (s *Size) Type() string {
	return "size"
}

// MarshalYAML writes the size in the largest IEC unit that divides it
// exactly, so the value survives a round trip.
func (s Size) MarshalYAML() (any, error) {
	if s <= 0 {
		return int64(s), nil
	}
	n := int64(s)
	for _, unit := range []string{"B", "KiB", "MiB", "GiB", "TiB"} {
		if n%1024 != 0 || unit == "TiB" {
			if unit == "B" {
				return n, nil
			}
			return fmt.Sprintf("%d%s", n, unit), nil
		}
		n /= 1024
	}
	return int64(s), nil
}

// UnmarshalYAML accepts both plain integers and size strings.
func (s *Size) UnmarshalYAML(data []byte) error {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		return s.Set(v)
	case uint64:
		*s = Size(v)
	case int64:
		*s = Size(v)
	case int:
		*s = Size(v)
	default:
		return fmt.Errorf("invalid size %v", v)
	}
	if *s < 0 {
		return fmt.Errorf("invalid size %d", *s)
	}
	return nil
}
