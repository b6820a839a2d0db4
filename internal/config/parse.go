package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseBand parses an azimuth band "lo:hi". Either side may be empty to leave
// that bound unset; an empty string leaves both unset.
func ParseBand(s string) (lo, hi *float64, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid band %q: expected lo:hi", s)
	}

	parse := func(v string) (*float64, error) {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid band bound %q: %w", v, err)
		}
		if f < -360 || f > 360 {
			return nil, fmt.Errorf("band bound %g out of range", f)
		}
		return &f, nil
	}

	if lo, err = parse(parts[0]); err != nil {
		return nil, nil, err
	}
	if hi, err = parse(parts[1]); err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}

// ParseChannelOrder splits "band,instrument,orientation" ordering strings,
// e.g. "BHS,H,ZNE". Missing trailing parts are empty.
func ParseChannelOrder(s string) (band, instrument, orientation string, err error) {
	if strings.TrimSpace(s) == "" {
		return "", "", "", nil
	}
	parts := strings.Split(s, ",")
	if len(parts) > 3 {
		return "", "", "", fmt.Errorf("invalid channel order %q: at most three parts", s)
	}
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime accepts epoch seconds or a UTC date/time in one of the common
// layouts and returns epoch seconds.
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return float64(t.Unix()) + float64(t.Nanosecond())/1e9, nil
		}
	}
	return 0, fmt.Errorf("invalid time %q", s)
}

// OptionalTime parses s with ParseTime, returning nil for an empty string
func OptionalTime(s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
