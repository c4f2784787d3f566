package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ParseDuration parses a duration string with support for days (d)
// Supports: s (seconds), m (minutes), h (hours), d (days)
// Examples: "10m", "2h", "1d", "30s"
func ParseDuration(s string) (time.Duration, error) {
	// Pattern to match number followed by unit
	pattern := regexp.MustCompile(`^(\d+)([smhd])$`)
	matches := pattern.FindStringSubmatch(s)

	if matches == nil {
		// Fall back to standard Go duration parsing
		return time.ParseDuration(s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}

	unit := matches[2]

	switch unit {
	case "s":
		return time.Duration(value) * time.Second, nil
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}
}

// ParseExpire parses the user-facing expiry value: a duration string, a bare
// number of seconds, or "none" for a silence that never expires on its own.
func ParseExpire(s string) (ttl time.Duration, indefinite bool, err error) {
	if s == "none" {
		return 0, true, nil
	}

	// A bare number is whole seconds, for compatibility with older tooling.
	if secs, convErr := strconv.Atoi(s); convErr == nil {
		return time.Duration(secs) * time.Second, false, nil
	}

	ttl, err = ParseDuration(s)
	if err != nil {
		return 0, false, fmt.Errorf("invalid expire value %q: %w", s, err)
	}
	return ttl, false, nil
}
