// Package util holds small helpers shared by the sfh commands.
package util

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses duration strings with the extra day and week units.
// Supports 250ms, 30s, 5m, 1h, 1d, 1w and compound Go durations (1h30m).
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	unit := s[len(s)-1]
	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return time.ParseDuration(s)
	}

	switch unit {
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	default:
		return time.ParseDuration(s)
	}
}

// ParseInterval parses a positive refresh interval. Bare numbers are read in
// defaultUnit and produce a warning on warn naming flagName.
func ParseInterval(s string, defaultUnit time.Duration, flagName string, warn io.Writer) (time.Duration, error) {
	d, err := ParseDuration(s)
	if err != nil {
		n, aerr := strconv.Atoi(strings.TrimSpace(s))
		if aerr != nil {
			return 0, fmt.Errorf("invalid --%s %q (use units like 250ms, 2s, 1m)", flagName, s)
		}
		if warn != nil {
			fmt.Fprintf(warn, "Warning: bare number %q for --%s; assuming --%s=%d%s\n",
				s, flagName, flagName, n, unitSuffix(defaultUnit))
		}
		d = time.Duration(n) * defaultUnit
	}
	if d <= 0 {
		return 0, fmt.Errorf("--%s must be positive, got %s", flagName, s)
	}
	return d, nil
}

func unitSuffix(d time.Duration) string {
	switch d {
	case time.Millisecond:
		return "ms"
	case time.Second:
		return "s"
	case time.Minute:
		return "m"
	case time.Hour:
		return "h"
	default:
		return "s"
	}
}
