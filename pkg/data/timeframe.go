package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeframe converts a compact timeframe label ("15m", "1h", "4h",
// "1d") into a duration.
func ParseTimeframe(tf string) (time.Duration, error) {
	tf = strings.ToLower(strings.TrimSpace(tf))
	if tf == "" {
		return 0, fmt.Errorf("empty timeframe")
	}

	unit := tf[len(tf)-1]
	numStr := tf[:len(tf)-1]
	n, err := strconv.Atoi(numStr)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}

	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
}
