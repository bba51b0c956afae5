package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dayUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseDurationString accepts time.ParseDuration values plus whole days ("14d")
// and weeks ("2w").
func ParseDurationString(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	for suffix, unit := range dayUnits {
		if n, ok := strings.CutSuffix(value, suffix); ok && n != "" {
			count, err := strconv.Atoi(n)
			if err != nil || count < 0 {
				return 0, fmt.Errorf("invalid time duration '%s': expected a whole number of %s", value, suffix)
			}
			return time.Duration(count) * unit, nil
		}
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid time duration '%s': %w", value, err)
	}
	return d, nil
}
