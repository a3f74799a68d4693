// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration such as "PT1H2M3S" or
// "P1DT2H" to seconds. It reports false for empty or malformed input and for
// "P0D", which the platform uses for live and unprocessed videos.
func ParseISODuration(value string) (int, bool) {
	parts := isoDuration.FindStringSubmatch(value)
	if parts == nil {
		return 0, false
	}

	multipliers := []int{86400, 3600, 60, 1}
	total := 0
	for i, multiplier := range multipliers {
		if parts[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(parts[i+1])
		if err != nil {
			return 0, false
		}
		total += n * multiplier
	}

	if total <= 0 {
		return 0, false
	}
	return total, true
}

// FormatDuration renders seconds as HH:MM:SS. Non-positive input yields "".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
