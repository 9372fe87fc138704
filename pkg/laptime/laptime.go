package laptime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts a textual lap time ("MM:SS.mmm" or "H:MM:SS.mmm") or an
// already-numeric seconds value into seconds. It never fails: empty or
// unparsable input yields NaN. Parsing an already-numeric value returns it
// unchanged, so Parse(Parse(x)) == Parse(x).
func Parse(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}

	// already numeric
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return math.NaN()
	}

	var hours, minutes float64
	idx := 0
	if len(parts) == 3 {
		h, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return math.NaN()
		}
		hours = h
		idx = 1
	}
	m, err := strconv.ParseFloat(parts[idx], 64)
	if err != nil {
		return math.NaN()
	}
	minutes = m
	seconds, err := strconv.ParseFloat(parts[idx+1], 64)
	if err != nil {
		return math.NaN()
	}

	return hours*3600 + minutes*60 + seconds
}

// Format converts seconds to "M:SS.mmm", or "H:MM:SS.mmm" above one hour.
// NaN formats as the empty string so missing values round-trip through CSV.
func Format(seconds float64) string {
	if math.IsNaN(seconds) {
		return ""
	}
	if seconds < 0 {
		seconds = 0
	}
	millis := int(math.Round(seconds * 1000))
	hours := millis / 3600000
	millis -= hours * 3600000
	minutes := millis / 60000
	millis -= minutes * 60000
	secs := millis / 1000
	millis -= secs * 1000
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", hours, minutes, secs, millis)
	}
	return fmt.Sprintf("%d:%02d.%03d", minutes, secs, millis)
}

// Round3 rounds seconds to millisecond precision. NaN stays NaN.
func Round3(seconds float64) float64 {
	if math.IsNaN(seconds) {
		return seconds
	}
	return math.Round(seconds*1000) / 1000
}

// IsMissing reports whether a duration carries the null sentinel.
func IsMissing(seconds float64) bool {
	return math.IsNaN(seconds)
}
