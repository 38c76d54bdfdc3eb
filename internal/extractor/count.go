package extractor

import (
	"fmt"
	"strconv"
	"strings"
)

// suffix multipliers for abbreviated counts. Upper-case only: the site
// never renders "1.2k", and a lower-case letter usually means the text
// is not a count at all.
var countSuffixes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// ParseCount converts a follower/following string like "1.2K", "500" or
// "12,345" into an integer. Unparseable text yields 0.
func ParseCount(text string) int64 {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if s == "" {
		return 0
	}

	multiplier := 1.0
	if m, ok := countSuffixes[s[len(s)-1]]; ok {
		multiplier = m
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0
	}

	return int64(value*multiplier + 0.5)
}

// FormatCount renders a count the way the site abbreviates it, so the
// card face matches what the profile page shows.
func FormatCount(n int64) string {
	switch {
	case n >= 1e9:
		return trimZero(fmt.Sprintf("%.1fB", float64(n)/1e9))
	case n >= 1e6:
		return trimZero(fmt.Sprintf("%.1fM", float64(n)/1e6))
	case n >= 1e3:
		return trimZero(fmt.Sprintf("%.1fK", float64(n)/1e3))
	default:
		return strconv.FormatInt(n, 10)
	}
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}
