package scrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var countPattern = regexp.MustCompile(`([0-9.]+)([KMkm])?`)

// ParseCount extracts a count from rendered text like "1.2K" or "3,456",
// applying K/M suffix multipliers. Returns 0 when no number is present.
// Directional and formatting marks common in RTL pages are stripped first.
func ParseCount(s string) int {
	if s == "" {
		return 0
	}
	cleaner := strings.NewReplacer(",", "", " ", "", "‏", "", "‬", "", "‪", "")
	s = cleaner.Replace(s)

	m := countPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		num *= 1_000
	case "M":
		num *= 1_000_000
	}
	return int(math.Floor(num))
}
