package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	leadingNumber = regexp.MustCompile(`\d+`)
	shortRelative = regexp.MustCompile(`^\s*\d+\s*(h|hr|hrs|m|min|mins|s|d|w|mo|y)\b`)
	unitToken     = regexp.MustCompile(`\d+\s*(hours?|hrs?|minutes?|mins?|seconds?|secs?|days?|weeks?|months?|years?|mo|h|m|s|d|w|y)\b`)
)

// ResolveRelativeDate turns a rendered relative date string ("3 days ago",
// "yesterday", "2w") into DD.MM.YY evaluated against ref. Strings with no
// relative marker pass through unchanged so absolute dates survive for
// later normalization; an empty input returns an empty string.
func ResolveRelativeDate(dateStr string, ref time.Time) string {
	if dateStr == "" {
		return ""
	}
	lower := strings.ToLower(dateStr)
	if !isRelative(lower) {
		return dateStr
	}

	n := 0
	if m := leadingNumber.FindString(lower); m != "" {
		n, _ = strconv.Atoi(m)
	}

	resolved := ref
	if strings.Contains(lower, "yesterday") || strings.Contains(lower, "אתמול") {
		resolved = ref.AddDate(0, 0, -1)
	} else {
		switch relativeUnit(lower) {
		case "day":
			resolved = ref.AddDate(0, 0, -n)
		case "week":
			resolved = ref.AddDate(0, 0, -n*7)
		case "month":
			resolved = ref.AddDate(0, -n, 0)
		case "year":
			resolved = ref.AddDate(-n, 0, 0)
		}
		// Hours, minutes, seconds and "just now" resolve to ref's date.
	}

	return fmt.Sprintf("%02d.%02d.%02d", resolved.Day(), int(resolved.Month()), resolved.Year()%100)
}

// relativeUnit picks out the unit token next to the count. Matching whole
// tokens keeps "seconds" from landing in the day bucket via its "d".
func relativeUnit(lower string) string {
	if m := unitToken.FindStringSubmatch(lower); m != nil {
		switch m[1] {
		case "d", "day", "days":
			return "day"
		case "w", "week", "weeks":
			return "week"
		case "mo", "month", "months":
			return "month"
		case "y", "year", "years":
			return "year"
		}
		return ""
	}
	switch {
	case strings.Contains(lower, "יום") || strings.Contains(lower, "ימים"):
		return "day"
	case strings.Contains(lower, "שבוע"):
		return "week"
	case strings.Contains(lower, "חודש"):
		return "month"
	case strings.Contains(lower, "שנה") || strings.Contains(lower, "שנים"):
		return "year"
	}
	return ""
}

// isRelative reports whether the string carries a relative-time marker, in
// English or Hebrew.
func isRelative(lower string) bool {
	for _, marker := range []string{"ago", "yesterday", "just now", "לפני", "אתמול"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return shortRelative.MatchString(lower)
}
