package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Canonical record date format: DD/MM/YY HH:MM.
var numericDate = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{2,4})(?:[\s,]+(\d{1,2}):(\d{2}))?$`)

// Textual layouts the pages render in English locales.
var textualLayouts = []string{
	"2 January 2006 at 15:04",
	"January 2, 2006 at 15:04",
	"2 January 2006",
	"January 2, 2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NormalizeDate rewrites a date string into DD/MM/YY HH:MM. Already
// normalized input passes through unchanged, so the function is safe to
// apply repeatedly. Unrecognized input is returned as-is rather than
// guessed at.
func NormalizeDate(s string) string {
	if s == "" {
		return s
	}

	if m := numericDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if day < 1 || day > 31 || month < 1 || month > 12 {
			return s
		}
		year = pivotYear(year)

		hour, minute := 0, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
		}
		return fmt.Sprintf("%02d/%02d/%02d %02d:%02d", day, month, year%100, hour, minute)
	}

	for _, layout := range textualLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/06 15:04")
		}
	}
	return s
}

// pivotYear expands two-digit years: values under 50 land in the 2000s, the
// rest in the 1900s.
func pivotYear(year int) int {
	if year >= 100 {
		return year
	}
	if year < 50 {
		return 2000 + year
	}
	return 1900 + year
}
