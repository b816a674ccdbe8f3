package scrape

import (
	"testing"
	"time"
)

func TestResolveRelativeDate(t *testing.T) {
	ref := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"yesterday", "Yesterday at 10:15", "14.03.25"},
		{"days ago", "3 days ago", "12.03.25"},
		{"short days", "2d", "13.03.25"},
		{"weeks ago", "2 weeks ago", "01.03.25"},
		{"short weeks", "1w", "08.03.25"},
		{"months ago crosses year", "4 months ago", "15.11.24"},
		{"years ago", "2 years ago", "15.03.23"},
		{"hours resolve to today", "5h", "15.03.25"},
		{"minutes resolve to today", "12 minutes ago", "15.03.25"},
		{"seconds resolve to today", "30 seconds ago", "15.03.25"},
		{"short seconds", "45s", "15.03.25"},
		{"hebrew days ago", "לפני 3 ימים", "12.03.25"},
		{"just now resolves to today", "just now", "15.03.25"},
		{"hebrew yesterday", "אתמול בשעה 10:15", "14.03.25"},
		{"absolute date passes through", "12/03/2024 18:45", "12/03/2024 18:45"},
		{"textual absolute passes through", "15 March 2024", "15 March 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRelativeDate(tt.input, ref); got != tt.want {
				t.Errorf("ResolveRelativeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
