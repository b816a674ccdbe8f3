package scrape

import "testing"

func TestParseCount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain integer", "42", 42},
		{"with thousands separator", "1,234", 1234},
		{"kilo suffix", "1.2K", 1200},
		{"lowercase kilo", "3k", 3000},
		{"mega suffix", "2.5M", 2500000},
		{"lowercase mega", "1m", 1000000},
		{"fractional kilo floors", "1.25K", 1250},
		{"rtl marks stripped", "‏1.2K‎", 1200},
		{"empty string", "", 0},
		{"no digits", "likes", 0},
		{"embedded in text", "1.2K reactions", 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCount(tt.input); got != tt.want {
				t.Errorf("ParseCount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
