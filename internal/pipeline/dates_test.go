package pipeline

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"already normalized", "15/03/25 14:30", "15/03/25 14:30"},
		{"dotted date no time", "07.06.25", "07/06/25 00:00"},
		{"dotted with time", "7.6.25 9:05", "07/06/25 09:05"},
		{"four digit year", "15/03/2025 14:30", "15/03/25 14:30"},
		{"pivot low year to 2000s", "01/01/49", "01/01/49 00:00"},
		{"pivot high year to 1900s", "01/01/99", "01/01/99 00:00"},
		{"textual with time", "2 June 2025 at 14:30", "02/06/25 14:30"},
		{"iso date", "2025-06-02", "02/06/25 00:00"},
		{"unparseable unchanged", "sometime last week", "sometime last week"},
		{"invalid month unchanged", "12/13/25", "12/13/25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.input); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	inputs := []string{"15/03/25 14:30", "07.06.25", "2 June 2025 at 14:30"}
	for _, input := range inputs {
		once := NormalizeDate(input)
		twice := NormalizeDate(once)
		if once != twice {
			t.Errorf("NormalizeDate not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestPivotYear(t *testing.T) {
	if got := pivotYear(25); got != 2025 {
		t.Errorf("pivotYear(25) = %d, want 2025", got)
	}
	if got := pivotYear(85); got != 1985 {
		t.Errorf("pivotYear(85) = %d, want 1985", got)
	}
	if got := pivotYear(2025); got != 2025 {
		t.Errorf("pivotYear(2025) = %d, want 2025", got)
	}
}
