package common

import "testing"

func TestDecodeUnicodeEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no escapes", "plain text", "plain text"},
		{"hebrew single escape", `שלום`, "שלום"},
		{"hebrew double escape", `\\u05e9\\u05dc\\u05d5\\u05dd`, "שלום"},
		{"mixed text", `Hello שלום world`, "Hello שלום world"},
		{"surrogate pair emoji", `😀`, "😀"},
		{"lone high surrogate", `\ud83d end`, "� end"},
		{"already decoded", "שלום", "שלום"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeUnicodeEscapes(tt.input); got != tt.want {
				t.Errorf("DecodeUnicodeEscapes(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeURLForFilename(t *testing.T) {
	got := SanitizeURLForFilename("https://www.facebook.com/groups/123/posts/456?x=1")
	want := "https___www_facebook_com_groups_123_posts_456_x_1"
	if got != want {
		t.Errorf("SanitizeURLForFilename = %q, want %q", got, want)
	}

	long := "https://example.com/" + string(make([]byte, 200))
	if len(SanitizeURLForFilename(long)) != 100 {
		t.Errorf("expected 100-char cap, got %d", len(SanitizeURLForFilename(long)))
	}
}

func TestHostname(t *testing.T) {
	if got := Hostname("https://WWW.Facebook.com/groups/1"); got != "www.facebook.com" {
		t.Errorf("Hostname = %q", got)
	}
	if got := Hostname("://bad"); got != "" {
		t.Errorf("expected empty host for unparseable URL, got %q", got)
	}
}
