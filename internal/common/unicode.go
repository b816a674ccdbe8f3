package common

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

var (
	doubleEscaped = regexp.MustCompile(`\\\\u([0-9a-fA-F]{4})`)
	singleEscaped = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
)

// DecodeUnicodeEscapes turns literal \uXXXX (and doubly escaped \\uXXXX)
// sequences in s into their characters. Source sites and the vision model
// both emit escaped non-Latin text inconsistently, so decoding is applied as
// a safety net wherever strings are recovered. Operates purely on string
// data; surrogate pairs are combined.
func DecodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	// Collapse double escapes first so the single-escape pass sees them.
	s = doubleEscaped.ReplaceAllString(s, `\u$1`)
	return decodeSingle(s)
}

func decodeSingle(s string) string {
	matches := singleEscaped.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	i := 0
	for i < len(matches) {
		m := matches[i]
		b.WriteString(s[last:m[0]])

		r := decodeHexRune(s[m[2]:m[3]])
		// High surrogate: try to pair with an immediately following escape.
		if utf16.IsSurrogate(r) && i+1 < len(matches) && matches[i+1][0] == m[1] {
			r2 := decodeHexRune(s[matches[i+1][2]:matches[i+1][3]])
			if combined := utf16.DecodeRune(r, r2); combined != '�' {
				b.WriteRune(combined)
				last = matches[i+1][1]
				i += 2
				continue
			}
		}
		b.WriteRune(r)
		last = m[1]
		i++
	}
	b.WriteString(s[last:])
	return b.String()
}

func decodeHexRune(hex string) rune {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return '�'
	}
	return rune(v)
}
