package vision

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ResponseParseError reports a model response that survived no repair tier.
// The excerpt is capped so log lines stay bounded.
type ResponseParseError struct {
	Excerpt string
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("could not extract valid JSON from model response: %s", e.Excerpt)
}

var (
	lineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	fenceOpen     = regexp.MustCompile("(?m)^```(?:json)?\\s*$")
	doubleEscaped = regexp.MustCompile(`\\\\u([0-9a-fA-F]{4})`)
)

// ExtractJSON recovers a JSON object from a raw model response, trying
// progressively harsher repairs: cleanup and direct parse, double-escape
// normalization, structural repair, then extraction of the largest balanced
// object. Failure returns a *ResponseParseError.
func ExtractJSON(raw string) (string, error) {
	cleaned := cleanup(raw)
	if json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}

	unescaped := doubleEscaped.ReplaceAllString(cleaned, `\u$1`)
	if json.Valid([]byte(unescaped)) {
		return unescaped, nil
	}

	// Structural repair only when the response is at least shaped like JSON,
	// otherwise surrounding prose gets swallowed into a quoted string.
	if strings.HasPrefix(unescaped, "{") || strings.HasPrefix(unescaped, "[") {
		if repaired, err := jsonrepair.JSONRepair(unescaped); err == nil && json.Valid([]byte(repaired)) {
			return repaired, nil
		}
	}

	if obj := largestObject(unescaped); obj != "" {
		if json.Valid([]byte(obj)) {
			return obj, nil
		}
		if repaired, err := jsonrepair.JSONRepair(obj); err == nil && json.Valid([]byte(repaired)) {
			return repaired, nil
		}
	}

	excerpt := raw
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	return "", &ResponseParseError{Excerpt: excerpt}
}

// cleanup strips the wrappers models habitually add around JSON: a BOM,
// markdown fences, line comments, and carriage returns.
func cleanup(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = fenceOpen.ReplaceAllString(s, "")
	s = lineComment.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// largestObject returns the longest balanced {...} span, respecting strings
// and escape sequences.
func largestObject(s string) string {
	best := ""
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if end := matchBrace(s, i); end > i {
			candidate := s[i : end+1]
			if len(candidate) > len(best) {
				best = candidate
			}
			i = end
		}
	}
	return best
}

func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
