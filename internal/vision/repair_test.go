package vision

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONDirect(t *testing.T) {
	out, err := ExtractJSON(`{"sender_name":"Dana","likes":5}`)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestExtractJSONStripsFencesAndComments(t *testing.T) {
	raw := "```json\r\n// extracted fields\r\n{\"sender_name\":\"Dana\",\"likes\":5}\r\n```"
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, `"Dana"`)
}

func TestExtractJSONStripsBOM(t *testing.T) {
	out, err := ExtractJSON("\ufeff{\"likes\":1}")
	require.NoError(t, err)
	assert.Equal(t, `{"likes":1}`, out)
}

func TestExtractJSONFixesDoubleEscapedUnicode(t *testing.T) {
	raw := `{"sender_name":"\\u05d3\\u05e0\\u05d4"}`
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "דנה", parsed["sender_name"])
}

func TestExtractJSONRepairsTruncatedObject(t *testing.T) {
	raw := `{"sender_name":"Dana","likes":5,`
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, `"Dana"`)
}

func TestExtractJSONFindsLargestEmbeddedObject(t *testing.T) {
	raw := `The extracted data is as follows {"a":1} but the full record is {"sender_name":"Dana","likes":5,"comments":2} hope that helps!`
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Contains(t, out, `"sender_name"`)
}

func TestExtractJSONBalancedBracesInsideStrings(t *testing.T) {
	raw := `noise {"content":"use {curly} braces","likes":3} noise`
	out, err := ExtractJSON(raw)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "use {curly} braces", parsed["content"])
}

func TestExtractJSONHopelessResponse(t *testing.T) {
	long := "I cannot see any post in this image. " +
		"The screenshot appears to be a blank page with no identifiable content whatsoever. " +
		"Please provide a clearer capture of the post you want analyzed, including the header area."

	_, err := ExtractJSON(long)
	require.Error(t, err)

	var parseErr *ResponseParseError
	require.True(t, errors.As(err, &parseErr))
	assert.LessOrEqual(t, len(parseErr.Excerpt), 200)
}
