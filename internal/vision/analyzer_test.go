package vision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/models"
)

type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, jpeg []byte) (string, error) {
	i := p.calls
	p.calls++
	p.prompts = append(p.prompts, prompt)
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.responses) {
		return p.responses[i], nil
	}
	return "", errors.New("script exhausted")
}

func testAnalyzer(p *scriptedProvider) *Analyzer {
	a := NewAnalyzer(p, 3, arbor.NewLogger())
	a.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return a
}

func TestAnalyzeParsesResponse(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		`{"sender_name":"Dana Levi","group_name":"Market","likes":12,"comments":3,"shares":0,"summary":"מכירה"}`,
	}}

	result, err := testAnalyzer(p).Analyze(context.Background(), []byte{0xff}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Dana Levi", result.SenderName)
	assert.Equal(t, 12, result.LikesOr(-1))
	assert.Equal(t, 0, result.SharesOr(-1))
	assert.Empty(t, result.Validation)
}

func TestAnalyzeRetriesQuotaThenSucceeds(t *testing.T) {
	p := &scriptedProvider{
		errs:      []error{errors.New("429: RESOURCE_EXHAUSTED"), nil},
		responses: []string{"", `{"sender_name":"Dana"}`},
	}

	result, err := testAnalyzer(p).Analyze(context.Background(), []byte{0xff}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, "Dana", result.SenderName)
}

func TestAnalyzeQuotaExhaustionFallsBack(t *testing.T) {
	quota := errors.New("quota exceeded for model")
	p := &scriptedProvider{errs: []error{quota, quota, quota}}

	heuristic := models.NewPartialMetadata()
	heuristic.SenderName = "Dana"
	heuristic.Likes = 7

	result, err := testAnalyzer(p).Analyze(context.Background(), []byte{0xff}, heuristic, "Fallback Name")
	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, models.ValidationQuotaExhausted, result.Validation)
	assert.Equal(t, "Dana", result.SenderName)
	assert.Equal(t, 7, result.LikesOr(-1))
}

func TestAnalyzeQuotaFallbackUsesProvidedName(t *testing.T) {
	quota := errors.New("rate limit hit")
	p := &scriptedProvider{errs: []error{quota, quota, quota}}

	result, err := testAnalyzer(p).Analyze(context.Background(), []byte{0xff}, nil, "Row Name")
	require.NoError(t, err)
	assert.Equal(t, "Row Name", result.SenderName)
	assert.Equal(t, models.ValidationQuotaExhausted, result.Validation)
}

func TestAnalyzeNonQuotaErrorPropagates(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("invalid api key")}}

	_, err := testAnalyzer(p).Analyze(context.Background(), []byte{0xff}, nil, "")
	require.Error(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestAnalyzeUnparseableResponseErrors(t *testing.T) {
	p := &scriptedProvider{responses: []string{"no json here at all, sorry"}}

	_, err := testAnalyzer(p).Analyze(context.Background(), []byte{0xff}, nil, "")
	var parseErr *ResponseParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestPromptIncludesHeuristicStats(t *testing.T) {
	heuristic := models.NewPartialMetadata()
	heuristic.Likes = 120
	heuristic.Comments = 14

	prompt := BuildPrompt(heuristic)
	assert.Contains(t, prompt, "likes=120")
	assert.Contains(t, prompt, "comments=14")
	assert.NotContains(t, prompt, "shares=")

	bare := BuildPrompt(models.NewPartialMetadata())
	assert.NotContains(t, bare, "already read from the page markup")
}

func TestDecodeResultDistinguishesMissingFromZero(t *testing.T) {
	result := DecodeResult(`{"sender_name":"Dana","likes":0}`)
	assert.Equal(t, 0, result.LikesOr(-1))
	assert.Equal(t, -1, result.CommentsOr(-1))
	assert.Nil(t, result.Comments)
}
