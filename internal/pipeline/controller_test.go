package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/vision"
)

type stubAnalyzer struct {
	result *models.VisionResult
	err    error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, jpeg []byte, heuristic *models.PartialMetadata, fallbackName string) (*models.VisionResult, error) {
	return s.result, s.err
}

func writeShot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0644))
	return path
}

func TestAnalyzeShotParseErrorFailsURL(t *testing.T) {
	c := &Controller{
		analyzer: &stubAnalyzer{err: &vision.ResponseParseError{Excerpt: "not json"}},
		logger:   arbor.NewLogger(),
	}

	result, err := c.analyzeShot(context.Background(), writeShot(t), models.LinkEntry{URL: "https://example.com/p/1"}, nil)
	require.Error(t, err)
	assert.Nil(t, result)

	var parseErr *vision.ResponseParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestAnalyzeShotQuotaSentinelSucceeds(t *testing.T) {
	c := &Controller{
		analyzer: &stubAnalyzer{result: models.QuotaFallback("Dana", nil)},
		logger:   arbor.NewLogger(),
	}

	result, err := c.analyzeShot(context.Background(), writeShot(t), models.LinkEntry{}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ValidationQuotaExhausted, result.Validation)
}

func TestAnalyzeShotUnreadableScreenshotDegrades(t *testing.T) {
	c := &Controller{
		analyzer: &stubAnalyzer{err: errors.New("should not be called")},
		logger:   arbor.NewLogger(),
	}

	result, err := c.analyzeShot(context.Background(), filepath.Join(t.TempDir(), "absent.jpg"), models.LinkEntry{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, result)
}
