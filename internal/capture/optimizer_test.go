package capture

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeTestImage(t *testing.T, dir string, width, height int) string {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 180, B: 160, A: 255})
	path := filepath.Join(dir, "shot.jpg")
	require.NoError(t, imaging.Save(img, path, imaging.JPEGQuality(80)))
	return path
}

func openWidth(t *testing.T, path string) int {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err)
	return img.Bounds().Dx()
}

func TestOptimizeDownscalesWideCapture(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, 2400, 900)

	out := NewOptimizer(arbor.NewLogger()).Optimize(path)

	assert.NotEqual(t, path, out)
	assert.True(t, strings.HasSuffix(out, "_optimized.jpg"))
	assert.Equal(t, 1440, openWidth(t, out))
}

func TestOptimizeMediumCapture(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, 1600, 900)

	out := NewOptimizer(arbor.NewLogger()).Optimize(path)
	assert.Equal(t, 1120, openWidth(t, out))
}

func TestOptimizeNeverEnlarges(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, 800, 600)

	out := NewOptimizer(arbor.NewLogger()).Optimize(path)
	assert.Equal(t, 800, openWidth(t, out))
}

func TestOptimizeMissingFileReturnsOriginal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.jpg")
	out := NewOptimizer(arbor.NewLogger()).Optimize(missing)
	assert.Equal(t, missing, out)
}
