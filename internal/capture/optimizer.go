package capture

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ternarybob/arbor"
)

// Resize tiers keyed on source width. Images at or under the lower bound are
// re-encoded without resizing.
const (
	wideThreshold   = 1920
	mediumThreshold = 1200

	wideScale   = 0.6
	mediumScale = 0.7

	optimizedQuality = 60
)

// Optimizer shrinks captured screenshots before they are sent to a vision
// model. Optimize never fails the pipeline: any error returns the original
// path untouched.
type Optimizer struct {
	logger arbor.ILogger
}

// NewOptimizer creates a screenshot optimizer.
func NewOptimizer(logger arbor.ILogger) *Optimizer {
	return &Optimizer{logger: logger}
}

// Optimize re-encodes the screenshot at reduced quality, downscaling wide
// captures, and writes the result alongside the original with an _optimized
// suffix. Returns the path the caller should use from here on.
func (o *Optimizer) Optimize(path string) string {
	img, err := imaging.Open(path)
	if err != nil {
		o.logger.Warn().Err(err).Str("path", path).Msg("Failed to open screenshot for optimization")
		return path
	}

	width := img.Bounds().Dx()
	scale := 1.0
	switch {
	case width > wideThreshold:
		scale = wideScale
	case width > mediumThreshold:
		scale = mediumScale
	}
	if scale < 1.0 {
		img = imaging.Resize(img, int(float64(width)*scale), 0, imaging.Lanczos)
	}

	outPath := optimizedPath(path)
	if err := imaging.Save(img, outPath, imaging.JPEGQuality(optimizedQuality)); err != nil {
		o.logger.Warn().Err(err).Str("path", outPath).Msg("Failed to save optimized screenshot")
		return path
	}

	originalSize := fileSize(path)
	optimizedSize := fileSize(outPath)
	o.logger.Debug().
		Str("path", outPath).
		Int("original_width", width).
		Float64("scale", scale).
		Int64("original_bytes", originalSize).
		Int64("optimized_bytes", optimizedSize).
		Msg("Screenshot optimized")

	return outPath
}

func optimizedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_optimized.jpg"
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
