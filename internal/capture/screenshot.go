package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
)

// Clips taller than this get truncated so the JPEG stays within what the
// vision models accept.
const maxClipHeight = 4000

// elementBox is the geometry of the capture target after scrolling.
type elementBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Capturer writes post screenshots to disk. Capture never returns an error:
// a post whose screenshot fails is still worth extracting, so failures just
// report ok=false.
type Capturer struct {
	dir       string
	maxHeight int64
	quality   int64
	logger    arbor.ILogger
}

// NewCapturer creates a screenshot capturer writing into dir.
func NewCapturer(dir string, maxHeight, quality int64, logger arbor.ILogger) *Capturer {
	if maxHeight <= 0 {
		maxHeight = maxClipHeight
	}
	if quality <= 0 {
		quality = 80
	}
	return &Capturer{dir: dir, maxHeight: maxHeight, quality: quality, logger: logger}
}

// Capture screenshots the element matching selector on the page tab,
// falling back to a plain viewport shot when the element cannot be resolved.
// Returns the file path and whether anything was written.
func (c *Capturer) Capture(ctx context.Context, tabCtx context.Context, url, selector string) (string, bool) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn().Err(err).Str("dir", c.dir).Msg("Failed to create screenshot directory")
		return "", false
	}

	path := filepath.Join(c.dir, fmt.Sprintf("%s_%d.jpg", common.SanitizeURLForFilename(url), time.Now().Unix()))

	if selector != "" {
		if data, err := c.captureElement(ctx, tabCtx, selector); err == nil {
			return c.write(path, data, url, "element")
		} else {
			c.logger.Debug().
				Err(err).
				Str("url", url).
				Str("selector", selector).
				Msg("Element capture failed, falling back to viewport")
		}
	}

	data, err := c.captureViewport(ctx, tabCtx)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("Screenshot capture failed")
		return "", false
	}
	return c.write(path, data, url, "viewport")
}

func (c *Capturer) write(path string, data []byte, url, mode string) (string, bool) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Failed to write screenshot")
		return "", false
	}
	c.logger.Info().
		Str("url", url).
		Str("path", path).
		Str("mode", mode).
		Int("bytes", len(data)).
		Msg("Screenshot captured")
	return path, true
}

// captureElement scrolls through the target container to force lazy content
// to render, then captures a clip of the element, truncated to maxHeight.
func (c *Capturer) captureElement(ctx context.Context, tabCtx context.Context, selector string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(tabCtx, 45*time.Second)
	defer cancel()
	if ctx != nil {
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
	}

	scrollScript := fmt.Sprintf(`(async () => {
		const el = document.querySelector(%q);
		if (!el) return null;
		const step = el.clientHeight || 800;
		for (let y = 0; y < el.scrollHeight; y += step) {
			el.scrollTop = y;
			await new Promise(r => setTimeout(r, 150));
		}
		el.scrollTop = 0;
		await new Promise(r => setTimeout(r, 300));
		const rect = el.getBoundingClientRect();
		return {
			x: rect.x + window.scrollX,
			y: rect.y + window.scrollY,
			width: rect.width,
			height: el.scrollHeight > rect.height ? el.scrollHeight : rect.height,
		};
	})()`, selector)

	var box *elementBox
	err := chromedp.Run(runCtx,
		chromedp.Evaluate(scrollScript, &box,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to measure element %s: %w", selector, err)
	}
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("element %s not found or has no area", selector)
	}

	height := box.Height
	if height > float64(c.maxHeight) {
		height = float64(c.maxHeight)
	}

	var data []byte
	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		data, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(c.quality).
			WithClip(&page.Viewport{
				X:      box.X,
				Y:      box.Y,
				Width:  box.Width,
				Height: height,
				Scale:  1,
			}).
			WithCaptureBeyondViewport(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to capture element clip: %w", err)
	}
	return data, nil
}

func (c *Capturer) captureViewport(ctx context.Context, tabCtx context.Context) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(tabCtx, 30*time.Second)
	defer cancel()
	if ctx != nil {
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
	}

	var data []byte
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		data, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(c.quality).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to capture viewport: %w", err)
	}
	return data, nil
}

// RemoveOriginal deletes the pre-optimization screenshot in the background.
// Windows keeps files locked briefly after the last reader closes, so removal
// retries with increasing backoff and gives up silently.
func (c *Capturer) RemoveOriginal(path string) {
	if path == "" {
		return
	}
	go func() {
		for attempt := 1; attempt <= 5; attempt++ {
			if err := os.Remove(path); err == nil || os.IsNotExist(err) {
				return
			}
			time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
		}
		c.logger.Debug().Str("path", path).Msg("Could not remove original screenshot")
	}()
}
