package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/scrape"
)

// Rendering surface sized so post modals lay out the way a logged-in desktop
// session sees them.
const (
	viewportWidth  = 2258
	viewportHeight = 1270

	maxNavAttempts = 2
)

const acceptLanguage = "he-IL,he;q=0.9,en-US;q=0.8,en;q=0.7"

// Script evaluated on every new document to mask headless automation markers.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => false });
Object.defineProperty(navigator, 'languages', { get: () => ['he-IL', 'he', 'en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
window.chrome = window.chrome || { runtime: {} };
`

// Page is one open tab positioned on a loaded post.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Context exposes the tab context for capture actions.
func (p *Page) Context() context.Context { return p.ctx }

// HTML returns the full rendered document markup.
func (p *Page) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := deriveTimeout(p.ctx, ctx, 20*time.Second)
	defer cancel()
	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

// VisibleText returns the document's rendered text content.
func (p *Page) VisibleText(ctx context.Context) (string, error) {
	runCtx, cancel := deriveTimeout(p.ctx, ctx, 20*time.Second)
	defer cancel()
	var text string
	err := chromedp.Run(runCtx, chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text))
	if err != nil {
		return "", fmt.Errorf("failed to read visible text: %w", err)
	}
	return text, nil
}

// Close discards the tab.
func (p *Page) Close() {
	if p.cancel != nil {
		p.cancel()
	}
}

// deriveTimeout bounds a tab operation by both the caller's context and a
// ceiling, since the tab context itself has no deadline.
func deriveTimeout(tabCtx, callerCtx context.Context, ceiling time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(tabCtx, ceiling)
	if callerCtx == nil {
		return runCtx, cancel
	}
	stop := context.AfterFunc(callerCtx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// NavigationError reports a URL that could not be opened after every attempt.
type NavigationError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Navigator opens post pages in fresh tabs and waits for them to settle.
type Navigator struct {
	navTimeout time.Duration
	readyWait  time.Duration
	logger     arbor.ILogger
}

// NewNavigator creates a page navigator.
func NewNavigator(navTimeout, readyWait time.Duration, logger arbor.ILogger) *Navigator {
	if navTimeout <= 0 {
		navTimeout = 60 * time.Second
	}
	if readyWait <= 0 {
		readyWait = 15 * time.Second
	}
	return &Navigator{navTimeout: navTimeout, readyWait: readyWait, logger: logger}
}

// Open navigates a new tab to url and blocks until the page looks ready per
// the host rule. A failed attempt discards the tab and retries once with a
// fresh one.
func (n *Navigator) Open(ctx context.Context, session *Session, url string, rule scrape.HostRule) (*Page, error) {
	var lastErr error
	for attempt := 1; attempt <= maxNavAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		pg, err := n.open(ctx, session, url, rule)
		if err == nil {
			return pg, nil
		}
		lastErr = err
		n.logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Msg("Navigation attempt failed")
	}
	return nil, &NavigationError{URL: url, Attempts: maxNavAttempts, Err: lastErr}
}

func (n *Navigator) open(ctx context.Context, session *Session, url string, rule scrape.HostRule) (*Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(session.Context())

	navCtx, navCancel := deriveTimeout(tabCtx, ctx, n.navTimeout)
	defer navCancel()

	err := chromedp.Run(navCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": acceptLanguage}),
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate(url),
	)
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	n.waitReady(navCtx, url, rule)

	return &Page{ctx: tabCtx, cancel: tabCancel}, nil
}

// waitReady walks the rule's readiness selectors with a short budget each,
// then lets the page settle. Never fails: a page that never shows a readiness
// marker still gets the fallback delay and proceeds.
func (n *Navigator) waitReady(ctx context.Context, url string, rule scrape.HostRule) {
	perCandidate := n.readyWait
	if len(rule.Readiness) > 1 {
		perCandidate = n.readyWait / time.Duration(len(rule.Readiness))
		if perCandidate < 2*time.Second {
			perCandidate = 2 * time.Second
		}
	}

	matched := ""
	for _, selector := range rule.Readiness {
		waitCtx, cancel := context.WithTimeout(ctx, perCandidate)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
		cancel()
		if err == nil {
			matched = selector
			break
		}
		if ctx.Err() != nil {
			return
		}
	}

	if matched != "" {
		n.logger.Debug().
			Str("url", url).
			Str("selector", matched).
			Msg("Readiness selector matched")
		sleepCtx(ctx, rule.SettleDelay)
		return
	}

	n.logger.Debug().
		Str("url", url).
		Str("selectors", strings.Join(rule.Readiness, ", ")).
		Msg("No readiness selector matched, using fallback delay")
	sleepCtx(ctx, rule.FallbackDelay)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
