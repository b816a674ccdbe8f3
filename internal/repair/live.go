package repair

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/browser"
	"github.com/ternarybob/specto/internal/capture"
	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/scrape"
	"github.com/ternarybob/specto/internal/vision"
)

// PageExtractor implements LiveExtractor with a real browser. The session is
// launched on first use and shared for the rest of the repair run.
type PageExtractor struct {
	manager   *browser.Manager
	navigator *browser.Navigator
	rules     *scrape.Rules
	miner     *scrape.Miner
	capturer  *capture.Capturer
	optimizer *capture.Optimizer
	logger    arbor.ILogger

	mu      sync.Mutex
	session *browser.Session
}

// NewPageExtractor creates the browser-backed extractor.
func NewPageExtractor(manager *browser.Manager, navigator *browser.Navigator, rules *scrape.Rules, miner *scrape.Miner, capturer *capture.Capturer, optimizer *capture.Optimizer, logger arbor.ILogger) *PageExtractor {
	return &PageExtractor{
		manager:   manager,
		navigator: navigator,
		rules:     rules,
		miner:     miner,
		capturer:  capturer,
		optimizer: optimizer,
		logger:    logger,
	}
}

// Extract opens the post, mines its metadata and captures a screenshot for
// the vision fallback strategies.
func (p *PageExtractor) Extract(ctx context.Context, url string) (*models.PartialMetadata, string, error) {
	session, err := p.acquire(ctx)
	if err != nil {
		return nil, "", err
	}

	rule := p.rules.ForHost(common.Hostname(url))
	page, err := p.navigator.Open(ctx, session, url, rule)
	if err != nil {
		return nil, "", err
	}
	defer page.Close()

	meta := p.miner.Mine(ctx, page, url)

	shot := ""
	if rawPath, ok := p.capturer.Capture(ctx, page.Context(), url, rule.CaptureSelector); ok {
		shot = p.optimizer.Optimize(rawPath)
		if shot != rawPath {
			p.capturer.RemoveOriginal(rawPath)
		}
	}
	return meta, shot, nil
}

func (p *PageExtractor) acquire(ctx context.Context) (*browser.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return p.session, nil
	}
	session, err := p.manager.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	p.session = session
	return session, nil
}

// Close releases the shared browser session.
func (p *PageExtractor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		p.session.Close()
		p.session = nil
	}
}

// VisionFieldAnalyzer implements FieldAnalyzer over the vision analyzer.
type VisionFieldAnalyzer struct {
	analyzer *vision.Analyzer
}

// NewVisionFieldAnalyzer wraps a vision analyzer for single-field queries.
func NewVisionFieldAnalyzer(analyzer *vision.Analyzer) *VisionFieldAnalyzer {
	return &VisionFieldAnalyzer{analyzer: analyzer}
}

// AnalyzeFile reads the screenshot and asks the model for one field.
func (v *VisionFieldAnalyzer) AnalyzeFile(ctx context.Context, path string, field models.RepairField) (string, error) {
	jpeg, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read screenshot %s: %w", path, err)
	}

	result, err := v.analyzer.AnalyzeField(ctx, jpeg, field)
	if err != nil {
		return "", err
	}
	if result.Validation == models.ValidationQuotaExhausted {
		return "", fmt.Errorf("vision quota exhausted")
	}

	switch field {
	case models.RepairSender:
		return result.SenderName, nil
	case models.RepairGroup:
		return result.GroupName, nil
	case models.RepairDate:
		return result.PostDate, nil
	case models.RepairContent:
		return result.Content, nil
	case models.RepairLikes:
		return strconv.Itoa(result.LikesOr(0)), nil
	case models.RepairComments:
		return strconv.Itoa(result.CommentsOr(0)), nil
	case models.RepairShares:
		return strconv.Itoa(result.SharesOr(0)), nil
	}
	return "", fmt.Errorf("unknown field: %s", field)
}
