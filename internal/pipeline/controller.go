package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/specto/internal/browser"
	"github.com/ternarybob/specto/internal/capture"
	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/scrape"
	"github.com/ternarybob/specto/internal/vision"
)

// postAnalyzer is the slice of the vision analyzer the controller drives.
type postAnalyzer interface {
	Analyze(ctx context.Context, jpeg []byte, heuristic *models.PartialMetadata, fallbackName string) (*models.VisionResult, error)
}

// Controller runs the extraction pipeline over a batch of post links.
// Processing is sequential: the target sites throttle aggressively and a
// single authenticated session cannot fan out.
type Controller struct {
	manager    *browser.Manager
	navigator  *browser.Navigator
	rules      *scrape.Rules
	miner      *scrape.Miner
	capturer   *capture.Capturer
	optimizer  *capture.Optimizer
	analyzer   postAnalyzer
	sink       interfaces.RecordSink
	audit      interfaces.AuditLog
	store      interfaces.RecordStore
	events     interfaces.Publisher
	limiter    *rate.Limiter
	visualMode bool
	logger     arbor.ILogger
}

// ControllerDeps carries the pipeline's collaborators.
type ControllerDeps struct {
	Manager   *browser.Manager
	Navigator *browser.Navigator
	Rules     *scrape.Rules
	Miner     *scrape.Miner
	Capturer  *capture.Capturer
	Optimizer *capture.Optimizer
	Analyzer  *vision.Analyzer
	Sink      interfaces.RecordSink
	Audit     interfaces.AuditLog
	Store     interfaces.RecordStore
	Events    interfaces.Publisher
	Logger    arbor.ILogger
}

// NewController wires the pipeline. betweenPosts paces navigation so the run
// looks like a person clicking through links.
func NewController(deps ControllerDeps, visualMode bool, betweenPosts time.Duration) *Controller {
	if betweenPosts <= 0 {
		betweenPosts = 4 * time.Second
	}
	return &Controller{
		manager:    deps.Manager,
		navigator:  deps.Navigator,
		rules:      deps.Rules,
		miner:      deps.Miner,
		capturer:   deps.Capturer,
		optimizer:  deps.Optimizer,
		analyzer:   deps.Analyzer,
		sink:       deps.Sink,
		audit:      deps.Audit,
		store:      deps.Store,
		events:     deps.Events,
		limiter:    rate.NewLimiter(rate.Every(betweenPosts), 1),
		visualMode: visualMode,
		logger:     deps.Logger,
	}
}

// Run processes every link in order. Per-link failures are recorded and the
// batch continues; only browser acquisition and cancellation stop the run.
func (c *Controller) Run(ctx context.Context, links []models.LinkEntry) (*models.BatchResult, error) {
	startTime := time.Now()
	runID := uuid.New().String()[:8]
	result := &models.BatchResult{}

	session, err := c.manager.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire browser session: %w", err)
	}
	defer session.Close()

	c.logger.Info().
		Str("run_id", runID).
		Int("links", len(links)).
		Bool("visual", c.visualMode).
		Msg("Starting batch")
	c.publish("info", fmt.Sprintf("[%s] Starting batch of %d links (visual=%v)", runID, len(links), c.visualMode))

	for i, link := range links {
		if err := c.limiter.Wait(ctx); err != nil {
			result.Duration = time.Since(startTime)
			return result, err
		}

		c.publish("info", fmt.Sprintf("Processing %d/%d: %s", i+1, len(links), link.URL))
		result.Processed++

		classification := models.Classify(link.URL)
		if (classification.IsStory || classification.IsReel) && !c.visualMode {
			reason := "story"
			if classification.IsReel {
				reason = "reel"
			}
			c.logger.Info().Str("url", link.URL).Str("kind", reason).Msg("Skipping ephemeral post outside visual mode")
			// The skip still produces a placeholder row so the URL is
			// accounted for in the output.
			record := SkipRecord(link, classification)
			if err := c.sink.Append(ctx, record); err != nil {
				c.logger.Warn().Err(err).Str("url", link.URL).Msg("Failed to append skip record")
			}
			result.Skipped++
			c.appendAudit(ctx, &models.AuditEntry{
				Timestamp: time.Now().Format(time.RFC3339),
				Name:      link.Name,
				Date:      link.Date,
				URL:       link.URL,
				OK:        false,
				Record:    record,
				Skipped:   reason,
				Story:     classification.IsStory,
				Reel:      classification.IsReel,
				Visual:    c.visualMode,
			})
			continue
		}

		record, screenshotPath, err := c.processOne(ctx, session, link, classification)
		if err != nil {
			if ctx.Err() != nil {
				result.Duration = time.Since(startTime)
				return result, ctx.Err()
			}
			c.logger.Error().Err(err).Str("url", link.URL).Msg("Link extraction failed")
			c.publish("error", fmt.Sprintf("Failed: %s (%v)", link.URL, err))
			result.Failed = append(result.Failed, models.FailedLink{URL: link.URL, Reason: err.Error()})
			c.appendAudit(ctx, &models.AuditEntry{
				Timestamp: time.Now().Format(time.RFC3339),
				Name:      link.Name,
				Date:      link.Date,
				URL:       link.URL,
				OK:        false,
				Story:     classification.IsStory,
				Reel:      classification.IsReel,
				Visual:    c.visualMode,
			})
			continue
		}

		result.Succeeded++
		c.appendAudit(ctx, &models.AuditEntry{
			Timestamp:  time.Now().Format(time.RFC3339),
			Name:       link.Name,
			Date:       link.Date,
			URL:        link.URL,
			OK:         true,
			Record:     record,
			Screenshot: screenshotPath,
			Story:      classification.IsStory,
			Reel:       classification.IsReel,
			Visual:     c.visualMode,
		})
	}

	result.Duration = time.Since(startTime)
	c.publish("info", fmt.Sprintf("Batch finished: %d ok, %d failed, %d skipped in %s",
		result.Succeeded, len(result.Failed), result.Skipped, result.Duration.Round(time.Second)))
	return result, nil
}

func (c *Controller) processOne(ctx context.Context, session *browser.Session, link models.LinkEntry, classification models.PostClassification) (*models.Record, string, error) {
	// Stories rarely render after the fact, so the record is built from the
	// URL alone instead of navigating.
	if classification.IsStory {
		record := StoryRecord(link)
		if err := c.commit(ctx, record); err != nil {
			return nil, "", err
		}
		c.logger.Info().
			Str("url", link.URL).
			Str("sender", record.SenderName).
			Msg("Story record built from URL")
		return record, "", nil
	}

	host := common.Hostname(link.URL)
	rule := c.rules.ForHost(host)

	page, err := c.navigator.Open(ctx, session, link.URL, rule)
	if err != nil {
		return nil, "", err
	}
	defer page.Close()

	meta := c.miner.Mine(ctx, page, link.URL)

	var visionResult *models.VisionResult
	screenshotPath := ""
	if c.visualMode {
		visionResult, screenshotPath, err = c.visualPass(ctx, page, link, rule, meta, classification)
		if err != nil {
			return nil, "", err
		}
	}

	record := Reconcile(link.URL, meta, visionResult, link.Name)
	record.ScreenshotPath = screenshotPath
	if record.PostDate == "" && link.Date != "" {
		record.PostDate = NormalizeDate(link.Date)
	}

	if err := c.commit(ctx, record); err != nil {
		return nil, "", err
	}

	c.logger.Info().
		Str("url", link.URL).
		Str("sender", record.SenderName).
		Int("likes", record.Likes).
		Int("comments", record.Comments).
		Msg("Record extracted")
	return record, screenshotPath, nil
}

// commit persists the record. A store failure only warns; the sink is the
// authoritative output and its failure fails the URL.
func (c *Controller) commit(ctx context.Context, record *models.Record) error {
	if c.store != nil {
		if err := c.store.Save(record); err != nil {
			c.logger.Warn().Err(err).Str("url", record.URL).Msg("Failed to persist record")
		}
	}
	if err := c.sink.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// visualPass captures, optimizes and analyzes the post screenshot. Capture
// and screenshot-read failures degrade to heuristics-only; analyzer errors
// propagate and fail the URL. Quota exhaustion never surfaces here since the
// analyzer absorbs it into the sentinel result.
func (c *Controller) visualPass(ctx context.Context, page *browser.Page, link models.LinkEntry, rule scrape.HostRule, meta *models.PartialMetadata, classification models.PostClassification) (*models.VisionResult, string, error) {
	selector := rule.CaptureSelector
	if classification.Special() {
		// Reels and TikTok render as full-viewport surfaces.
		selector = ""
	}

	rawPath, ok := c.capturer.Capture(ctx, page.Context(), link.URL, selector)
	if !ok {
		return nil, "", nil
	}

	optimizedPath := c.optimizer.Optimize(rawPath)
	if optimizedPath != rawPath {
		c.capturer.RemoveOriginal(rawPath)
	}

	visionResult, err := c.analyzeShot(ctx, optimizedPath, link, meta)
	return visionResult, optimizedPath, err
}

func (c *Controller) analyzeShot(ctx context.Context, path string, link models.LinkEntry, meta *models.PartialMetadata) (*models.VisionResult, error) {
	jpeg, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Failed to read optimized screenshot")
		return nil, nil
	}

	visionResult, err := c.analyzer.Analyze(ctx, jpeg, meta, link.Name)
	if err != nil {
		return nil, fmt.Errorf("vision analysis failed: %w", err)
	}
	return visionResult, nil
}

func (c *Controller) appendAudit(ctx context.Context, entry *models.AuditEntry) {
	if c.audit == nil {
		return
	}
	if err := c.audit.Append(ctx, entry); err != nil {
		c.logger.Warn().Err(err).Str("url", entry.URL).Msg("Failed to append audit entry")
	}
}

func (c *Controller) publish(level, message string) {
	if c.events != nil {
		c.events.Publish(level, message)
	}
}
