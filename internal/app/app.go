package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/browser"
	"github.com/ternarybob/specto/internal/capture"
	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/events"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/output"
	"github.com/ternarybob/specto/internal/pipeline"
	"github.com/ternarybob/specto/internal/repair"
	"github.com/ternarybob/specto/internal/scrape"
	"github.com/ternarybob/specto/internal/storage/records"
	"github.com/ternarybob/specto/internal/vision"
)

// App owns every long-lived component and wires them into the pipeline and
// the repair engine.
type App struct {
	config *common.Config
	logger arbor.ILogger

	manager   *browser.Manager
	navigator *browser.Navigator
	rules     *scrape.Rules
	miner     *scrape.Miner
	capturer  *capture.Capturer
	optimizer *capture.Optimizer
	analyzer  *vision.Analyzer

	store   *records.Store
	sink    *output.CSVSink
	audit   *output.AuditLog
	hub     *events.Hub
	repairX *repair.PageExtractor
}

// New builds the application from configuration.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	rules, err := scrape.LoadRules(config.Scrape.RulesFile)
	if err != nil {
		return nil, err
	}

	provider, err := vision.NewProvider(config.Vision, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vision provider: %w", err)
	}

	store, err := records.NewStore(config.Storage.Badger, logger)
	if err != nil {
		return nil, err
	}

	hub := events.NewHub(config.Events.Port, logger)
	if err := hub.Start(); err != nil {
		store.Close()
		return nil, err
	}

	a := &App{
		config:    config,
		logger:    logger,
		manager:   browser.NewManager(config.Browser, logger),
		navigator: browser.NewNavigator(config.Browser.NavTimeoutDuration(), config.Browser.ReadyWaitDuration(), logger),
		rules:     rules,
		miner:     scrape.NewMiner(config.Scrape.MinContentLength, logger),
		capturer:  capture.NewCapturer(config.Capture.ScreenshotDir, config.Capture.MaxHeight, int64(config.Capture.JPEGQuality), logger),
		optimizer: capture.NewOptimizer(logger),
		analyzer:  vision.NewAnalyzer(provider, config.Vision.MaxAttempts, logger),
		store:     store,
		sink:      output.NewCSVSink(filepath.Join(config.Output.Dir, "records.csv"), logger),
		audit:     output.NewAuditLog(filepath.Join(config.Output.Dir, "audit.jsonl")),
		hub:       hub,
	}
	return a, nil
}

// Scrape runs the extraction pipeline over the configured links file.
func (a *App) Scrape(ctx context.Context) (*models.BatchResult, error) {
	links, err := pipeline.LoadLinks(a.config.Scrape.LinksFile)
	if err != nil {
		return nil, err
	}

	controller := pipeline.NewController(pipeline.ControllerDeps{
		Manager:   a.manager,
		Navigator: a.navigator,
		Rules:     a.rules,
		Miner:     a.miner,
		Capturer:  a.capturer,
		Optimizer: a.optimizer,
		Analyzer:  a.analyzer,
		Sink:      a.sink,
		Audit:     a.audit,
		Store:     a.store,
		Events:    a.hub,
		Logger:    a.logger,
	}, a.config.Scrape.VisualMode, a.config.Scrape.BetweenPostsDuration())

	return controller.Run(ctx, links)
}

// RepairField backfills one field across the target dataset: "store" (the
// local record database, default) or "csv" (the records CSV in place).
func (a *App) RepairField(ctx context.Context, target string, field models.RepairField) *models.RepairReport {
	engine, err := a.repairEngine(target)
	if err != nil {
		return &models.RepairReport{Message: err.Error()}
	}
	return engine.RepairField(ctx, field)
}

// RepairAllFields backfills every field in the standard order.
func (a *App) RepairAllFields(ctx context.Context, target string) *models.RepairAllReport {
	engine, err := a.repairEngine(target)
	if err != nil {
		return &models.RepairAllReport{Message: err.Error()}
	}
	return engine.RepairAllFields(ctx)
}

func (a *App) repairEngine(target string) (*repair.Engine, error) {
	var dataset interfaces.Dataset
	switch target {
	case "", "store":
		dataset = records.NewDataset(a.store)
	case "csv":
		dataset = output.NewCSVDataset(filepath.Join(a.config.Output.Dir, "records.csv"))
	default:
		return nil, fmt.Errorf("unknown repair target %q, expected store or csv", target)
	}

	if a.repairX == nil {
		a.repairX = repair.NewPageExtractor(a.manager, a.navigator, a.rules, a.miner, a.capturer, a.optimizer, a.logger)
	}
	return repair.NewEngine(
		dataset,
		a.audit,
		a.repairX,
		repair.NewVisionFieldAnalyzer(a.analyzer),
		a.logger,
	), nil
}

// Close releases every component. Safe to call once at shutdown.
func (a *App) Close() {
	if a.repairX != nil {
		a.repairX.Close()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close CSV output")
		}
	}
	if a.audit != nil {
		a.audit.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close record store")
		}
	}
}
