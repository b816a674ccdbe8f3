package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/app"
	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/models"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	linksFile    = flag.String("links", "", "Links file (overrides config)")
	repairField  = flag.String("repair", "", "Repair a field (likes, comments, shares, sender, date, group, content) or 'all'")
	repairTarget = flag.String("repair-target", "store", "Dataset the repair writes to: store or csv")
	schedule     = flag.String("schedule", "", "Cron expression for recurring scrape runs")
	showVersion  = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Specto version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if *configFile == "" {
		if _, err := os.Stat("specto.toml"); err == nil {
			*configFile = "specto.toml"
		}
	}

	config, err := common.LoadFromFile(*configFile)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Str("path", *configFile).Msg("Failed to load configuration")
		os.Exit(1)
	}
	if *linksFile != "" {
		config.Scrape.LinksFile = *linksFile
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case *repairField != "":
		runRepair(ctx, application, logger, *repairField, *repairTarget)
	case *schedule != "":
		runScheduled(ctx, application, logger, *schedule)
	default:
		runOnce(ctx, application, logger)
	}
}

func runOnce(ctx context.Context, application *app.App, logger arbor.ILogger) {
	result, err := application.Scrape(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Scrape run failed")
		os.Exit(1)
	}
	logBatch(logger, result)
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}

func runScheduled(ctx context.Context, application *app.App, logger arbor.ILogger, spec string) {
	var mu sync.Mutex
	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		if !mu.TryLock() {
			logger.Warn().Msg("Previous scheduled run still in progress, skipping")
			return
		}
		defer mu.Unlock()

		result, err := application.Scrape(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Scheduled scrape run failed")
			return
		}
		logBatch(logger, result)
	})
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", spec).Msg("Invalid cron expression")
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info().Str("schedule", spec).Msg("Scheduler started, waiting for runs")
	<-ctx.Done()
	scheduler.Stop()
	logger.Info().Msg("Scheduler stopped")
}

func runRepair(ctx context.Context, application *app.App, logger arbor.ILogger, field, target string) {
	if field == "all" {
		report := application.RepairAllFields(ctx, target)
		for _, detail := range report.Details {
			logger.Info().
				Str("field", string(detail.Field)).
				Bool("success", detail.Success).
				Int("updated", detail.Updated).
				Msg(detail.Message)
		}
		logger.Info().Bool("success", report.Success).Msg(report.Message)
		if !report.Success {
			os.Exit(1)
		}
		return
	}

	parsed := models.RepairField(field)
	if !models.ValidRepairField(parsed) {
		logger.Fatal().Str("field", field).Msg("Unknown repair field")
		os.Exit(1)
	}
	report := application.RepairField(ctx, target, parsed)
	logger.Info().Bool("success", report.Success).Int("updated", report.Updated).Msg(report.Message)
	if !report.Success {
		os.Exit(1)
	}
}

func logBatch(logger arbor.ILogger, result *models.BatchResult) {
	logger.Info().
		Int("processed", result.Processed).
		Int("succeeded", result.Succeeded).
		Int("failed", len(result.Failed)).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Batch completed")
	for _, failed := range result.Failed {
		logger.Warn().Str("url", failed.URL).Str("reason", failed.Reason).Msg("Link failed")
	}
}
