package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"course-scraper/internal/app"
	"course-scraper/internal/browser"
	"course-scraper/internal/config"
	"course-scraper/internal/fetcher"
	"course-scraper/internal/normalize"
	"course-scraper/internal/observability"
	"course-scraper/internal/scraper"
	"course-scraper/internal/storage"
	"course-scraper/internal/storage/csvfile"
	"course-scraper/internal/storage/mssql"
)

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("url") || cmd.Flags().Changed("count") {
		if !cfg.OverrideTarget(targetURL, count) {
			fmt.Fprintf(os.Stderr, "invalid --url %q, falling back to %s\n", targetURL, config.DefaultTargetURL)
		}
	}
	if outPath != "" {
		cfg.Output.CoursesCSV = outPath
	}

	selectors, err := cfg.LoadSelectorsFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load selectors: %w", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogPath, cfg.Observability.LogLevel)
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", err)
		}
	}()

	logger.Info("Starting course scraper",
		"config", configPath,
		"selectors_version", selectors.Version,
		"targets", len(cfg.Targets),
		"courses_csv", cfg.Output.CoursesCSV,
		"categories_csv", cfg.Output.CategoriesCSV,
	)

	ctx, cancel := app.GracefulShutdown(cmd.Context(), logger, cfg.GetShutdownGraceTime())
	defer cancel()

	b, err := browser.Launch(cfg.Rod, logger)
	if err != nil {
		logger.Error("Browser launch failed", "error", err.Error())
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("Failed to close browser", "error", err.Error())
		}
	}()

	page, err := b.NewPage(ctx, cfg.HTTP.UserAgent)
	if err != nil {
		logger.Error("Page open failed", "error", err.Error())
		return err
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn("Failed to close page", "error", err.Error())
		}
	}()

	f := fetcher.NewFetcher(cfg, logger)
	imageDir := storage.NewImageDir(cfg.Image.Dir)

	scroller := scraper.NewScroller(page, cfg.Scroll.MaxSteps, logger)
	categories := scraper.NewCategoryResolver(page, selectors.Breadcrumb, selectors.BreadcrumbLink, cfg.GetRodBreadcrumbTimeout(), logger)
	images := scraper.NewImageResolver(scroller, f, imageDir, scraper.ImageOptions{
		Selectors:   selectors.Image,
		SizeFrom:    cfg.Image.SizeFrom,
		SizeTo:      cfg.Image.SizeTo,
		MaxAttempts: cfg.Image.MaxResolveAttempts,
		ScrollDelay: cfg.GetImageScrollStepDelay(),
		Backoff: func(attempt int) time.Duration {
			return fetcher.Backoff(attempt, cfg.GetBackoffMin(), cfg.GetBackoffMax(), cfg.Backoff.JitterPct)
		},
	}, logger)
	extractor := scraper.NewExtractor(selectors, normalize.NewNormalizer(cfg), categories, images, logger)

	sinks := []storage.Repository{
		csvfile.NewRepository(cfg.Output.CoursesCSV, cfg.Output.CategoriesCSV, logger),
	}
	if cfg.Storage.MSSQLDSN != "" {
		repo, err := mssql.NewRepository(cfg.Storage.MSSQLDSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			logger.Error("SQL Server mirror unavailable", "error", err.Error())
			return err
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close database", "error", err.Error())
			}
		}()
		sinks = append(sinks, repo)
	}

	orch := app.NewOrchestrator(cfg, selectors, logger, page, scroller, extractor, f, imageDir, sinks...)

	started := time.Now()
	run, err := orch.Run(ctx)
	if err != nil {
		logger.Error("Run failed", "error", err.Error(), "elapsed", time.Since(started))
		return err
	}

	for i, stats := range run.Targets {
		logger.Info("Target summary",
			"target", cfg.Targets[i].URL,
			"pages", stats.TotalPages,
			"cards", stats.TotalCards,
			"collected", stats.Collected,
			"skipped", stats.Skipped,
		)
	}
	logger.Info("Course scraper finished",
		"courses", run.Courses,
		"categories", run.Categories,
		"elapsed", time.Since(started),
	)

	return nil
}
