package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"PolicyCrawler/internal/config"
	"PolicyCrawler/internal/domain"
	"PolicyCrawler/internal/infrastructure/fetch"
	"PolicyCrawler/internal/infrastructure/parser"
	"PolicyCrawler/internal/infrastructure/scheduler"
	"PolicyCrawler/internal/infrastructure/storage"
	"PolicyCrawler/internal/infrastructure/telegram"
	"PolicyCrawler/internal/logging"
	"PolicyCrawler/internal/metrics"
	"PolicyCrawler/internal/ports"
	"PolicyCrawler/internal/scanner"
	"PolicyCrawler/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	metrics  *metrics.Metrics
	logger   *slog.Logger
	out      io.Writer
	now      func() time.Time
}

// Option customizes an Application.
type Option func(*Application)

// WithFetchers replaces the HTTP fetcher and the headless renderer.
func WithFetchers(fetcher, renderer ports.Fetcher) Option {
	return func(a *Application) {
		a.pipeline = a.buildPipeline(fetcher, renderer)
	}
}

// WithOutput redirects the run summary, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(a *Application) { a.out = w }
}

// WithClock fixes the time used for "today".
func WithClock(now func() time.Time) Option {
	return func(a *Application) { a.now = now }
}

// New builds a runnable application instance from validated config.
func New(cfg config.Config, baseLogger *slog.Logger, opts ...Option) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{
		cfg:     cfg,
		metrics: metrics.New(),
		logger:  baseLogger,
		out:     os.Stdout,
		now:     time.Now,
	}

	httpFetcher := fetch.NewHTTPFetcher(nil, cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	renderer := fetch.NewChromeRenderer(cfg.Fetch.RenderSettle, cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	a.pipeline = a.buildPipeline(httpFetcher, renderer)

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Application) buildPipeline(fetcher, renderer ports.Fetcher) *usecase.Pipeline {
	cfg := a.cfg
	log := a.logger

	registry := scanner.NewRegistry(parser.NewListExtractor(), parser.NewFeedExtractor())
	source := parser.NewStrategySource(registry, fetcher, renderer, parser.Limits{
		ItemsPerPage:         cfg.Limits.ItemsPerPage,
		RenderedItemsPerPage: cfg.Limits.RenderedItemsPerPage,
	}, log.With("component", "source"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Source:        source,
		Departments:   Departments(cfg),
		Snapshots:     storage.NewSnapshotWriter(cfg.Archive.SnapshotPath),
		Archive:       storage.NewArchiveStore(cfg.Archive.Path, a.today),
		Notifier:      notifier,
		Recorder:      a.metrics,
		RetentionDays: cfg.Archive.RetentionDays,
		Logger:        log.With("component", "pipeline"),
	})
}

// Departments converts configured departments into domain values, tagging
// the ones named in national_departments as national.
func Departments(cfg config.Config) []domain.Department {
	out := make([]domain.Department, 0, len(cfg.Departments))
	for _, d := range cfg.Departments {
		category := domain.CategoryProvincial
		if cfg.IsNational(d.Name) {
			category = domain.CategoryNational
		}
		out = append(out, domain.Department{
			Name:       d.Name,
			BaseURL:    d.BaseURL,
			PolicyURLs: d.PolicyURLs,
			Keywords:   d.Keywords,
			Category:   category,
			Extractor:  d.ExtractorName(),
			Render:     d.Render,
		})
	}
	return out
}

// Run performs a single crawl, or keeps crawling on the configured interval
// until ctx is cancelled when the scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	if !a.cfg.Scheduler.Enabled {
		_, err := a.RunOnce(ctx, a.today())
		return err
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Archive.Location())
	sched := usecase.NewScheduler(driver, runFunc(a.RunOnce), a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"interval", a.cfg.Scheduler.Interval.String(),
		"archive", a.cfg.Archive.Path,
		"snapshot", a.cfg.Archive.SnapshotPath)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}

// RunOnce executes the pipeline for now, exports metrics and prints the
// run summary.
func (a *Application) RunOnce(ctx context.Context, now time.Time) (usecase.Report, error) {
	report, err := a.pipeline.Run(ctx, now)
	a.exportMetrics()
	if err != nil {
		return report, err
	}

	fmt.Fprintf(a.out, "%s today=%d archived=%d new=%d failed_pages=%d\n",
		now.Format(domain.DateLayout), report.Found, report.ArchiveSize, report.NewlyArchived, report.FailedPages)
	return report, nil
}

// today is the application clock in the archive timezone.
func (a *Application) today() time.Time {
	return a.now().In(a.cfg.Archive.Location())
}

// Metrics exposes the run recorder.
func (a *Application) Metrics() *metrics.Metrics {
	return a.metrics
}

func (a *Application) exportMetrics() {
	path := a.cfg.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.logger.Warn("metrics textfile not written", "path", path, "error", err)
	}
}

type runFunc func(context.Context, time.Time) (usecase.Report, error)

func (f runFunc) Run(ctx context.Context, now time.Time) (usecase.Report, error) {
	return f(ctx, now)
}
