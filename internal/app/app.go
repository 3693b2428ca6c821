// Package app wires configuration into a complete spellcheck run: records in,
// report out.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-spellcheck/internal/aggregate"
	"github.com/JakeFAU/site-spellcheck/internal/analyze"
	"github.com/JakeFAU/site-spellcheck/internal/config"
	"github.com/JakeFAU/site-spellcheck/internal/crawler"
	collyfetcher "github.com/JakeFAU/site-spellcheck/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/site-spellcheck/internal/fetcher/headless"
	"github.com/JakeFAU/site-spellcheck/internal/hash/sha256"
	"github.com/JakeFAU/site-spellcheck/internal/metrics"
	"github.com/JakeFAU/site-spellcheck/internal/policy/ratelimit"
	"github.com/JakeFAU/site-spellcheck/internal/records"
	"github.com/JakeFAU/site-spellcheck/internal/report"
	"github.com/JakeFAU/site-spellcheck/internal/scheduler"
	"github.com/JakeFAU/site-spellcheck/internal/spelling"
	"github.com/JakeFAU/site-spellcheck/internal/storage/local"
	"github.com/JakeFAU/site-spellcheck/internal/telemetry"
)

// FetchEnvironment is a SessionPool that owns process-level resources, such
// as a browser, and must be closed once the run ends.
type FetchEnvironment interface {
	crawler.SessionPool
	Close() error
}

// Result is what a completed run produced.
type Result struct {
	Outcomes []crawler.Outcome
	Summary  aggregate.Summary
	Report   report.Report
	Stats    scheduler.Stats
}

// Option customizes an App.
type Option func(*App)

// WithFetchEnvironment replaces the configured fetch engine.
func WithFetchEnvironment(env FetchEnvironment) Option {
	return func(a *App) {
		a.openEnv = func(context.Context) (FetchEnvironment, error) { return env, nil }
	}
}

// WithChecker replaces the word-list dictionary.
func WithChecker(checker crawler.Checker) Option {
	return func(a *App) {
		a.loadChecker = func() (crawler.Checker, error) { return checker, nil }
	}
}

// WithRunInfo tags traces with the run id and build version.
func WithRunInfo(runID, version string) Option {
	return func(a *App) {
		a.runID = runID
		a.version = version
	}
}

// App runs one spellcheck pass.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	stdout      io.Writer
	runID       string
	version     string
	openEnv     func(context.Context) (FetchEnvironment, error)
	loadChecker func() (crawler.Checker, error)
}

// New builds an App. stdout receives the report unless report.output names a file.
func New(cfg config.Config, logger *zap.Logger, stdout io.Writer, opts ...Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
	}
	a.openEnv = a.defaultEnvironment
	a.loadChecker = a.defaultChecker
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the pipeline: validate, load records, schedule tasks, fold,
// render. The returned error is non-nil only for fatal problems; failed
// records are reported through Result.
func (a *App) Run(ctx context.Context) (Result, error) {
	if err := a.cfg.Validate(); err != nil {
		return Result{}, err
	}

	recs, err := records.Load(a.cfg.Input.Path)
	if err != nil {
		return Result{}, fmt.Errorf("load records: %w", err)
	}
	a.logger.Info("records loaded", zap.Int("count", len(recs)), zap.String("input", a.cfg.Input.Path))

	checker, err := a.loadChecker()
	if err != nil {
		return Result{}, fmt.Errorf("load dictionary: %w", err)
	}

	out, closeOut, err := a.reportOutput()
	if err != nil {
		return Result{}, err
	}
	defer closeOut()

	writer, err := a.reportWriter(out)
	if err != nil {
		return Result{}, err
	}

	store, err := a.artifactStore()
	if err != nil {
		return Result{}, err
	}

	tp, shutdownTracing, err := telemetry.InitTracerProvider(ctx, telemetry.Options{
		ServiceName: "spellcheck",
		Version:     a.version,
		RunID:       a.runID,
		TraceFile:   a.cfg.Tracing.File,
	})
	if err != nil {
		return Result{}, fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("flush traces failed", zap.Error(err))
		}
	}()

	outcomes, stats, err := a.schedule(ctx, recs, checker, store, tp)
	if err != nil {
		return Result{}, err
	}

	idx, summary := aggregate.Build(outcomes)
	rep := report.Build(idx, summary, recs)
	if err := writer.Write(rep); err != nil {
		return Result{}, fmt.Errorf("render report: %w", err)
	}

	a.logger.Info("run complete",
		zap.Int("attempted", summary.RecordsAttempted),
		zap.Int("processed", summary.RecordsProcessed),
		zap.Int("failed", summary.RecordsFailed),
		zap.Int("occurrences", summary.TotalOccurrences),
		zap.Int("unique_words", summary.UniqueWords),
		zap.Int("batches", stats.Batches),
		zap.Duration("elapsed", stats.Duration),
	)

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("write metrics textfile failed", zap.String("path", path), zap.Error(err))
		}
	}

	return Result{Outcomes: outcomes, Summary: summary, Report: rep, Stats: stats}, nil
}

func (a *App) schedule(
	ctx context.Context,
	recs []crawler.Record,
	checker crawler.Checker,
	store crawler.ArtifactStore,
	tp trace.TracerProvider,
) ([]crawler.Outcome, scheduler.Stats, error) {
	if len(recs) == 0 {
		return []crawler.Outcome{}, scheduler.Stats{}, nil
	}

	env, err := a.openEnv(ctx)
	if err != nil {
		return nil, scheduler.Stats{}, fmt.Errorf("open fetch environment: %w", err)
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			a.logger.Warn("close fetch environment failed", zap.Error(cerr))
		}
	}()

	var hasher crawler.Hasher
	if store != nil {
		hasher = sha256.New()
	}
	var limiter analyze.Waiter
	if a.cfg.Crawler.HostRPS > 0 {
		limiter = ratelimit.New(ratelimit.Config{
			RPS:   a.cfg.Crawler.HostRPS,
			Burst: a.cfg.Crawler.HostBurst,
		})
	}
	analyzer := analyze.New(checker, store, hasher, analyze.Config{
		FetchTimeout:   a.cfg.Crawler.FetchTimeout,
		ContextRadius:  a.cfg.Report.ContextRadius,
		ArtifactPrefix: a.cfg.Artifacts.Prefix,
		Limiter:        limiter,
	}, a.logger.Named("analyze"))

	sched, err := scheduler.New(env, analyzer.Process, scheduler.Config{
		BatchSize:      a.cfg.Crawler.BatchSize,
		TracerProvider: tp,
	}, a.logger.Named("scheduler"))
	if err != nil {
		return nil, scheduler.Stats{}, fmt.Errorf("build scheduler: %w", err)
	}

	outcomes, stats := sched.Run(ctx, recs)
	return outcomes, stats, nil
}

func (a *App) defaultEnvironment(_ context.Context) (FetchEnvironment, error) {
	switch a.cfg.Crawler.Engine {
	case config.EngineStatic:
		return collyfetcher.New(collyfetcher.Config{
			UserAgent:     a.cfg.Crawler.UserAgent,
			RespectRobots: a.cfg.Crawler.RespectRobots,
			Timeout:       a.cfg.Crawler.FetchTimeout,
		}), nil
	case config.EngineHeadless, "":
		waitUntil, err := headlessfetcher.ParseWaitUntil(a.cfg.Crawler.WaitUntil)
		if err != nil {
			return nil, err
		}
		browser, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			UserAgent:         a.cfg.Crawler.UserAgent,
			NavigationTimeout: a.cfg.Crawler.FetchTimeout,
			WaitUntil:         waitUntil,
			ExecPath:          a.cfg.Crawler.ChromePath,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("start headless browser: %w", err)
		}
		return browser, nil
	default:
		return nil, fmt.Errorf("unknown crawler engine %q", a.cfg.Crawler.Engine)
	}
}

func (a *App) defaultChecker() (crawler.Checker, error) {
	dict, err := spelling.Load(a.cfg.Spelling.DictionaryPath, spelling.Config{
		MinWordLength: a.cfg.Spelling.MinWordLength,
		ExtraWords:    a.cfg.Spelling.ExtraWords,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Debug("dictionary loaded",
		zap.String("path", a.cfg.Spelling.DictionaryPath),
		zap.Int("words", dict.Size()),
	)
	return dict, nil
}

func (a *App) reportOutput() (io.Writer, func(), error) {
	path := a.cfg.Report.Output
	if path == "" || path == "-" {
		if a.stdout == nil {
			return io.Discard, func() {}, nil
		}
		return a.stdout, func() {}, nil
	}
	f, err := os.Create(path) // #nosec G304 -- operator-chosen report path
	if err != nil {
		return nil, nil, fmt.Errorf("create report output: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			a.logger.Warn("close report output failed", zap.String("path", path), zap.Error(err))
		}
	}, nil
}

func (a *App) reportWriter(out io.Writer) (report.Writer, error) {
	format, err := report.ParseFormat(a.cfg.Report.Format)
	if err != nil {
		return nil, errors.Join(config.ErrInvalidConfig, err)
	}
	hl := report.Highlighter{Prefix: a.cfg.Report.HighlightPrefix, Suffix: a.cfg.Report.HighlightSuffix}
	writer, err := report.NewWriter(format, out, hl)
	if err != nil {
		return nil, fmt.Errorf("build report writer: %w", err)
	}
	return writer, nil
}

func (a *App) artifactStore() (crawler.ArtifactStore, error) {
	if a.cfg.Artifacts.Dir == "" {
		return nil, nil
	}
	store, err := local.New(local.Config{BaseDir: a.cfg.Artifacts.Dir})
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	return store, nil
}
