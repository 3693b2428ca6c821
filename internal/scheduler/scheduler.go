// Package scheduler runs one fetch+analyze task per record in fixed-size,
// strictly sequential batches. Tasks inside a batch run concurrently, each
// with its own fetch session, and every session is closed before the next
// batch starts. Record-level failures never escape the scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/site-spellcheck/internal/crawler"
	"github.com/JakeFAU/site-spellcheck/internal/metrics"
)

// DefaultBatchSize is the number of records processed concurrently.
const DefaultBatchSize = 5

// ErrInvalidBatchSize is returned for a batch size of zero or less.
var ErrInvalidBatchSize = errors.New("batch size must be > 0")

// Task processes one record using the session it is handed.
type Task func(ctx context.Context, session crawler.Session, record crawler.Record) (*crawler.RecordResult, error)

const tracerName = "github.com/JakeFAU/site-spellcheck/internal/scheduler"

// Config controls batching.
type Config struct {
	BatchSize int
	// TracerProvider receives one span per batch and per record. Nil uses
	// the global provider.
	TracerProvider trace.TracerProvider
}

// Stats describes how a run was scheduled.
type Stats struct {
	Batches        int
	SessionsOpened int
	SessionsClosed int
	Duration       time.Duration
}

// Scheduler drives tasks over a SessionPool.
type Scheduler struct {
	cfg    Config
	pool   crawler.SessionPool
	task   Task
	tracer trace.Tracer
	logger *zap.Logger
}

// New validates cfg and builds a Scheduler.
func New(pool crawler.SessionPool, task Task, cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, cfg.BatchSize)
	}
	if pool == nil {
		return nil, errors.New("session pool is required")
	}
	if task == nil {
		return nil, errors.New("task is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Scheduler{
		cfg:    cfg,
		pool:   pool,
		task:   task,
		tracer: tp.Tracer(tracerName),
		logger: logger,
	}, nil
}

// BatchCount returns ceil(n/size).
func BatchCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Run processes every record and returns one outcome per record, in input
// order. If ctx ends between batches the remaining records are marked failed
// with the context error.
func (s *Scheduler) Run(ctx context.Context, records []crawler.Record) ([]crawler.Outcome, Stats) {
	start := time.Now()
	outcomes := make([]crawler.Outcome, len(records))
	stats := Stats{}
	total := BatchCount(len(records), s.cfg.BatchSize)

	for from := 0; from < len(records); from += s.cfg.BatchSize {
		to := min(from+s.cfg.BatchSize, len(records))
		if err := ctx.Err(); err != nil {
			s.logger.Warn("run canceled; skipping remaining records",
				zap.Int("remaining", len(records)-from), zap.Error(err))
			for i := from; i < len(records); i++ {
				outcomes[i] = crawler.Outcome{Record: records[i], Err: fmt.Errorf("not started: %w", err)}
			}
			break
		}

		stats.Batches++
		s.logger.Info("starting batch",
			zap.Int("batch", stats.Batches),
			zap.Int("of", total),
			zap.Int("size", to-from),
		)
		opened, closed := s.runBatch(ctx, stats.Batches, records[from:to], outcomes[from:to])
		stats.SessionsOpened += opened
		stats.SessionsClosed += closed
		metrics.ObserveBatch(to - from)
	}

	stats.Duration = time.Since(start)
	return outcomes, stats
}

// runBatch opens one session per record, runs the tasks concurrently, waits
// for all of them, then closes every opened session.
func (s *Scheduler) runBatch(ctx context.Context, number int, batch []crawler.Record, out []crawler.Outcome) (opened, closed int) {
	ctx, span := s.tracer.Start(ctx, "spellcheck.batch", trace.WithAttributes(
		attribute.Int("batch.number", number),
		attribute.Int("batch.size", len(batch)),
	))
	sessions := make([]crawler.Session, len(batch))
	defer func() {
		closed = s.closeSessions(sessions)
		span.SetAttributes(attribute.Int("batch.sessions_opened", opened))
		span.End()
	}()

	for i, record := range batch {
		session, err := s.pool.Open(ctx)
		if err != nil {
			out[i] = s.fail(record, fmt.Errorf("open session: %w", err))
			continue
		}
		sessions[i] = session
		opened++
		metrics.IncOpenSessions()
	}

	var g errgroup.Group
	for i, record := range batch {
		if sessions[i] == nil {
			continue
		}
		g.Go(func() error {
			out[i] = s.runTask(ctx, sessions[i], record)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // tasks report failures through their outcome
	return opened, 0
}

func (s *Scheduler) closeSessions(sessions []crawler.Session) int {
	closed := 0
	for _, session := range sessions {
		if session == nil {
			continue
		}
		if err := session.Close(); err != nil {
			s.logger.Warn("close session failed", zap.Error(err))
		}
		closed++
		metrics.DecOpenSessions()
	}
	return closed
}

func (s *Scheduler) runTask(ctx context.Context, session crawler.Session, record crawler.Record) (out crawler.Outcome) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "spellcheck.record", trace.WithAttributes(
		attribute.Int("record.index", record.Index),
		attribute.String("record.label", record.Label),
		attribute.String("record.target", record.Target),
	))
	defer func() {
		if r := recover(); r != nil {
			out = s.fail(record, &crawler.TaskPanicError{Value: r})
		}
		status := "success"
		if !out.OK() {
			status = "failure"
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, out.Err.Error())
		}
		span.SetAttributes(attribute.Int("record.misspellings", out.Result.Occurrences()))
		span.End()
		metrics.ObserveRecord(record.Target, status, time.Since(start), out.Result.Occurrences())
	}()

	result, err := s.task(ctx, session, record)
	if err != nil {
		return s.fail(record, err)
	}
	if result == nil {
		result = crawler.NewRecordResult(record)
	}
	return crawler.Outcome{Record: record, Result: result}
}

func (s *Scheduler) fail(record crawler.Record, err error) crawler.Outcome {
	s.logger.Warn("record failed",
		zap.Int("index", record.Index),
		zap.String("label", record.Label),
		zap.String("target", record.Target),
		zap.Error(err),
	)
	return crawler.Outcome{Record: record, Err: err}
}
