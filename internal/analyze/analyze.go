// Package analyze implements the per-record task: fetch the page text, run
// the spelling checker, and fold the findings into a RecordResult.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

// DefaultFetchTimeout bounds how long a single page fetch may take.
const DefaultFetchTimeout = 30 * time.Second

// Config controls the per-record task.
type Config struct {
	FetchTimeout  time.Duration
	ContextRadius int
	// ArtifactPrefix is prepended to stored page-text paths.
	ArtifactPrefix string
	// Limiter, when set, is waited on before every fetch.
	Limiter Waiter
}

// Waiter throttles fetches per target.
type Waiter interface {
	Wait(ctx context.Context, target string) error
}

// Analyzer runs one fetch+check task per record.
type Analyzer struct {
	cfg     Config
	checker crawler.Checker
	store   crawler.ArtifactStore
	hasher  crawler.Hasher
	logger  *zap.Logger
}

// New constructs an Analyzer. store and hasher are optional; when both are set
// the extracted page text is persisted before checking.
func New(
	checker crawler.Checker,
	store crawler.ArtifactStore,
	hasher crawler.Hasher,
	cfg Config,
	logger *zap.Logger,
) *Analyzer {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.ContextRadius <= 0 {
		cfg.ContextRadius = DefaultContextRadius
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		cfg:     cfg,
		checker: checker,
		store:   store,
		hasher:  hasher,
		logger:  logger,
	}
}

// Process fetches the record's target through session and returns its
// misspellings. Any error means the record contributes nothing.
func (a *Analyzer) Process(
	ctx context.Context,
	session crawler.Session,
	record crawler.Record,
) (*crawler.RecordResult, error) {
	a.logger.Info("processing record",
		zap.Int("index", record.Index),
		zap.String("label", record.Label),
		zap.String("target", record.Target),
	)

	text, err := a.fetch(ctx, session, record.Target)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		a.logger.Debug("page has no visible text",
			zap.String("label", record.Label),
			zap.String("target", record.Target),
		)
		return crawler.NewRecordResult(record), nil
	}

	if err := a.persist(ctx, record, text); err != nil {
		a.logger.Warn("store page text failed",
			zap.String("label", record.Label),
			zap.String("target", record.Target),
			zap.Error(err),
		)
	}

	result := Fold(record, text, a.checker.Check(text), a.cfg.ContextRadius)
	a.logger.Debug("record analyzed",
		zap.String("label", record.Label),
		zap.Int("words", len(result.Words)),
		zap.Int("occurrences", result.Occurrences()),
	)
	return result, nil
}

func (a *Analyzer) fetch(ctx context.Context, session crawler.Session, target string) (string, error) {
	if a.cfg.Limiter != nil {
		if err := a.cfg.Limiter.Wait(ctx, target); err != nil {
			return "", err
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	text, err := session.Fetch(fetchCtx, target)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %w", crawler.ErrFetchTimeout, a.cfg.FetchTimeout, err)
		}
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}
	return text, nil
}

func (a *Analyzer) persist(ctx context.Context, record crawler.Record, text string) error {
	if a.store == nil || a.hasher == nil {
		return nil
	}
	digest, err := a.hasher.Hash([]byte(record.Target))
	if err != nil {
		return fmt.Errorf("hash target: %w", err)
	}
	name := path.Join(strings.Trim(a.cfg.ArtifactPrefix, "/"), digest+".txt")
	if _, err := a.store.PutObject(ctx, name, "text/plain; charset=utf-8", []byte(text)); err != nil {
		return fmt.Errorf("put page text: %w", err)
	}
	return nil
}

// Fold turns checker spans into a RecordResult with one context snippet per
// occurrence. Spans are visited in text order; out-of-range spans are ignored.
func Fold(record crawler.Record, text string, spans []crawler.Span, radius int) *crawler.RecordResult {
	ordered := make([]crawler.Span, 0, len(spans))
	for _, span := range spans {
		if span.Start < 0 || span.End > len(text) || span.Start >= span.End {
			continue
		}
		ordered = append(ordered, span)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	result := crawler.NewRecordResult(record)
	for _, span := range ordered {
		result.Add(crawler.Occurrence{
			Word:    text[span.Start:span.End],
			Context: Snippet(text, span.Start, span.End, radius),
		})
	}
	return result
}
