// Package collyfetcher implements a static, non-JavaScript session pool using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

const defaultTimeout = 15 * time.Second

var errSessionClosed = errors.New("session closed")

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher implements crawler.SessionPool on top of a shared base collector.
// Each session gets its own clone.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnHTML(string, colly.HTMLCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.WithTransport(newHTTPTransport())
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c.SetRequestTimeout(cfg.Timeout)
	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Open returns a session backed by this fetcher. Sessions hold no network
// resources between fetches.
func (f *Fetcher) Open(ctx context.Context) (crawler.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open static session: %w", err)
	}
	return &session{fetcher: f}, nil
}

// Close is a no-op; it lets Fetcher stand in wherever a browser would be closed.
func (f *Fetcher) Close() error {
	return nil
}

type session struct {
	fetcher *Fetcher
	closed  atomic.Bool
}

// Fetch executes a single HTTP GET and returns the body's visible text.
func (s *session) Fetch(ctx context.Context, target string) (string, error) {
	if s.closed.Load() {
		return "", errSessionClosed
	}
	var (
		text     string
		found    bool
		fetchErr error
	)
	collector := s.fetcher.buildCollector(ctx)
	configureCollectorHooks(collector, &text, &found, &fetchErr)

	if err := runCollector(ctx, collector, target, &fetchErr); err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("no <body> in response from %s", target)
	}
	return text, nil
}

func (s *session) Close() error {
	s.closed.Store(true)
	return nil
}

func (f *Fetcher) buildCollector(ctx context.Context) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	return collector
}

func configureCollectorHooks(hooks collectorHooks, text *string, found *bool, fetchErr *error) {
	hooks.OnHTML("body", func(e *colly.HTMLElement) {
		*text = VisibleText(e.DOM)
		*found = true
	})
	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {},
	"dd": {}, "div": {}, "dl": {}, "dt": {}, "figcaption": {}, "footer": {},
	"form": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "main": {}, "nav": {}, "ol": {}, "p": {},
	"pre": {}, "section": {}, "table": {}, "td": {}, "th": {}, "tr": {}, "ul": {},
}

// VisibleText removes script, style, noscript and template elements from sel
// and returns its text with block elements separated by newlines.
func VisibleText(sel *goquery.Selection) string {
	sel.Find("script, style, noscript, template").Remove()
	var b strings.Builder
	writeText(&b, sel.Contents())
	return strings.TrimSpace(b.String())
}

func writeText(b *strings.Builder, nodes *goquery.Selection) {
	nodes.Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if name == "#text" {
			b.WriteString(s.Text())
			return
		}
		writeText(b, s.Contents())
		if _, block := blockElements[name]; block {
			b.WriteByte('\n')
		}
	})
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
