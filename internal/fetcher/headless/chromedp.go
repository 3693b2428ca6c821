// Package headless contains fetchers that execute JavaScript via browsers.
package headless

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

// WaitUntil names the navigation-completion condition a fetch waits for.
type WaitUntil string

const (
	// WaitDOMReady waits for the body element to be ready.
	WaitDOMReady WaitUntil = "dom_ready"
	// WaitLoad waits for document.readyState to reach "complete".
	WaitLoad WaitUntil = "load"
)

const defaultNavTimeout = 30 * time.Second

// visibleTextScript drops non-rendered elements and returns the body text.
const visibleTextScript = `(() => {
	document.querySelectorAll('script, style, noscript').forEach((el) => el.remove());
	return document.body ? document.body.innerText : '';
})()`

// ParseWaitUntil maps a config value onto a WaitUntil.
func ParseWaitUntil(raw string) (WaitUntil, error) {
	switch WaitUntil(strings.ToLower(strings.TrimSpace(raw))) {
	case "", WaitDOMReady:
		return WaitDOMReady, nil
	case WaitLoad:
		return WaitLoad, nil
	default:
		return "", fmt.Errorf("unknown wait condition %q", raw)
	}
}

// Config controls the behavior of the headless browser.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	WaitUntil         WaitUntil
	// ExecPath overrides the Chrome binary; empty uses chromedp's lookup.
	ExecPath string
}

// Browser owns one headless Chrome process and hands out one tab per
// session. It implements crawler.SessionPool.
type Browser struct {
	cfg             Config
	logger          *zap.Logger
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
}

// NewChromedp starts a headless browser. The caller must Close it.
func NewChromedp(cfg Config, logger *zap.Logger) (*Browser, error) {
	if cfg.NavigationTimeout < 0 {
		return nil, errors.New("navigation timeout must be >= 0")
	}
	if cfg.WaitUntil == "" {
		cfg.WaitUntil = WaitDOMReady
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Browser{
		cfg:             cfg,
		logger:          logger.Named("headless"),
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (b *Browser) Close() error {
	if b == nil {
		return nil
	}
	b.browserCancel()
	b.allocatorCancel()
	return nil
}

// Open creates a fresh tab.
func (b *Browser) Open(ctx context.Context) (crawler.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return &tab{browser: b, ctx: tabCtx, cancel: cancel}, nil
}

func (b *Browser) navTimeout() time.Duration {
	if b.cfg.NavigationTimeout > 0 {
		return b.cfg.NavigationTimeout
	}
	return defaultNavTimeout
}

type tab struct {
	browser *Browser
	ctx     context.Context
	cancel  context.CancelFunc
}

// Fetch navigates the tab to target and returns the visible text of the page.
func (t *tab) Fetch(ctx context.Context, target string) (string, error) {
	taskCtx, cancelTask := context.WithTimeout(t.ctx, t.browser.navTimeout())
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	start := time.Now()
	var text string
	err := chromedp.Run(taskCtx, t.actions(target, &text)...)
	if err != nil {
		if errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", crawler.ErrFetchTimeout, target)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("fetch canceled: %w", ctxErr)
		}
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	t.browser.logger.Debug("page rendered",
		zap.String("target", target),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

// Close releases the tab. It is safe to call more than once.
func (t *tab) Close() error {
	t.cancel()
	return nil
}

func (t *tab) actions(target string, text *string) []chromedp.Action {
	return []chromedp.Action{
		t.networkSetupAction(),
		chromedp.Navigate(target),
		waitAction(t.browser.cfg.WaitUntil),
		chromedp.Evaluate(visibleTextScript, text),
	}
}

func (t *tab) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if ua := t.browser.cfg.UserAgent; ua != "" {
			if err := emulation.SetUserAgentOverride(ua).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func waitAction(until WaitUntil) chromedp.Action {
	if until == WaitLoad {
		var complete bool
		return chromedp.Poll(`document.readyState === "complete"`, &complete,
			chromedp.WithPollingInterval(100*time.Millisecond))
	}
	return chromedp.WaitReady("body", chromedp.ByQuery)
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
