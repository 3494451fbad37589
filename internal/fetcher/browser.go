package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

var errFetcherClosed = errors.New("browser fetcher closed")

// BrowserFetcher implements Fetcher using a headless Chromium via Rod.
// One instance backs exactly one walk; its single tab is reused across pages.
type BrowserFetcher struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cfg      *config.FetcherConfig
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewBrowserFetcher launches and connects to a browser.
func NewBrowserFetcher(ctx context.Context, cfg *config.FetcherConfig, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:    cfg,
		logger: logger.With("component", "browser_fetcher"),
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-blink-features", "AutomationControlled")
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	bf.launcher = l

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Debug("browser fetcher ready", "stealth", cfg.Stealth, "headless", cfg.Headless)
	return bf, nil
}

// Fetch navigates to a URL and returns the rendered page content. It fails
// with a NavigationError unless the page loads and its network and DOM go
// quiet within the page timeout.
func (bf *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()

	page, err := bf.getPage()
	if err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: err}
	}

	p := page.Context(ctx).Timeout(bf.cfg.PageTimeout)
	defer p.CancelTimeout()

	if err := p.Navigate(rawURL); err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: fmt.Errorf("navigate: %w", err)}
	}
	if err := p.WaitLoad(); err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: fmt.Errorf("wait load: %w", err)}
	}
	if err := p.WaitStable(bf.cfg.StableWait); err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: fmt.Errorf("page did not settle: %w", err)}
	}

	html, err := p.HTML()
	if err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: fmt.Errorf("read html: %w", err)}
	}

	bf.logger.Debug("browser fetch complete",
		"url", rawURL,
		"size", len(html),
		"duration", time.Since(start),
	)
	return html, nil
}

// Close shuts down the tab and the browser process. Safe to call twice.
func (bf *BrowserFetcher) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	if bf.closed {
		return nil
	}
	bf.closed = true

	if bf.page != nil {
		_ = bf.page.Close()
	}
	var err error
	if bf.browser != nil {
		err = bf.browser.Close()
	}
	if bf.launcher != nil {
		bf.launcher.Kill()
		bf.launcher.Cleanup()
	}
	return err
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

// getPage returns the walk's tab, opening it on first use.
func (bf *BrowserFetcher) getPage() (*rod.Page, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	if bf.closed {
		return nil, errFetcherClosed
	}
	if bf.page != nil {
		return bf.page, nil
	}

	var (
		page *rod.Page
		err  error
	)
	if bf.cfg.Stealth {
		page, err = stealth.Page(bf.browser)
	} else {
		page, err = bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if bf.cfg.UserAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: bf.cfg.UserAgent})
		if err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	bf.page = page
	return page, nil
}
