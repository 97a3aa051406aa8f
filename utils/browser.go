package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopify-feed/internal/types"
)

// Readiness is the navigation milestone a page load waits for
type Readiness int

const (
	// ReadinessLoad waits for the window load event
	ReadinessLoad Readiness = iota
	// ReadinessDOMContent waits for DOMContentLoaded only
	ReadinessDOMContent
)

func (r Readiness) String() string {
	if r == ReadinessLoad {
		return "load"
	}
	return "domcontentloaded"
}

// Session is one isolated browser context able to host a single navigation
type Session interface {
	Navigate(ctx context.Context, url string, readiness Readiness) error
	// ScrollToBottom scrolls the window down and returns the document height
	ScrollToBottom(ctx context.Context) (float64, error)
	ScrollHeight(ctx context.Context) (float64, error)
	Content(ctx context.Context) (string, error)
	Close() error
}

// SessionFactory opens isolated browser sessions
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// BrowserClient provides headless browser functionality
type BrowserClient struct {
	config  *types.Config
	logger  types.Logger
	factory SessionFactory
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewBrowserClient creates a browser client on top of the configured backend
func NewBrowserClient(config *types.Config, logger types.Logger) (*BrowserClient, error) {
	var factory SessionFactory
	switch config.BrowserBackend {
	case "", "chromedp":
		factory = NewChromedpFactory(config)
	case "playwright":
		pw, err := NewPlaywrightFactory(config)
		if err != nil {
			return nil, err
		}
		factory = pw
	default:
		return nil, fmt.Errorf("unknown browser backend: %s", config.BrowserBackend)
	}
	return NewBrowserClientWithFactory(config, logger, factory), nil
}

// NewBrowserClientWithFactory creates a browser client over an explicit session factory
func NewBrowserClientWithFactory(config *types.Config, logger types.Logger, factory SessionFactory) *BrowserClient {
	return &BrowserClient{
		config:  config,
		logger:  logger,
		factory: factory,
		sleep:   sleepContext,
	}
}

// Fetch retrieves the rendered HTML of a page. Navigation is bounded by
// config.Timeout; the session is closed on every return path.
func (b *BrowserClient) Fetch(ctx context.Context, url string) (string, error) {
	navCtx, cancel := context.WithTimeout(ctx, b.config.Timeout)
	defer cancel()

	session, err := b.factory.NewSession(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open browser session: %v", types.ErrFetch, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			b.logger.Debugf("Failed to close browser session for %s: %v", url, cerr)
		}
	}()

	if err := b.navigate(navCtx, session, url); err != nil {
		return "", err
	}

	b.autoScroll(ctx, session)

	if err := b.sleep(ctx, b.config.FinalSettle); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrFetch, err)
	}

	html, err := session.Content(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get page content: %v", types.ErrFetch, err)
	}

	b.logger.Debugf("Successfully retrieved page content from %s (%d bytes)", url, len(html))
	return html, nil
}

// navigate tries the load event first with a share of the budget, then
// falls back to DOMContentLoaded within whatever remains of it.
func (b *BrowserClient) navigate(ctx context.Context, session Session, url string) error {
	share := b.config.LoadShare
	if share <= 0 || share >= 1 {
		share = 0.6
	}
	loadCtx, cancel := context.WithTimeout(ctx, time.Duration(float64(b.config.Timeout)*share))
	err := session.Navigate(loadCtx, url, ReadinessLoad)
	cancel()
	if err == nil {
		return nil
	}
	b.logger.Debugf("Navigation to %s with %s readiness failed: %v", url, ReadinessLoad, err)

	if err := session.Navigate(ctx, url, ReadinessDOMContent); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %v", types.ErrFetchTimeout, url, b.config.Timeout)
		}
		return fmt.Errorf("%w: navigate %s: %v", types.ErrFetch, url, err)
	}
	b.logger.Debugf("Navigation to %s succeeded with %s readiness", url, ReadinessDOMContent)
	return nil
}

// autoScroll triggers lazy loading until the document height stops growing
// or MaxScrolls is reached. Errors only end the scrolling.
func (b *BrowserClient) autoScroll(ctx context.Context, session Session) {
	last, err := session.ScrollHeight(ctx)
	if err != nil {
		b.logger.Debugf("Auto-scroll skipped: %v", err)
		return
	}
	for i := 0; i < b.config.MaxScrolls; i++ {
		if _, err := session.ScrollToBottom(ctx); err != nil {
			b.logger.Debugf("Auto-scroll stopped: %v", err)
			return
		}
		if err := b.sleep(ctx, b.config.ScrollSettle); err != nil {
			return
		}
		height, err := session.ScrollHeight(ctx)
		if err != nil {
			b.logger.Debugf("Auto-scroll stopped: %v", err)
			return
		}
		if height == last {
			return
		}
		last = height
	}
	b.logger.Debugf("Auto-scroll reached the cap of %d iterations", b.config.MaxScrolls)
}

// Close releases the backend
func (b *BrowserClient) Close() error {
	if b.factory == nil {
		return nil
	}
	return b.factory.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
