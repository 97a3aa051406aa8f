package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"shopify-feed/internal/types"
)

// PlaywrightFactory shares one Chromium process and opens a fresh browser
// context per session
type PlaywrightFactory struct {
	config  *types.Config
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewPlaywrightFactory starts the playwright driver and launches Chromium
func NewPlaywrightFactory(config *types.Config) (*PlaywrightFactory, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(config.UseHeadlessBrowser),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &PlaywrightFactory{config: config, pw: pw, browser: browser}, nil
}

// NewSession opens an isolated browser context with a single page
func (f *PlaywrightFactory) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := f.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(f.config.UserAgent),
		JavaScriptEnabled: playwright.Bool(true),
		AcceptDownloads:   playwright.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	return &playwrightSession{context: bctx, page: page}, nil
}

// Close shuts the browser and the driver down
func (f *PlaywrightFactory) Close() error {
	var errs []error
	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if f.pw != nil {
		if err := f.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

type playwrightSession struct {
	context playwright.BrowserContext
	page    playwright.Page
}

func (s *playwrightSession) Navigate(ctx context.Context, url string, readiness Readiness) error {
	timeout, err := remainingMillis(ctx)
	if err != nil {
		return err
	}

	waitUntil := playwright.WaitUntilStateLoad
	if readiness == ReadinessDOMContent {
		waitUntil = playwright.WaitUntilStateDomcontentloaded
	}

	_, err = s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntil,
		Timeout:   playwright.Float(timeout),
	})
	if err != nil && ctx.Err() != nil {
		// Report the budget overrun the way the chromedp backend does
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

func (s *playwrightSession) ScrollToBottom(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := s.page.Evaluate(`() => { window.scrollTo(0, document.body.scrollHeight); return document.body.scrollHeight; }`)
	if err != nil {
		return 0, err
	}
	return toFloat(v), nil
}

func (s *playwrightSession) ScrollHeight(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := s.page.Evaluate(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return toFloat(v), nil
}

func (s *playwrightSession) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.Content()
}

func (s *playwrightSession) Close() error {
	return s.context.Close()
}

func remainingMillis(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, nil // playwright treats 0 as no timeout
	}
	// Under a millisecond would round to 0, which playwright reads as unlimited
	remaining := time.Until(deadline)
	if remaining < time.Millisecond {
		return 0, context.DeadlineExceeded
	}
	return float64(remaining.Milliseconds()), nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
