package utils

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"shopify-feed/internal/types"
)

const scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`

// ChromedpFactory launches one headless Chrome process per session
type ChromedpFactory struct {
	config *types.Config
}

// NewChromedpFactory creates the chromedp backend
func NewChromedpFactory(config *types.Config) *ChromedpFactory {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	return &ChromedpFactory{config: config}
}

// NewSession starts a fresh browser so no state leaks between navigations
func (f *ChromedpFactory) NewSession(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.config.UseHeadlessBrowser),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(f.config.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser now. Run with per-call timeouts later would
	// otherwise tie the browser lifetime to the first timeout.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &chromedpSession{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

// Close is a no-op; every session owns its browser
func (f *ChromedpFactory) Close() error {
	return nil
}

type chromedpSession struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// scoped returns a child of the browser context carrying the deadline and
// cancellation of ctx
func (s *chromedpSession) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	var c context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		c, cancel = context.WithDeadline(s.ctx, deadline)
	} else {
		c, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return c, func() {
		stop()
		cancel()
	}
}

func (s *chromedpSession) Navigate(ctx context.Context, url string, readiness Readiness) error {
	c, cancel := s.scoped(ctx)
	defer cancel()

	if readiness == ReadinessLoad {
		// chromedp.Navigate waits for the frame load event
		return chromedp.Run(c, chromedp.Navigate(url))
	}

	return chromedp.Run(c,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, _, errorText, err := page.Navigate(url).Do(ctx)
			if err != nil {
				return err
			}
			if errorText != "" {
				return fmt.Errorf("page load error %s", errorText)
			}
			return nil
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromedpSession) ScrollToBottom(ctx context.Context) (float64, error) {
	c, cancel := s.scoped(ctx)
	defer cancel()

	var height float64
	err := chromedp.Run(c, chromedp.Evaluate(scrollToBottomJS, &height))
	return height, err
}

func (s *chromedpSession) ScrollHeight(ctx context.Context) (float64, error) {
	c, cancel := s.scoped(ctx)
	defer cancel()

	var height float64
	err := chromedp.Run(c, chromedp.Evaluate(`document.body.scrollHeight`, &height))
	return height, err
}

func (s *chromedpSession) Content(ctx context.Context) (string, error) {
	c, cancel := s.scoped(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(c, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *chromedpSession) Close() error {
	// Cancelling the browser context closes the tab and kills the process
	s.cancel()
	return nil
}
