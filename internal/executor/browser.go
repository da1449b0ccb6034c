// internal/executor/browser.go
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// heavyRender loads the page in headless Chrome, waits for the full load,
// captures a full-page screenshot, and extracts the rendered content.
func (r *Runner) heavyRender(ctx context.Context, target string) (string, string, error) {
	browserCtx, cancel := r.newBrowserContext(ctx, r.opts.Timeouts.Heavy)
	defer cancel()

	var statusCode int64
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Response.URL == target {
				statusCode = resp.Response.Status
			}
		}
	})

	var html string
	var shot []byte
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.FullScreenshot(&shot, 80),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", "", fmt.Errorf("heavy render failed: %w", err)
	}

	log.Debug().Str("url", target).Int64("status", statusCode).Msg("Heavy render completed")

	screenshot, err := r.saveScreenshot(shot)
	if err != nil {
		// The scrape itself succeeded; losing the screenshot is not fatal.
		log.Warn().Err(err).Msg("Failed to save screenshot")
		screenshot = ""
	}

	content, err := markdownFromHTML(html, target)
	if err != nil {
		return "", "", err
	}
	return content, screenshot, nil
}

// lightRender navigates with a short timeout and grabs whatever HTML is
// present, without waiting for the page to settle.
func (r *Runner) lightRender(ctx context.Context, target string) (string, error) {
	browserCtx, cancel := r.newBrowserContext(ctx, r.opts.Timeouts.Light)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("light render failed: %w", err)
	}

	return markdownFromHTML(html, target)
}

// waitRender navigates, then holds for a settle period so late JS-injected
// content can land before extraction.
func (r *Runner) waitRender(ctx context.Context, target string) (string, error) {
	browserCtx, cancel := r.newBrowserContext(ctx, r.opts.Timeouts.Wait)
	defer cancel()

	settle := r.opts.SettleWait
	if settle <= 0 {
		settle = 2 * time.Second
	}

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("wait render failed: %w", err)
	}

	return markdownFromHTML(html, target)
}

// newBrowserContext builds a chromedp context with the runner's allocator
// options and the per-strategy timeout layered on the caller's context.
func (r *Runner) newBrowserContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(r.opts.UserAgent),
	}
	if r.opts.ChromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(r.opts.ChromePath)}, allocOpts...)
	}
	if r.opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(r.opts.Proxy))
	}

	ctx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	ctx, browserCancel := chromedp.NewContext(ctx)

	cancel := func() {
		browserCancel()
		allocCancel()
		timeoutCancel()
	}
	return ctx, cancel
}

// saveScreenshot writes the screenshot bytes under the configured directory
// with a timestamped name, mirroring the heavy strategy's audit trail.
func (r *Runner) saveScreenshot(shot []byte) (string, error) {
	if len(shot) == 0 || r.opts.ScreenshotDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(r.opts.ScreenshotDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(r.opts.ScreenshotDir, fmt.Sprintf("screenshot_%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, shot, 0644); err != nil {
		return "", err
	}
	return path, nil
}
