// Package executor implements the strategy execution capability consumed by
// the agent: four concrete scraping techniques (full browser render, fast
// browser render, settle-wait render, plain HTTP fetch) behind a single
// Execute seam.
//
// Per the adapter contract, strategy failures never escape as errors. A
// timeout, network error, parse error, or cancellation becomes a failed
// Outcome carrying the time spent, so the learner always receives a reward
// signal.
package executor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"

	"github.com/smartbook/scout/internal/ratelimit"
	"github.com/smartbook/scout/internal/retry"
	"github.com/smartbook/scout/pkg/models"
)

// Timeouts bound each strategy. The caller enforces the budget; no strategy
// blocks past its timeout.
type Timeouts struct {
	Heavy  time.Duration
	Light  time.Duration
	Wait   time.Duration
	Static time.Duration
	Probe  time.Duration
}

// Options configures a Runner.
type Options struct {
	Limiter       ratelimit.RateLimiter
	UserAgent     string
	Timeouts      Timeouts
	ScreenshotDir string        // heavy-render screenshots land here
	SettleWait    time.Duration // extra wait for wait-render to let dynamic content land
	Retry         retry.Config
	Headless      bool
	ChromePath    string
	Proxy         string
}

// Runner executes scraping strategies and probes page features.
type Runner struct {
	opts   Options
	client *http.Client
}

// New creates a Runner. The HTTP client keeps cookies per registrable domain
// so consecutive fetches against the same site behave like one visitor.
func New(opts Options) (*Runner, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := &http.Client{
		Timeout: opts.Timeouts.Static,
		Jar:     jar,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Runner{opts: opts, client: client}, nil
}

// Close releases idle connections.
func (r *Runner) Close() {
	r.client.CloseIdleConnections()
}

// Execute runs the chosen strategy against the target and reports the outcome.
// Every failure path returns Outcome{Success: false, Quality: 0} with the
// elapsed time, never an error.
func (r *Runner) Execute(ctx context.Context, action models.Action, target string) models.Outcome {
	start := time.Now()

	if r.opts.Limiter != nil {
		if err := r.opts.Limiter.Wait(ctx, target); err != nil {
			log.Warn().Err(err).Str("url", target).Msg("Rate limit wait interrupted")
			return failedOutcome(start)
		}
	}

	var content, screenshot string
	var err error

	switch action {
	case models.ActionHeavyRender:
		content, screenshot, err = r.heavyRender(ctx, target)
	case models.ActionLightRender:
		content, err = r.lightRender(ctx, target)
	case models.ActionWaitRender:
		content, err = r.waitRender(ctx, target)
	case models.ActionStaticFetch:
		content, err = r.staticFetch(ctx, target)
	default:
		err = fmt.Errorf("unknown action %q", action)
	}

	elapsed := time.Since(start)
	if err != nil {
		log.Warn().
			Err(err).
			Str("url", target).
			Str("action", string(action)).
			Dur("elapsed", elapsed).
			Msg("Strategy execution failed")
		return models.Outcome{Success: false, Elapsed: elapsed}
	}

	return models.Outcome{
		Success:    true,
		Elapsed:    elapsed,
		Quality:    float64(len(content)),
		Content:    content,
		Screenshot: screenshot,
	}
}

func failedOutcome(start time.Time) models.Outcome {
	return models.Outcome{Success: false, Elapsed: time.Since(start)}
}
