// Package agent implements the decision-and-learning core: state encoding,
// epsilon-greedy strategy selection over a persisted value table, reward
// shaping from scrape outcomes and human feedback, and incremental value
// updates.
package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smartbook/scout/pkg/models"
)

// Invoker is the consumed executor capability. Implementations must report
// strategy failures (timeout, network error, parse error, cancellation) as
// Outcome{Success: false} with the time spent and zero quality, never as a
// panic or error: the learner needs a reward signal for every attempt.
type Invoker interface {
	Execute(ctx context.Context, action models.Action, target string) models.Outcome
}

// Prober collects page features ahead of strategy selection. A failed probe
// returns unknown-bucket features rather than an error.
type Prober interface {
	Probe(ctx context.Context, target string) models.PageFeatures
}

// EpisodeLog is the append-only record of scrape attempts. Get reports
// found=false for unknown IDs; SetRating fills in the human rating and the
// recomputed reward on an existing record.
type EpisodeLog interface {
	Append(ep *models.Episode) error
	Get(id string) (ep *models.Episode, found bool, err error)
	SetRating(id string, rating int, correctedReward float64) error
}

// Agent ties the core together and runs the scrape-decide-learn loop.
type Agent struct {
	table    *Table
	selector *Selector
	learner  *Learner
	weights  RewardWeights
	invoker  Invoker
	prober   Prober
	episodes EpisodeLog
	actions  []models.Action

	// persist, when set, is called after every table mutation (e.g. to flush
	// the snapshot to disk). Failures are logged, not fatal.
	persist func() error

	failMu   sync.Mutex
	failures map[string]int // failed attempts per URL in this session
}

// Options configures a new Agent.
type Options struct {
	Table    *Table
	Selector *Selector
	Learner  *Learner
	Weights  RewardWeights
	Invoker  Invoker
	Prober   Prober
	Episodes EpisodeLog
	Actions  []models.Action // defaults to models.Actions
	Persist  func() error
}

// New creates an Agent from the assembled components.
func New(opts Options) *Agent {
	actions := opts.Actions
	if len(actions) == 0 {
		actions = models.Actions
	}
	return &Agent{
		table:    opts.Table,
		selector: opts.Selector,
		learner:  opts.Learner,
		weights:  opts.Weights,
		invoker:  opts.Invoker,
		prober:   opts.Prober,
		episodes: opts.Episodes,
		actions:  actions,
		persist:  opts.Persist,
		failures: make(map[string]int),
	}
}

// Table returns the agent's value table.
func (a *Agent) Table() *Table {
	return a.table
}

// Selector returns the agent's policy selector.
func (a *Agent) Selector() *Selector {
	return a.selector
}

// Scrape runs one full episode for the target URL: probe features, encode the
// state, pick a strategy, execute it, score the outcome, update the value
// table, and append the episode record.
//
// Strategy failures are absorbed into the reward signal; the returned error is
// reserved for internal contract violations (empty action set, episode log
// write failure).
func (a *Agent) Scrape(ctx context.Context, target string) (*models.ScrapeResult, error) {
	return a.scrape(ctx, target, "")
}

// ScrapeWith runs an episode with a caller-forced strategy instead of the
// policy's pick. The outcome still feeds the learner, so forced runs train
// the table too.
func (a *Agent) ScrapeWith(ctx context.Context, target string, forced models.Action) (*models.ScrapeResult, error) {
	if !forced.Valid() {
		return nil, fmt.Errorf("unknown strategy %q", forced)
	}
	return a.scrape(ctx, target, forced)
}

func (a *Agent) scrape(ctx context.Context, target string, forced models.Action) (*models.ScrapeResult, error) {
	feats := a.prober.Probe(ctx, target)
	feats.PriorFailures = a.failureCount(target)
	state := Encode(feats)

	action := forced
	if action == "" {
		var err error
		action, err = a.selector.Select(state, a.actions)
		if err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("url", target).
		Str("state", string(state)).
		Str("action", string(action)).
		Msg("Scraping")

	outcome := a.invoker.Execute(ctx, action, target)
	reward := a.weights.Evaluate(outcome, nil)
	entry := a.learner.Learn(state, action, reward)

	a.recordFailure(target, outcome.Success)

	episode := &models.Episode{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		URL:       target,
		State:     string(state),
		Action:    action,
		Success:   outcome.Success,
		Elapsed:   outcome.Elapsed,
		Quality:   outcome.Quality,
		Reward:    reward,
		Estimate:  entry.Estimate,
	}
	if err := a.episodes.Append(episode); err != nil {
		return nil, fmt.Errorf("failed to log episode: %w", err)
	}

	a.flush()
	a.selector.Decay()

	log.Info().
		Str("episode", episode.ID).
		Bool("success", outcome.Success).
		Dur("elapsed", outcome.Elapsed).
		Float64("reward", reward).
		Float64("estimate", entry.Estimate).
		Msg("Episode complete")

	return &models.ScrapeResult{
		EpisodeID: episode.ID,
		URL:       target,
		State:     string(state),
		Action:    action,
		Outcome:   outcome,
		Reward:    reward,
		Estimate:  entry.Estimate,
	}, nil
}

// ApplyFeedback blends a late-arriving human rating (1-5) into the value table.
//
// The original episode's reward is recomputed with the rating included, and the
// table moves by alpha times the reward delta only, so the automatic component
// learned at scrape time is not counted twice. Unknown episode IDs fail with
// ErrNotFound and mutate nothing; a second rating for the same episode fails
// with ErrDuplicateFeedback.
func (a *Agent) ApplyFeedback(episodeID string, rating int) (Entry, error) {
	if rating < 1 || rating > 5 {
		return Entry{}, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	ep, found, err := a.episodes.Get(episodeID)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to look up episode: %w", err)
	}
	if !found {
		return Entry{}, NewAgentError(ErrCodeNotFound, fmt.Sprintf("episode %s", episodeID), ErrNotFound)
	}
	if ep.Rating != nil {
		return Entry{}, NewAgentError(ErrCodeDuplicateFeedback, fmt.Sprintf("episode %s already rated %d", episodeID, *ep.Rating), ErrDuplicateFeedback)
	}

	outcome := models.Outcome{
		Success: ep.Success,
		Elapsed: ep.Elapsed,
		Quality: ep.Quality,
	}
	newReward := a.weights.Evaluate(outcome, &rating)
	delta := newReward - ep.Reward

	entry := a.learner.ApplyDelta(StateKey(ep.State), ep.Action, delta)

	if err := a.episodes.SetRating(episodeID, rating, newReward); err != nil {
		return Entry{}, fmt.Errorf("failed to record rating: %w", err)
	}

	a.flush()

	log.Info().
		Str("episode", episodeID).
		Int("rating", rating).
		Float64("delta", delta).
		Float64("estimate", entry.Estimate).
		Msg("Feedback applied")

	return entry, nil
}

func (a *Agent) flush() {
	if a.persist == nil {
		return
	}
	if err := a.persist(); err != nil {
		log.Warn().Err(err).Msg("Failed to persist value table")
	}
}

func (a *Agent) failureCount(target string) int {
	a.failMu.Lock()
	defer a.failMu.Unlock()
	return a.failures[target]
}

func (a *Agent) recordFailure(target string, success bool) {
	a.failMu.Lock()
	defer a.failMu.Unlock()
	if success {
		delete(a.failures, target)
		return
	}
	a.failures[target]++
}
