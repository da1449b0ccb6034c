package agent

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/smartbook/scout/pkg/models"
)

type stubInvoker struct {
	outcome models.Outcome

	mu      sync.Mutex
	actions []models.Action
}

func (s *stubInvoker) Execute(ctx context.Context, action models.Action, target string) models.Outcome {
	s.mu.Lock()
	s.actions = append(s.actions, action)
	s.mu.Unlock()
	return s.outcome
}

func (s *stubInvoker) lastAction() models.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions[len(s.actions)-1]
}

type stubProber struct {
	feats models.PageFeatures
}

func (s *stubProber) Probe(ctx context.Context, target string) models.PageFeatures {
	return s.feats
}

type memLog struct {
	mu       sync.Mutex
	episodes map[string]*models.Episode
	order    []string
}

func newMemLog() *memLog {
	return &memLog{episodes: make(map[string]*models.Episode)}
}

func (m *memLog) Append(ep *models.Episode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ep
	m.episodes[ep.ID] = &cp
	m.order = append(m.order, ep.ID)
	return nil
}

func (m *memLog) Get(id string) (*models.Episode, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ep, ok := m.episodes[id]
	if !ok {
		return nil, false, nil
	}
	cp := *ep
	return &cp, true, nil
}

func (m *memLog) SetRating(id string, rating int, correctedReward float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ep, ok := m.episodes[id]
	if !ok {
		return errors.New("episode not found")
	}
	ep.Rating = &rating
	ep.CorrectedReward = &correctedReward
	return nil
}

func (m *memLog) last() *models.Episode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.episodes[m.order[len(m.order)-1]]
}

type testAgent struct {
	agent    *Agent
	table    *Table
	invoker  *stubInvoker
	prober   *stubProber
	episodes *memLog
	persists int
}

func newTestAgent(epsilon float64, outcome models.Outcome) *testAgent {
	table := NewTable(0)
	ta := &testAgent{
		table:    table,
		invoker:  &stubInvoker{outcome: outcome},
		prober:   &stubProber{feats: models.PageFeatures{HTMLSize: 500}},
		episodes: newMemLog(),
	}
	ta.agent = New(Options{
		Table:    table,
		Selector: NewSelector(table, epsilon, rand.New(rand.NewSource(1))),
		Learner:  NewLearner(table, 0.1),
		Weights:  DefaultRewardWeights(),
		Invoker:  ta.invoker,
		Prober:   ta.prober,
		Episodes: ta.episodes,
		Persist: func() error {
			ta.persists++
			return nil
		},
	})
	return ta
}

func TestScrapeRunsFullEpisode(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{
		Success: true,
		Elapsed: time.Second,
		Quality: 1000,
		Content: "# Title",
	})

	result, err := ta.agent.Scrape(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if result.EpisodeID == "" {
		t.Fatal("episode ID should be set")
	}
	if !result.Outcome.Success {
		t.Fatal("outcome should carry the invoker's success")
	}

	wantReward := DefaultRewardWeights().Evaluate(models.Outcome{
		Success: true, Elapsed: time.Second, Quality: 1000,
	}, nil)
	if result.Reward != wantReward {
		t.Fatalf("reward = %v, want %v", result.Reward, wantReward)
	}

	// One learning step from prior zero.
	wantEstimate := 0.1 * wantReward
	if math.Abs(result.Estimate-wantEstimate) > 1e-12 {
		t.Fatalf("estimate = %v, want %v", result.Estimate, wantEstimate)
	}

	ep := ta.episodes.last()
	if ep.ID != result.EpisodeID || ep.Reward != result.Reward || ep.Action != result.Action {
		t.Fatalf("logged episode %+v does not match result %+v", ep, result)
	}
	if ta.persists == 0 {
		t.Fatal("scrape should flush the value table")
	}
}

func TestScrapeFailureLowersEstimate(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{Success: false, Elapsed: 5 * time.Second})

	result, err := ta.agent.Scrape(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if result.Reward >= 0 {
		t.Fatalf("failure reward %v should be negative", result.Reward)
	}
	if result.Estimate >= 0 {
		t.Fatalf("estimate %v should drop below the prior after a failure", result.Estimate)
	}
}

func TestScrapeFailuresShiftState(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{Success: false, Elapsed: time.Second})

	first, err := ta.agent.Scrape(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	second, err := ta.agent.Scrape(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if first.State == second.State {
		t.Fatal("prior failure should move the URL into a retry state")
	}

	// Success resets the counter.
	ta.invoker.outcome = models.Outcome{Success: true, Elapsed: time.Second, Quality: 100}
	if _, err := ta.agent.Scrape(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	fourth, err := ta.agent.Scrape(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if fourth.State != first.State {
		t.Fatalf("state after reset = %q, want %q", fourth.State, first.State)
	}
}

func TestScrapeWithForcesAction(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{Success: true, Elapsed: time.Second, Quality: 500})

	result, err := ta.agent.ScrapeWith(context.Background(), "https://example.com", models.ActionWaitRender)
	if err != nil {
		t.Fatalf("ScrapeWith failed: %v", err)
	}
	if result.Action != models.ActionWaitRender {
		t.Fatalf("action = %q, want forced %q", result.Action, models.ActionWaitRender)
	}
	if got := ta.invoker.lastAction(); got != models.ActionWaitRender {
		t.Fatalf("invoker saw %q, want %q", got, models.ActionWaitRender)
	}
	// Forced runs still learn.
	if e := ta.table.Get(StateKey(result.State), models.ActionWaitRender); e.Visits != 1 {
		t.Fatalf("forced run did not update the table: %+v", e)
	}
}

func TestScrapeWithRejectsUnknownAction(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{})
	if _, err := ta.agent.ScrapeWith(context.Background(), "https://example.com", "teleport"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestApplyFeedbackDelta(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{Success: true, Elapsed: time.Second, Quality: 1000})

	result, err := ta.agent.Scrape(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	before := ta.table.Get(StateKey(result.State), result.Action)

	entry, err := ta.agent.ApplyFeedback(result.EpisodeID, 5)
	if err != nil {
		t.Fatalf("ApplyFeedback failed: %v", err)
	}

	// Rating 5 adds exactly the full feedback weight to the original reward,
	// so the table moves by alpha times that delta.
	wantDelta := DefaultRewardWeights().Feedback
	want := before.Estimate + 0.1*wantDelta
	if math.Abs(entry.Estimate-want) > 1e-12 {
		t.Fatalf("estimate after feedback = %v, want %v", entry.Estimate, want)
	}
	if entry.Visits != before.Visits {
		t.Fatalf("feedback changed visits from %d to %d", before.Visits, entry.Visits)
	}

	ep, _, _ := ta.episodes.Get(result.EpisodeID)
	if ep.Rating == nil || *ep.Rating != 5 {
		t.Fatal("rating was not recorded on the episode")
	}
	if ep.CorrectedReward == nil || math.Abs(*ep.CorrectedReward-(result.Reward+wantDelta)) > 1e-12 {
		t.Fatal("corrected reward was not recorded")
	}
}

func TestApplyFeedbackDuplicateRejected(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{Success: true, Elapsed: time.Second, Quality: 1000})

	result, err := ta.agent.Scrape(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if _, err := ta.agent.ApplyFeedback(result.EpisodeID, 4); err != nil {
		t.Fatalf("first feedback failed: %v", err)
	}

	before := ta.table.Get(StateKey(result.State), result.Action)
	_, err = ta.agent.ApplyFeedback(result.EpisodeID, 2)
	if !errors.Is(err, ErrDuplicateFeedback) {
		t.Fatalf("expected ErrDuplicateFeedback, got %v", err)
	}
	after := ta.table.Get(StateKey(result.State), result.Action)
	if after != before {
		t.Fatal("rejected feedback mutated the table")
	}
}

func TestApplyFeedbackUnknownEpisode(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{})
	_, err := ta.agent.ApplyFeedback("no-such-id", 3)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyFeedbackRatingRange(t *testing.T) {
	ta := newTestAgent(0, models.Outcome{})
	for _, rating := range []int{0, 6, -1} {
		if _, err := ta.agent.ApplyFeedback("id", rating); err == nil {
			t.Fatalf("rating %d should be rejected", rating)
		}
	}
}
