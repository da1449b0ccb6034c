// internal/agent/policy.go
package agent

import (
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/smartbook/scout/pkg/models"
)

// Selector picks actions epsilon-greedily over the value table.
//
// The random source is injected so selection is reproducible under a fixed
// seed. With probability epsilon an action is drawn uniformly from the
// available set; otherwise the highest-estimate action wins, ties broken by
// the declaration order of models.Actions.
type Selector struct {
	table *Table

	mu         sync.Mutex
	rng        *rand.Rand
	epsilon    float64
	decay      float64 // multiplicative per-episode factor; <=0 or >=1 disables decay
	epsilonMin float64
}

// NewSelector creates a selector over the given table.
func NewSelector(table *Table, epsilon float64, rng *rand.Rand) *Selector {
	return &Selector{
		table:   table,
		rng:     rng,
		epsilon: epsilon,
	}
}

// SetDecay configures an optional epsilon decay schedule. Epsilon is multiplied
// by factor after each Decay call and never drops below min, which keeps the
// schedule monotone non-increasing.
func (s *Selector) SetDecay(factor, min float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decay = factor
	s.epsilonMin = min
}

// Epsilon returns the current exploration rate.
func (s *Selector) Epsilon() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epsilon
}

// Decay applies one step of the decay schedule, if configured.
func (s *Selector) Decay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decay <= 0 || s.decay >= 1 {
		return
	}
	s.epsilon *= s.decay
	if s.epsilon < s.epsilonMin {
		s.epsilon = s.epsilonMin
	}
}

// Select picks an action for the state from the available set.
//
// An empty set is a programming error and fails with ErrInvalidState; selection
// never silently defaults to an action outside the provided set.
func (s *Selector) Select(state StateKey, available []models.Action) (models.Action, error) {
	if len(available) == 0 {
		return "", NewAgentError(ErrCodeInvalidState, "no actions available for selection", ErrInvalidState)
	}

	s.mu.Lock()
	explore := s.rng.Float64() < s.epsilon
	var pick int
	if explore {
		pick = s.rng.Intn(len(available))
	}
	s.mu.Unlock()

	if explore {
		action := available[pick]
		log.Debug().Str("state", string(state)).Str("action", string(action)).Msg("Exploring")
		return action, nil
	}

	best := s.exploit(state, available)
	log.Debug().Str("state", string(state)).Str("action", string(best)).Msg("Exploiting")
	return best, nil
}

// exploit returns the available action with the highest estimate. Candidates
// are scanned in models.Actions declaration order so ties resolve the same way
// every time.
func (s *Selector) exploit(state StateKey, available []models.Action) models.Action {
	allowed := make(map[models.Action]bool, len(available))
	for _, a := range available {
		allowed[a] = true
	}

	var best models.Action
	bestScore := 0.0
	found := false
	for _, a := range models.Actions {
		if !allowed[a] {
			continue
		}
		score := s.table.Estimate(state, a)
		if !found || score > bestScore {
			best = a
			bestScore = score
			found = true
		}
	}
	if !found {
		// Available set contained only unknown actions; fall back to its first
		// element rather than inventing one outside the set.
		return available[0]
	}
	return best
}
