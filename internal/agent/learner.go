// internal/agent/learner.go
package agent

import (
	"github.com/rs/zerolog/log"
	"github.com/smartbook/scout/pkg/models"
)

// Learner applies incremental value updates to the table.
type Learner struct {
	table *Table
	alpha float64
}

// NewLearner creates a learner with the fixed learning rate alpha.
func NewLearner(table *Table, alpha float64) *Learner {
	return &Learner{table: table, alpha: alpha}
}

// Learn applies one incremental-mean step for (state, action):
//
//	estimate += alpha * (reward - estimate)
//
// and increments the visit count by exactly one. The read-modify-write runs
// atomically under the table lock, so concurrent learns on the same key apply
// in some serial order with no lost updates. Called exactly once per completed
// episode, before the episode is logged.
func (l *Learner) Learn(state StateKey, action models.Action, reward float64) Entry {
	updated := l.table.apply(state, action, func(e *Entry) {
		e.Estimate += l.alpha * (reward - e.Estimate)
		e.Visits++
	})

	log.Debug().
		Str("state", string(state)).
		Str("action", string(action)).
		Float64("reward", reward).
		Float64("estimate", updated.Estimate).
		Int("visits", updated.Visits).
		Msg("Value updated")

	return updated
}

// ApplyDelta applies a corrective step for late-arriving feedback:
//
//	estimate += alpha * (newReward - originalReward)
//
// The delta form avoids double-counting the automatic reward component that
// was already learned; the visit count is unchanged since no new attempt was
// observed.
func (l *Learner) ApplyDelta(state StateKey, action models.Action, delta float64) Entry {
	updated := l.table.apply(state, action, func(e *Entry) {
		e.Estimate += l.alpha * delta
	})

	log.Debug().
		Str("state", string(state)).
		Str("action", string(action)).
		Float64("delta", delta).
		Float64("estimate", updated.Estimate).
		Msg("Feedback correction applied")

	return updated
}
