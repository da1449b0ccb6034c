// internal/agent/reward.go
package agent

import (
	"time"

	"github.com/smartbook/scout/pkg/models"
)

// RewardWeights are the fixed blend constants for reward shaping. They are
// configuration, not learned values, and stay constant for a run.
type RewardWeights struct {
	// Success is added on success and subtracted on failure. It must exceed
	// LatencyPenalty+QualityBonus so the success term dominates: every failure
	// scores strictly below every success.
	Success float64

	// LatencyPenalty is the maximum penalty for slow strategies. The penalty
	// grows linearly with elapsed time and saturates at LatencyRef.
	LatencyPenalty float64
	LatencyRef     time.Duration

	// QualityBonus is the maximum bonus for rich extracted content. The bonus
	// grows linearly with the quality proxy and saturates at QualityRef.
	QualityBonus float64
	QualityRef   float64

	// Feedback scales the human rating term (rating-3)/2, mapping 1..5 ratings
	// to [-Feedback, +Feedback]. It outweighs the automatic latency and quality
	// terms combined, so a human rating can override a modest automatic signal.
	Feedback float64
}

// DefaultRewardWeights returns the standard blend. The dominance properties
// hold: Success (2.0) > LatencyPenalty+QualityBonus (1.0), and
// Feedback (1.5) > LatencyPenalty+QualityBonus.
func DefaultRewardWeights() RewardWeights {
	return RewardWeights{
		Success:        2.0,
		LatencyPenalty: 0.5,
		LatencyRef:     10 * time.Second,
		QualityBonus:   0.5,
		QualityRef:     2000,
		Feedback:       1.5,
	}
}

// Evaluate computes the scalar reward for an outcome, optionally blending in a
// human rating (1-5). It is a pure function: identical inputs always produce
// the identical reward.
func (w RewardWeights) Evaluate(outcome models.Outcome, rating *int) float64 {
	reward := -w.Success
	if outcome.Success {
		reward = w.Success
	}

	if w.LatencyRef > 0 {
		frac := float64(outcome.Elapsed) / float64(w.LatencyRef)
		if frac > 1 {
			frac = 1
		}
		if frac < 0 {
			frac = 0
		}
		reward -= w.LatencyPenalty * frac
	}

	if w.QualityRef > 0 {
		frac := outcome.Quality / w.QualityRef
		if frac > 1 {
			frac = 1
		}
		if frac < 0 {
			frac = 0
		}
		reward += w.QualityBonus * frac
	}

	if rating != nil {
		reward += w.Feedback * ratingSignal(*rating)
	}

	return reward
}

// ratingSignal maps a 1-5 rating onto [-1, +1] with 3 as neutral. Out-of-range
// ratings are clamped.
func ratingSignal(rating int) float64 {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	return float64(rating-3) / 2
}
