package agent

import (
	"testing"
	"time"

	"github.com/smartbook/scout/pkg/models"
)

func TestEvaluateIdempotent(t *testing.T) {
	w := DefaultRewardWeights()
	outcome := models.Outcome{Success: true, Elapsed: 3 * time.Second, Quality: 1500}
	rating := 4

	first := w.Evaluate(outcome, &rating)
	for i := 0; i < 10; i++ {
		if got := w.Evaluate(outcome, &rating); got != first {
			t.Fatalf("Evaluate not idempotent: %v != %v", got, first)
		}
	}
}

func TestEvaluateSuccessDominatesFailure(t *testing.T) {
	w := DefaultRewardWeights()

	// Worst success: slowest possible, zero quality.
	worstSuccess := w.Evaluate(models.Outcome{
		Success: true,
		Elapsed: time.Minute,
		Quality: 0,
	}, nil)

	// Best failure: instant, maximum quality.
	bestFailure := w.Evaluate(models.Outcome{
		Success: false,
		Elapsed: 0,
		Quality: 100000,
	}, nil)

	if worstSuccess <= bestFailure {
		t.Fatalf("worst success %v should exceed best failure %v", worstSuccess, bestFailure)
	}
}

func TestEvaluateFasterSuccessScoresHigher(t *testing.T) {
	w := DefaultRewardWeights()

	fast := w.Evaluate(models.Outcome{Success: true, Elapsed: 300 * time.Millisecond, Quality: 1000}, nil)
	slow := w.Evaluate(models.Outcome{Success: true, Elapsed: 4 * time.Second, Quality: 1000}, nil)

	if fast <= slow {
		t.Fatalf("fast success %v should score above slow success %v", fast, slow)
	}
}

func TestEvaluateLatencyPenaltySaturates(t *testing.T) {
	w := DefaultRewardWeights()

	atRef := w.Evaluate(models.Outcome{Success: true, Elapsed: w.LatencyRef}, nil)
	wayPast := w.Evaluate(models.Outcome{Success: true, Elapsed: 10 * w.LatencyRef}, nil)

	if atRef != wayPast {
		t.Fatalf("penalty should saturate at the reference: %v != %v", atRef, wayPast)
	}
}

func TestEvaluateQualityBonusSaturates(t *testing.T) {
	w := DefaultRewardWeights()

	atRef := w.Evaluate(models.Outcome{Success: true, Quality: w.QualityRef}, nil)
	wayPast := w.Evaluate(models.Outcome{Success: true, Quality: 50 * w.QualityRef}, nil)

	if atRef != wayPast {
		t.Fatalf("bonus should saturate at the reference: %v != %v", atRef, wayPast)
	}
}

func TestEvaluateRating(t *testing.T) {
	w := DefaultRewardWeights()
	outcome := models.Outcome{Success: true, Elapsed: time.Second, Quality: 1000}
	base := w.Evaluate(outcome, nil)

	tests := []struct {
		rating int
		want   float64
	}{
		{1, base - w.Feedback},
		{2, base - w.Feedback/2},
		{3, base},
		{4, base + w.Feedback/2},
		{5, base + w.Feedback},
		{0, base - w.Feedback},  // clamped to 1
		{99, base + w.Feedback}, // clamped to 5
	}

	for _, tt := range tests {
		if got := w.Evaluate(outcome, &tt.rating); got != tt.want {
			t.Errorf("Evaluate with rating %d = %v, want %v", tt.rating, got, tt.want)
		}
	}
}
