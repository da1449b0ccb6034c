package models

import "time"

// Action identifies one concrete scraping technique the agent may apply to a page.
type Action string

const (
	ActionHeavyRender Action = "heavy-render"
	ActionLightRender Action = "light-render"
	ActionWaitRender  Action = "wait-render"
	ActionStaticFetch Action = "static-fetch"
)

// Actions lists every known action in declaration order. The policy selector
// breaks ties by this order, so it must stay stable.
var Actions = []Action{
	ActionHeavyRender,
	ActionLightRender,
	ActionWaitRender,
	ActionStaticFetch,
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// SizeUnknown marks an HTML size that could not be determined by the probe.
const SizeUnknown = -1

// PageFeatures describes the observable signals of a page before scraping.
// It is the input to the state encoder.
type PageFeatures struct {
	HTMLSize      int  `json:"html_size"` // bytes; SizeUnknown if the probe failed
	HasScripts    bool `json:"has_scripts"`
	HasCaptcha    bool `json:"has_captcha"`
	HasSpinner    bool `json:"has_spinner"`
	PriorFailures int  `json:"prior_failures"` // failed attempts for this URL in the current session
}

// Outcome is what a strategy execution produced. Executor failures are reported
// as Success=false with Quality=0, never as errors.
type Outcome struct {
	Success    bool          `json:"success"`
	Elapsed    time.Duration `json:"elapsed"`
	Quality    float64       `json:"quality"` // content-quality proxy (extracted text length)
	Content    string        `json:"content,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"` // file path, heavy-render only
}

// Episode is the record of one scrape attempt. Records are append-only; only the
// rating fields are filled in later, when human feedback arrives.
type Episode struct {
	ID              string        `json:"id"`
	CreatedAt       time.Time     `json:"created_at"`
	URL             string        `json:"url"`
	State           string        `json:"state"`
	Action          Action        `json:"action"`
	Success         bool          `json:"success"`
	Elapsed         time.Duration `json:"elapsed"`
	Quality         float64       `json:"quality"`
	Reward          float64       `json:"reward"`
	Estimate        float64       `json:"estimate"` // value estimate after the learning step
	Rating          *int          `json:"rating,omitempty"`
	CorrectedReward *float64      `json:"corrected_reward,omitempty"`
}

// ScrapeResult is returned to callers of a full scrape cycle.
type ScrapeResult struct {
	EpisodeID string  `json:"episode_id"`
	URL       string  `json:"url"`
	State     string  `json:"state"`
	Action    Action  `json:"action"`
	Outcome   Outcome `json:"outcome"`
	Reward    float64 `json:"reward"`
	Estimate  float64 `json:"estimate"`
}
