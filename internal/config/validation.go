package config

import "fmt"

func validate(c *Config) error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0,1], got %v", c.Epsilon)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0,1], got %v", c.Alpha)
	}
	if c.EpsilonDecay < 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in [0,1], got %v", c.EpsilonDecay)
	}
	if c.EpsilonMin < 0 {
		return fmt.Errorf("epsilon min must be >= 0, got %v", c.EpsilonMin)
	}
	// The floor only matters when decay is active; a plain epsilon of 0 is fine.
	if c.EpsilonDecay > 0 && c.EpsilonDecay < 1 && c.EpsilonMin > c.Epsilon {
		return fmt.Errorf("epsilon min (%v) must not exceed epsilon (%v)", c.EpsilonMin, c.Epsilon)
	}
	if c.RewardSuccess <= 0 {
		return fmt.Errorf("reward success weight must be > 0")
	}
	if c.RewardLatencyPenalty < 0 || c.RewardQualityBonus < 0 || c.RewardFeedback < 0 {
		return fmt.Errorf("reward weights must be >= 0")
	}
	// The success term must dominate so failures always score below successes.
	if c.RewardSuccess <= c.RewardLatencyPenalty+c.RewardQualityBonus {
		return fmt.Errorf("success weight (%v) must exceed latency penalty + quality bonus (%v)",
			c.RewardSuccess, c.RewardLatencyPenalty+c.RewardQualityBonus)
	}
	if c.RewardLatencyRef <= 0 {
		return fmt.Errorf("latency reference must be > 0")
	}
	if c.RewardQualityRef <= 0 {
		return fmt.Errorf("quality reference must be > 0")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit rps and burst must be > 0")
	}
	return nil
}
