package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of the optional config file. All fields are
// optional; zero values leave the defaults in place.
type fileConfig struct {
	LogLevel string `yaml:"log_level"`
	JSONLog  *bool  `yaml:"json_log"`

	Learning struct {
		Epsilon      *float64 `yaml:"epsilon"`
		Alpha        *float64 `yaml:"alpha"`
		EpsilonDecay *float64 `yaml:"epsilon_decay"`
		EpsilonMin   *float64 `yaml:"epsilon_min"`
		Prior        *float64 `yaml:"prior"`
	} `yaml:"learning"`

	Reward struct {
		Success        *float64      `yaml:"success"`
		LatencyPenalty *float64      `yaml:"latency_penalty"`
		LatencyRef     time.Duration `yaml:"latency_ref"`
		QualityBonus   *float64      `yaml:"quality_bonus"`
		QualityRef     *float64      `yaml:"quality_ref"`
		Feedback       *float64      `yaml:"feedback"`
	} `yaml:"reward"`

	DataDir       string `yaml:"data_dir"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	UserAgent  string `yaml:"user_agent"`
	Proxy      string `yaml:"proxy"`
	ChromePath string `yaml:"chrome_path"`
	Headless   *bool  `yaml:"headless"`

	RateLimitRPS   *float64 `yaml:"rate_limit_rps"`
	RateLimitBurst *int     `yaml:"rate_limit_burst"`
}

// defaultConfigFile is looked for when no --config flag is given.
const defaultConfigFile = "scout.yaml"

// loadFile layers a YAML config file onto cfg. When path is empty the default
// file is tried and silently skipped if absent; an explicit path must exist.
func loadFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.JSONLog != nil {
		cfg.JSONLog = *fc.JSONLog
	}
	if fc.Learning.Epsilon != nil {
		cfg.Epsilon = *fc.Learning.Epsilon
	}
	if fc.Learning.Alpha != nil {
		cfg.Alpha = *fc.Learning.Alpha
	}
	if fc.Learning.EpsilonDecay != nil {
		cfg.EpsilonDecay = *fc.Learning.EpsilonDecay
	}
	if fc.Learning.EpsilonMin != nil {
		cfg.EpsilonMin = *fc.Learning.EpsilonMin
	}
	if fc.Learning.Prior != nil {
		cfg.Prior = *fc.Learning.Prior
	}
	if fc.Reward.Success != nil {
		cfg.RewardSuccess = *fc.Reward.Success
	}
	if fc.Reward.LatencyPenalty != nil {
		cfg.RewardLatencyPenalty = *fc.Reward.LatencyPenalty
	}
	if fc.Reward.LatencyRef > 0 {
		cfg.RewardLatencyRef = fc.Reward.LatencyRef
	}
	if fc.Reward.QualityBonus != nil {
		cfg.RewardQualityBonus = *fc.Reward.QualityBonus
	}
	if fc.Reward.QualityRef != nil {
		cfg.RewardQualityRef = *fc.Reward.QualityRef
	}
	if fc.Reward.Feedback != nil {
		cfg.RewardFeedback = *fc.Reward.Feedback
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.ScreenshotDir != "" {
		cfg.ScreenshotDir = fc.ScreenshotDir
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.Proxy != "" {
		cfg.Proxy = fc.Proxy
	}
	if fc.ChromePath != "" {
		cfg.ChromePath = fc.ChromePath
	}
	if fc.Headless != nil {
		cfg.Headless = *fc.Headless
	}
	if fc.RateLimitRPS != nil {
		cfg.RateLimitRPS = *fc.RateLimitRPS
	}
	if fc.RateLimitBurst != nil {
		cfg.RateLimitBurst = *fc.RateLimitBurst
	}

	return nil
}
