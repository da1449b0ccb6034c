package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Learning parameters. Epsilon and Alpha are constant for a run unless the
	// optional decay schedule is configured; decay multiplies epsilon per
	// episode and never drops it below EpsilonMin.
	Epsilon      float64
	Alpha        float64
	EpsilonDecay float64
	EpsilonMin   float64
	Prior        float64
	Seed         int64 // 0 = seed from the clock

	// Reward weights
	RewardSuccess        float64
	RewardLatencyPenalty float64
	RewardLatencyRef     time.Duration
	RewardQualityBonus   float64
	RewardQualityRef     float64
	RewardFeedback       float64

	// Data locations
	DataDir       string
	ScreenshotDir string

	// HTTP/Browser
	UserAgent     string
	Proxy         string
	ChromePath    string
	Headless      bool
	HeavyTimeout  time.Duration
	LightTimeout  time.Duration
	WaitTimeout   time.Duration
	StaticTimeout time.Duration
	ProbeTimeout  time.Duration
	SettleWait    time.Duration

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

// ValueTablePath returns the path of the persisted value table snapshot.
func (c *Config) ValueTablePath() string {
	return filepath.Join(c.DataDir, DefaultValueTable)
}

// EpisodeDBPath returns the path of the episode log database.
func (c *Config) EpisodeDBPath() string {
	return filepath.Join(c.DataDir, DefaultEpisodeDB)
}

// Load builds a Config by combining defaults, an optional YAML config file,
// environment variables, and CLI flags (in that order of precedence).
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:             DefaultLogLevel,
		JSONLog:              DefaultJSONLog,
		UserAgent:            DefaultUserAgent,
		Epsilon:              DefaultEpsilon,
		Alpha:                DefaultAlpha,
		EpsilonDecay:         DefaultEpsilonDecay,
		EpsilonMin:           DefaultEpsilonMin,
		Prior:                DefaultPrior,
		RewardSuccess:        2.0,
		RewardLatencyPenalty: 0.5,
		RewardLatencyRef:     10 * time.Second,
		RewardQualityBonus:   0.5,
		RewardQualityRef:     2000,
		RewardFeedback:       1.5,
		DataDir:              DefaultDataDir,
		ScreenshotDir:        DefaultScreenshotDir,
		Headless:             DefaultHeadless,
		HeavyTimeout:         DefaultHeavyTimeout,
		LightTimeout:         DefaultLightTimeout,
		WaitTimeout:          DefaultWaitTimeout,
		StaticTimeout:        DefaultStaticTimeout,
		ProbeTimeout:         DefaultProbeTimeout,
		SettleWait:           DefaultSettleWait,
		RateLimitRPS:         DefaultRateLimitRPS,
		RateLimitBurst:       DefaultRateLimitBurst,
	}

	// Layer in the YAML file, if one is given or present
	path := ""
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("SCOUT_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SCOUT_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SCOUT_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("SCOUT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SCOUT_EPSILON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Epsilon = f
		}
	}
	if v := os.Getenv("SCOUT_ALPHA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Alpha = f
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		readFlags(cmd, cfg)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()

	if f := flags.Lookup("user-agent"); f != nil && f.Changed {
		cfg.UserAgent = f.Value.String()
	}
	if f := flags.Lookup("proxy"); f != nil && f.Changed {
		cfg.Proxy = f.Value.String()
	}
	if f := flags.Lookup("data-dir"); f != nil && f.Changed {
		cfg.DataDir = f.Value.String()
	}
	if f := flags.Lookup("epsilon"); f != nil && f.Changed {
		if v, err := strconv.ParseFloat(f.Value.String(), 64); err == nil {
			cfg.Epsilon = v
		}
	}
	if f := flags.Lookup("alpha"); f != nil && f.Changed {
		if v, err := strconv.ParseFloat(f.Value.String(), 64); err == nil {
			cfg.Alpha = v
		}
	}
	if f := flags.Lookup("seed"); f != nil && f.Changed {
		if v, err := strconv.ParseInt(f.Value.String(), 10, 64); err == nil {
			cfg.Seed = v
		}
	}
	if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
		cfg.JSONLog = true
	}
	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "quiet"
	}
}
