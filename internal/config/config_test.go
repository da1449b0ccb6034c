package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Epsilon != DefaultEpsilon {
		t.Errorf("epsilon = %v, want %v", cfg.Epsilon, DefaultEpsilon)
	}
	if cfg.Alpha != DefaultAlpha {
		t.Errorf("alpha = %v, want %v", cfg.Alpha, DefaultAlpha)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("data dir = %q, want %q", cfg.DataDir, DefaultDataDir)
	}
	if cfg.RewardSuccess <= cfg.RewardLatencyPenalty+cfg.RewardQualityBonus {
		t.Error("default weights violate success dominance")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SCOUT_USER_AGENT", "custom-ua")
	t.Setenv("SCOUT_DATA_DIR", "/tmp/scout-test")
	t.Setenv("SCOUT_EPSILON", "0.35")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.UserAgent != "custom-ua" {
		t.Errorf("user agent = %q", cfg.UserAgent)
	}
	if cfg.DataDir != "/tmp/scout-test" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.Epsilon != 0.35 {
		t.Errorf("epsilon = %v", cfg.Epsilon)
	}
}

func TestLoadFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scout.yaml")
	yaml := "learning:\n  epsilon: 0.3\n  alpha: 0.25\ndata_dir: " + dir + "\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultsForTest()
	if err := loadFile(cfg, path); err != nil {
		t.Fatalf("loadFile failed: %v", err)
	}
	if cfg.Epsilon != 0.3 || cfg.Alpha != 0.25 {
		t.Errorf("file values not applied: epsilon=%v alpha=%v", cfg.Epsilon, cfg.Alpha)
	}
	if cfg.DataDir != dir {
		t.Errorf("data dir = %q, want %q", cfg.DataDir, dir)
	}
}

func TestLoadFileMissingExplicitPath(t *testing.T) {
	cfg := defaultsForTest()
	if err := loadFile(cfg, filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("an explicitly named missing config file should be an error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"epsilon above one", func(c *Config) { c.Epsilon = 1.5 }},
		{"epsilon negative", func(c *Config) { c.Epsilon = -0.1 }},
		{"alpha zero", func(c *Config) { c.Alpha = 0 }},
		{"alpha above one", func(c *Config) { c.Alpha = 1.1 }},
		{"epsilon min above epsilon", func(c *Config) { c.EpsilonMin = 0.9 }},
		{"success does not dominate", func(c *Config) {
			c.RewardSuccess = 0.8
			c.RewardLatencyPenalty = 0.5
			c.RewardQualityBonus = 0.5
		}},
		{"zero latency ref", func(c *Config) { c.RewardLatencyRef = 0 }},
		{"zero quality ref", func(c *Config) { c.RewardQualityRef = 0 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"zero rate limit", func(c *Config) { c.RateLimitRPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultsForTest()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}

	if err := validate(defaultsForTest()); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func defaultsForTest() *Config {
	return &Config{
		Epsilon:              DefaultEpsilon,
		Alpha:                DefaultAlpha,
		EpsilonDecay:         DefaultEpsilonDecay,
		EpsilonMin:           DefaultEpsilonMin,
		RewardSuccess:        2.0,
		RewardLatencyPenalty: 0.5,
		RewardLatencyRef:     10 * time.Second,
		RewardQualityBonus:   0.5,
		RewardQualityRef:     2000,
		RewardFeedback:       1.5,
		DataDir:              "data",
		RateLimitRPS:         2.0,
		RateLimitBurst:       4,
	}
}
