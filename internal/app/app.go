// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smartbook/scout/internal/agent"
	"github.com/smartbook/scout/internal/config"
	"github.com/smartbook/scout/internal/episode"
	"github.com/smartbook/scout/internal/executor"
	"github.com/smartbook/scout/internal/ratelimit"
	"github.com/smartbook/scout/internal/retry"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Table       *agent.Table
	Episodes    *episode.Store
	RateLimiter ratelimit.RateLimiter
	Runner      *executor.Runner
	Agent       *agent.Agent
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It configures logging, loads the persisted value table (falling back to an
// empty one with a warning if the snapshot is corrupt), opens the episode log,
// and assembles the selector, learner, executors, and agent.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := initLogger(cfg)

	// Load the value table; a rejected snapshot is a warning, not a startup failure.
	table := agent.NewTable(cfg.Prior)
	if err := table.LoadFile(cfg.ValueTablePath()); err != nil {
		if !errors.Is(err, agent.ErrDataCorruption) {
			return nil, err
		}
	}

	episodes, err := episode.Open(cfg.EpisodeDBPath())
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	runner, err := executor.New(executor.Options{
		Limiter:   limiter,
		UserAgent: cfg.UserAgent,
		Timeouts: executor.Timeouts{
			Heavy:  cfg.HeavyTimeout,
			Light:  cfg.LightTimeout,
			Wait:   cfg.WaitTimeout,
			Static: cfg.StaticTimeout,
			Probe:  cfg.ProbeTimeout,
		},
		ScreenshotDir: cfg.ScreenshotDir,
		SettleWait:    cfg.SettleWait,
		Retry:         retry.DefaultConfig(),
		Headless:      cfg.Headless,
		ChromePath:    cfg.ChromePath,
		Proxy:         cfg.Proxy,
	})
	if err != nil {
		episodes.Close()
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	selector := agent.NewSelector(table, cfg.Epsilon, rng)
	if cfg.EpsilonDecay > 0 && cfg.EpsilonDecay < 1 {
		selector.SetDecay(cfg.EpsilonDecay, cfg.EpsilonMin)
	}
	learner := agent.NewLearner(table, cfg.Alpha)

	weights := agent.RewardWeights{
		Success:        cfg.RewardSuccess,
		LatencyPenalty: cfg.RewardLatencyPenalty,
		LatencyRef:     cfg.RewardLatencyRef,
		QualityBonus:   cfg.RewardQualityBonus,
		QualityRef:     cfg.RewardQualityRef,
		Feedback:       cfg.RewardFeedback,
	}

	tablePath := cfg.ValueTablePath()
	ag := agent.New(agent.Options{
		Table:    table,
		Selector: selector,
		Learner:  learner,
		Weights:  weights,
		Invoker:  runner,
		Prober:   runner,
		Episodes: episodes,
		Persist: func() error {
			return table.SaveFile(tablePath)
		},
	})

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Table:       table,
		Episodes:    episodes,
		RateLimiter: limiter,
		Runner:      runner,
		Agent:       ag,
		startTime:   time.Now(),
	}

	logger.Info().
		Float64("epsilon", cfg.Epsilon).
		Float64("alpha", cfg.Alpha).
		Int("known_states", table.Len()).
		Msg("Application initialized")
	return app, nil
}

func initLogger(cfg *config.Config) zerolog.Logger {
	logLevel := zerolog.WarnLevel // command output speaks for itself; logs are for problems
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	case "quiet":
		logLevel = zerolog.Disabled
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")
	return logger
}

// Close gracefully shuts down the application and all its resources.
//
// The value table is flushed to disk one final time, the episode log is
// closed, and idle HTTP connections are released. Errors during shutdown are
// logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if a.Table != nil {
		if err := a.Table.SaveFile(a.Config.ValueTablePath()); err != nil {
			a.Logger.Warn().Err(err).Msg("Error saving value table")
		}
	}

	if a.Episodes != nil {
		if err := a.Episodes.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing episode store")
		}
	}

	if a.Runner != nil {
		a.Runner.Close()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Debug().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
