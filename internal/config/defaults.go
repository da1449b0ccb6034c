package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel  = "warn"
	DefaultJSONLog   = false
	DefaultUserAgent = "Scout/1.0 (https://github.com/smartbook/scout)"

	DefaultEpsilon      = 0.2
	DefaultAlpha        = 0.1
	DefaultEpsilonDecay = 0.0 // disabled
	DefaultEpsilonMin   = 0.01
	DefaultPrior        = 0.0

	DefaultDataDir       = "data"
	DefaultValueTable    = "qtable.json"
	DefaultEpisodeDB     = "episodes.db"
	DefaultScreenshotDir = "screenshots"

	DefaultHeavyTimeout  = 30 * time.Second
	DefaultLightTimeout  = 15 * time.Second
	DefaultWaitTimeout   = 30 * time.Second
	DefaultStaticTimeout = 10 * time.Second
	DefaultProbeTimeout  = 5 * time.Second
	DefaultSettleWait    = 2 * time.Second

	DefaultRateLimitRPS   = 2.0
	DefaultRateLimitBurst = 4
	DefaultHeadless       = true
)
