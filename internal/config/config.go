// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers a YAML file and INHOUSE_* environment variables on top.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
)

// Lock policies for concurrent actions on one tournament.
const (
	LockPolicyReject = "reject"
	LockPolicyWait   = "wait"
)

// Directory drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// JobQueueSize bounds the optimizer job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of optimizer workers.
	WorkerCount int `koanf:"worker_count"`

	// LedgerCacheSize bounds the scored-match id tracker (0 = unbounded).
	LedgerCacheSize int `koanf:"ledger_cache_size"`

	// LockPolicy is reject (fail with a concurrent modification error) or
	// wait (queue behind the running action).
	LockPolicy string `koanf:"lock_policy"`

	// Store selects the participant directory: memory or sqlite.
	Store string `koanf:"store"`

	// DatabasePath is the SQLite file used when Store is sqlite.
	DatabasePath string `koanf:"database_path"`

	// MaxStandingsLimit caps GET /v1/standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// Optimizer tuning.
	PreferenceWeight  float64 `koanf:"preference_weight"`
	MaxEpochs         int     `koanf:"max_epochs"`
	SearchBudgetMS    int     `koanf:"search_budget_ms"`
	FitnessThreshold  float64 `koanf:"fitness_threshold"`
	NeighborsPerEpoch int     `koanf:"neighbors_per_epoch"`

	// Seed feeds the optimizer; 0 derives a seed from the clock per cycle.
	Seed int64 `koanf:"seed"`

	// Prowess model weights.
	TierWeight    float64 `koanf:"tier_weight"`
	WinRateWeight float64 `koanf:"win_rate_weight"`
	RoleWeight    float64 `koanf:"role_weight"`

	// Rating lookup.
	RatingAccountURL string `koanf:"rating_account_url"`
	RatingLeagueURL  string `koanf:"rating_league_url"`
	RatingAPIKey     string `koanf:"rating_api_key"`
	RatingTimeoutMS  int    `koanf:"rating_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		JobQueueSize:      1_024,
		WorkerCount:       runtime.NumCPU(),
		LedgerCacheSize:   0,
		LockPolicy:        LockPolicyReject,
		Store:             StoreMemory,
		DatabasePath:      "inhouse.db",
		MaxStandingsLimit: 100,
		PreferenceWeight:  1.0,
		MaxEpochs:         1_000,
		SearchBudgetMS:    250,
		FitnessThreshold:  0,
		NeighborsPerEpoch: 16,
		Seed:              0,
		TierWeight:        5.0,
		WinRateWeight:     0.1,
		RoleWeight:        0.6,
		RatingAccountURL:  "https://americas.api.riotgames.com",
		RatingLeagueURL:   "https://na1.api.riotgames.com",
		RatingTimeoutMS:   3_000,
	}
}
