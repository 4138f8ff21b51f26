package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INHOUSE_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if INHOUSE_CONFIG is set
//  3. env (prefix INHOUSE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// INHOUSE_QUEUE_SIZE -> queue_size. Underscores are kept so keys match
	// the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LockPolicy != LockPolicyReject && c.LockPolicy != LockPolicyWait:
		return fmt.Errorf("%w: %w %q, want %q or %q", ErrInvalidConfig, ErrUnknownLockPolicy, c.LockPolicy, LockPolicyReject, LockPolicyWait)
	case c.Store != StoreMemory && c.Store != StoreSQLite:
		return fmt.Errorf("%w: %w %q, want %q or %q", ErrInvalidConfig, ErrUnknownStore, c.Store, StoreMemory, StoreSQLite)
	case c.Store == StoreSQLite && c.DatabasePath == "":
		return fmt.Errorf("%w: database_path must be set for sqlite", ErrInvalidConfig)
	case c.PreferenceWeight < 0:
		return fmt.Errorf("%w: preference_weight must not be negative", ErrInvalidConfig)
	case c.MaxEpochs < 0 || c.SearchBudgetMS < 0 || c.NeighborsPerEpoch < 0:
		return fmt.Errorf("%w: %w: epochs, search budget and neighbors must not be negative", ErrInvalidConfig, ErrInvalidBudget)
	}
	return nil
}
