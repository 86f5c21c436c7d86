package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConcurrency is the default number of tasks that may be executing
// concurrently within a single workflow (spec §5).
const DefaultConcurrency = 3

// DefaultPerTaskTimeoutMs bounds a worker+QC attempt pair (spec §5), in
// milliseconds so it round-trips through JSON without a duration string.
const DefaultPerTaskTimeoutMs = 10 * 60 * 1000

// DefaultMaxRetries is the default maxRetries a Task gets when its
// submission leaves it unset (spec §3).
const DefaultMaxRetries = 2

// DefaultEventBufferSize is the per-subscription eventbus buffer (spec §4.1).
const DefaultEventBufferSize = 256

// Config composes the orchestrator's component tunables, following the same
// Default/Merge/LoadConfig shape as kernel.Config.
type Config struct {
	Concurrency      int   `json:"concurrency,omitempty"`
	PerTaskTimeoutMs int64 `json:"perTaskTimeoutMs,omitempty"`
	MaxRetries       int   `json:"maxRetries,omitempty"`
	EventBufferSize  int   `json:"eventBufferSize,omitempty"`
}

// DefaultConfig returns a Config populated with spec §5/§4.1's defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:      DefaultConcurrency,
		PerTaskTimeoutMs: DefaultPerTaskTimeoutMs,
		MaxRetries:       DefaultMaxRetries,
		EventBufferSize:  DefaultEventBufferSize,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Concurrency > 0 {
		c.Concurrency = source.Concurrency
	}
	if source.PerTaskTimeoutMs > 0 {
		c.PerTaskTimeoutMs = source.PerTaskTimeoutMs
	}
	if source.MaxRetries > 0 {
		c.MaxRetries = source.MaxRetries
	}
	if source.EventBufferSize > 0 {
		c.EventBufferSize = source.EventBufferSize
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config, matching kernel.LoadConfig.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
