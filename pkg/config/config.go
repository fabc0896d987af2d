// Package config holds the comparison engine's configuration surface:
// embedding provider settings, the similarity threshold profile, the cache,
// and the annotator's concurrency bounds.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonderfulspam/semdiff/pkg/semantic"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
// Bad configuration is rejected here, before any comparison runs.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full configuration, loaded from a YAML file and merged over
// defaults.
type Config struct {
	Provider   ProviderConfig   `yaml:"provider"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Cache      CacheConfig      `yaml:"cache"`
	Annotator  AnnotatorConfig  `yaml:"annotator"`
	// SequenceAlignment selects how array elements are paired. Only
	// "positional" is supported.
	SequenceAlignment string `yaml:"sequence_alignment"`
}

// ProviderConfig holds embedding endpoint settings. An empty endpoint means
// no provider is configured and comparisons run structural-only.
type ProviderConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// SimilarityConfig names a threshold profile.
type SimilarityConfig struct {
	Profile    string              `yaml:"profile"`
	Thresholds semantic.Thresholds `yaml:"thresholds"`
}

// CacheConfig controls the embedding cache. An empty path keeps the cache
// in memory only; a path enables the persistent SQLite cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AnnotatorConfig bounds the semantic annotation pass.
type AnnotatorConfig struct {
	Workers        int `yaml:"workers"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Model: "all-MiniLM-L6-v2",
		},
		Similarity: SimilarityConfig{
			Profile:    "default",
			Thresholds: semantic.DefaultThresholds(),
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Annotator: AnnotatorConfig{
			Workers:        4,
			TimeoutSeconds: 10,
		},
		SequenceAlignment: "positional",
	}
}

// Load reads configuration from path, merged over defaults. A missing file
// yields the defaults; a present but invalid file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot honor.
func (c *Config) Validate() error {
	if err := c.Similarity.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.SequenceAlignment != "positional" {
		return fmt.Errorf("%w: unsupported sequence_alignment %q (only \"positional\")", ErrInvalidConfig, c.SequenceAlignment)
	}
	if c.Annotator.Workers < 1 {
		return fmt.Errorf("%w: annotator workers must be at least 1", ErrInvalidConfig)
	}
	if c.Annotator.TimeoutSeconds < 1 {
		return fmt.Errorf("%w: annotator timeout must be at least 1 second", ErrInvalidConfig)
	}
	if c.HasProvider() && c.Provider.Model == "" {
		return fmt.Errorf("%w: provider model is required when an endpoint is set", ErrInvalidConfig)
	}
	return nil
}

// HasProvider reports whether an embedding endpoint is configured.
func (c *Config) HasProvider() bool {
	return c.Provider.Endpoint != ""
}

// Timeout returns the per-record annotation timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Annotator.TimeoutSeconds) * time.Second
}
