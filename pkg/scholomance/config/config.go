// Package config loads the scholomance YAML configuration and builds
// the engine's components from it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/scholomance/pkg/scholomance/internalerr"
)

// DefaultAPIKeyEnv is read when lookup.api_key is empty.
const DefaultAPIKeyEnv = "SCHOLOMANCE_DICTIONARY_API_KEY"

// Duration is a time.Duration written in YAML as "120ms", "168h" etc.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the scholomance configuration file.
type Config struct {
	Engine     Engine     `yaml:"engine"`
	Dictionary Dictionary `yaml:"dictionary"`
	Lookup     Lookup     `yaml:"lookup"`
	Logging    Logging    `yaml:"logging"`
}

// Engine tunes the annotation engine.
type Engine struct {
	Concurrency     int      `yaml:"concurrency"`
	EnrichmentDelay Duration `yaml:"enrichment_delay"`
	NotifyDelay     Duration `yaml:"notify_delay"`
	FastCacheSize   int      `yaml:"fast_cache_size"`
	PositiveTTL     Duration `yaml:"positive_ttl"`
	NegativeTTL     Duration `yaml:"negative_ttl"`
	Version         string   `yaml:"version"`
}

// Dictionary points at the phonetic data files.
type Dictionary struct {
	V2Path         string `yaml:"v2_path"`
	CMUPath        string `yaml:"cmu_path"`
	CodaGroupsPath string `yaml:"coda_groups_path"`
	WordCacheSize  int    `yaml:"word_cache_size"`
}

// Lookup configures the external dictionary lookup.
type Lookup struct {
	Enabled   bool     `yaml:"enabled"`
	BaseURL   string   `yaml:"base_url"`
	APIKey    string   `yaml:"api_key"`
	APIKeyEnv string   `yaml:"api_key_env"`
	Timeout   Duration `yaml:"timeout"`
	CachePath string   `yaml:"cache_path"` // empty keeps responses in memory
	MaxAge    Duration `yaml:"max_age"`
}

// Logging selects level and handler format.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: Engine{
			Concurrency:     3,
			EnrichmentDelay: Duration(120 * time.Millisecond),
			PositiveTTL:     Duration(7 * 24 * time.Hour),
			NegativeTTL:     Duration(24 * time.Hour),
			Version:         "color-engine@1",
		},
		Dictionary: Dictionary{
			WordCacheSize: 5000,
		},
		Lookup: Lookup{
			Enabled:   true,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   Duration(15 * time.Second),
			MaxAge:    Duration(7 * 24 * time.Hour),
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Engine.Concurrency < 1:
		return fmt.Errorf("%w: engine.concurrency must be at least 1", internalerr.ErrInvalidConfig)
	case c.Engine.EnrichmentDelay < 0 || c.Engine.NotifyDelay < 0:
		return fmt.Errorf("%w: engine delays must not be negative", internalerr.ErrInvalidConfig)
	case c.Engine.FastCacheSize < 0:
		return fmt.Errorf("%w: engine.fast_cache_size must not be negative", internalerr.ErrInvalidConfig)
	case c.Engine.PositiveTTL <= 0 || c.Engine.NegativeTTL <= 0:
		return fmt.Errorf("%w: engine TTLs must be positive", internalerr.ErrInvalidConfig)
	case c.Engine.Version == "":
		return fmt.Errorf("%w: engine.version is required", internalerr.ErrInvalidConfig)
	case c.Lookup.Timeout < 0 || c.Lookup.MaxAge < 0:
		return fmt.Errorf("%w: lookup durations must not be negative", internalerr.ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json, got %q", internalerr.ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// ResolveAPIKey returns the lookup key from the file or the environment.
func (l Lookup) ResolveAPIKey() string {
	if l.APIKey != "" {
		return l.APIKey
	}
	if l.APIKeyEnv != "" {
		return os.Getenv(l.APIKeyEnv)
	}
	return ""
}
