// Package config loads and exposes the frozen, process-wide configuration.
//
// A Config is built once via Load and never mutated afterward; every
// accessor is safe for concurrent use without locking because the
// underlying maps are never written to again.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MethodConfig is the per-service record keyed by service key in the
// top-level "methods" map of the YAML file.
type MethodConfig struct {
	Enabled          bool              `yaml:"enabled"`
	Title            string            `yaml:"title"`
	APIKey           string            `yaml:"api_key"`
	UserAgentPattern string            `yaml:"user_agent_pattern"`
	Credentials      map[string]string `yaml:"credentials"`
	Excluded         []string          `yaml:"excluded"`
}

// raw mirrors the on-disk YAML shape exactly; unknown top-level keys are
// ignored by yaml.v3's default decoding behavior.
type raw struct {
	UserAgent         string                  `yaml:"user_agent"`
	ExperimentBaseURL string                  `yaml:"experiment_base_url"`
	Methods           map[string]MethodConfig `yaml:"methods"`
}

// Config is the frozen, keyed registry of enabled services and their
// credentials. Construct with Load; never mutate the returned value.
type Config struct {
	userAgent         string
	experimentBaseURL string
	methods           map[string]MethodConfig
}

// MissingMethodError is returned by Get when a service key has no entry in
// the loaded config. Distinguishing it from a disabled-but-present entry
// lets callers fail startup, not a request, when a required key is absent.
type MissingMethodError struct {
	Key string
}

func (e *MissingMethodError) Error() string {
	return fmt.Sprintf("config: no method configured for key %q", e.Key)
}

// Load reads and parses the YAML file at path into a frozen Config.
// Required-key validation (RequireMethods) must be run explicitly by the
// caller so that a missing service section fails the process at startup
// rather than at first request. Credentials inside a section are not
// checked by Load or by RequireMethods.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if r.Methods == nil {
		r.Methods = map[string]MethodConfig{}
	}
	return &Config{
		userAgent:         r.UserAgent,
		experimentBaseURL: r.ExperimentBaseURL,
		methods:           r.Methods,
	}, nil
}

// RequireMethods asserts that every key in keys has an entry in the config,
// regardless of whether it is enabled. Intended to be called once at
// startup so a missing service section fails process start.
func (c *Config) RequireMethods(keys ...string) error {
	for _, k := range keys {
		if _, ok := c.methods[k]; !ok {
			return &MissingMethodError{Key: k}
		}
	}
	return nil
}

// IsEnabled reports whether the named service key is present and enabled.
// An absent key is treated as disabled, not as an error; startup validation
// is the responsibility of RequireMethods.
func (c *Config) IsEnabled(key string) bool {
	m, ok := c.methods[key]
	return ok && m.Enabled
}

// Get returns the MethodConfig for key and whether it was present.
func (c *Config) Get(key string) (MethodConfig, bool) {
	m, ok := c.methods[key]
	return m, ok
}

// UserAgent returns the global user agent string, empty if unset.
func (c *Config) UserAgent() string { return c.userAgent }

// ExperimentBaseURL returns the configured experiment-reporting base URL,
// empty if experiment reporting is disabled.
func (c *Config) ExperimentBaseURL() string { return c.experimentBaseURL }

// EnabledKeys returns every service key whose MethodConfig.Enabled is true.
// Order is unspecified; callers that need determinism should sort it.
func (c *Config) EnabledKeys() []string {
	keys := make([]string, 0, len(c.methods))
	for k, m := range c.methods {
		if m.Enabled {
			keys = append(keys, k)
		}
	}
	return keys
}
