// Package config defines the application configuration, loaded from YAML
// with defaults applied for anything unset.
package config

import (
	"fmt"
	"time"

	"github.com/c360studio/lrrit/model"
)

// Config is the top-level application configuration.
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Rubric RubricConfig `yaml:"rubric"`
	Eval   EvalConfig   `yaml:"eval"`
	Store  StoreConfig  `yaml:"store"`
	NATS   NATSConfig   `yaml:"nats"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// ModelConfig configures the collaborator model registry.
type ModelConfig struct {
	// RegistryFile optionally points to a JSON registry definition.
	// Empty uses the built-in defaults.
	RegistryFile string `yaml:"registry_file"`

	// Capabilities overrides capability to model mappings.
	Capabilities map[string]CapabilitySpec `yaml:"capabilities"`

	// Endpoints overrides endpoint definitions.
	Endpoints map[string]EndpointSpec `yaml:"endpoints"`
}

// CapabilitySpec mirrors model.CapabilityConfig for YAML.
type CapabilitySpec struct {
	Description string   `yaml:"description"`
	Preferred   string   `yaml:"preferred"`
	Fallback    []string `yaml:"fallback"`
}

// EndpointSpec mirrors model.EndpointConfig for YAML.
type EndpointSpec struct {
	Provider  string `yaml:"provider"`
	URL       string `yaml:"url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// RubricConfig configures dimension loading.
type RubricConfig struct {
	// Dir is the directory to discover dimension documents in.
	// Empty uses the built-in dimension set.
	Dir string `yaml:"dir"`

	// Patterns are doublestar globs applied under Dir.
	Patterns []string `yaml:"patterns"`

	// Watch reloads the registry on file changes (serve mode).
	Watch bool `yaml:"watch"`
}

// EvalConfig configures evaluation sessions.
type EvalConfig struct {
	// Dimensions limits evaluation to these ids. Empty means all.
	Dimensions []string `yaml:"dimensions"`

	// Concurrency limits in-flight collaborator calls. Zero is unlimited.
	Concurrency int `yaml:"concurrency"`

	// Timeout is the per-dimension collaborator call timeout.
	Timeout Duration `yaml:"timeout"`

	// Partial returns successful results alongside per-dimension failures.
	Partial bool `yaml:"partial"`
}

// StoreConfig configures report persistence.
type StoreConfig struct {
	// Path is the sqlite database file. Empty disables persistence.
	Path string `yaml:"path"`
}

// NATSConfig configures report publishing.
type NATSConfig struct {
	// URL is the NATS server address. Empty disables publishing.
	URL string `yaml:"url"`

	Stream        string `yaml:"stream"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Rubric: RubricConfig{
			Patterns: []string{"**/*.md"},
		},
		Eval: EvalConfig{
			Concurrency: 4,
			Timeout:     Duration(120 * time.Second),
			Partial:     true,
		},
		NATS: NATSConfig{
			Stream:        "LRRIT",
			SubjectPrefix: "lrrit",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Eval.Concurrency < 0 {
		return fmt.Errorf("eval.concurrency must not be negative")
	}
	if c.Eval.Timeout < 0 {
		return fmt.Errorf("eval.timeout must not be negative")
	}
	for name, ep := range c.Model.Endpoints {
		if ep.Provider == "" {
			return fmt.Errorf("model.endpoints.%s: provider is required", name)
		}
		if ep.URL == "" {
			return fmt.Errorf("model.endpoints.%s: url is required", name)
		}
	}
	for capName := range c.Model.Capabilities {
		if model.ParseCapability(capName) == "" {
			return fmt.Errorf("model.capabilities.%s: unknown capability", capName)
		}
	}
	if c.NATS.URL != "" && c.NATS.Stream == "" {
		return fmt.Errorf("nats.stream is required when nats.url is set")
	}
	return nil
}

// ModelRegistry builds the model registry from the configuration, starting
// from the defaults and applying any overrides.
func (c *Config) ModelRegistry() (*model.Registry, error) {
	registry := model.NewDefaultRegistry()

	if c.Model.RegistryFile != "" {
		loaded, err := model.LoadFromFile(c.Model.RegistryFile)
		if err != nil {
			return nil, fmt.Errorf("load model registry: %w", err)
		}
		registry = loaded
	}

	for name, spec := range c.Model.Capabilities {
		var preferred []string
		if spec.Preferred != "" {
			preferred = []string{spec.Preferred}
		}
		registry.SetCapability(model.ParseCapability(name), &model.CapabilityConfig{
			Description: spec.Description,
			Preferred:   preferred,
			Fallback:    spec.Fallback,
		})
	}
	for name, spec := range c.Model.Endpoints {
		registry.SetEndpoint(name, &model.EndpointConfig{
			Provider:  spec.Provider,
			URL:       spec.URL,
			Model:     spec.Model,
			MaxTokens: spec.MaxTokens,
		})
	}

	return registry, nil
}
