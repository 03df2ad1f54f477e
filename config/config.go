// Package config provides configuration loading and management for semfibo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semfibo/ontology"
)

// Config represents the complete semfibo configuration
type Config struct {
	Ontology OntologyConfig `yaml:"ontology"`
	Model    ModelConfig    `yaml:"model"`
	Server   ServerConfig   `yaml:"server"`
	Audit    AuditConfig    `yaml:"audit"`
}

// OntologyConfig configures where modules are read from and which set loads
type OntologyConfig struct {
	// BasePath is the directory module paths are relative to
	BasePath string `yaml:"base_path"`
	// ModuleSet is the set loaded at startup (default: core)
	ModuleSet string `yaml:"module_set"`
	// ModuleSets adds or overrides module sets by name (empty = built-in sets)
	ModuleSets map[string]ontology.ModuleSet `yaml:"module_sets,omitempty"`
	// Watch reloads the current set when its files change
	Watch bool `yaml:"watch"`
	// Debounce is the quiet period before a watched change triggers a reload
	Debounce time.Duration `yaml:"debounce"`
}

// ModelConfig configures the planner model
type ModelConfig struct {
	// Provider is lmstudio, ollama or openai
	Provider string `yaml:"provider"`
	// Endpoint is the OpenAI-compatible API base URL
	Endpoint string `yaml:"endpoint"`
	// Name is the model name sent with each request
	Name string `yaml:"name"`
	// Temperature controls planning randomness (0.0-1.0, default: 0.3)
	Temperature float64 `yaml:"temperature"`
	// Timeout bounds one model round trip
	Timeout time.Duration `yaml:"timeout"`
	// MaxAttempts is the number of tries for transient failures (default: 1)
	MaxAttempts int `yaml:"max_attempts"`
	// SingleStep disables multi-step plans for complex questions
	SingleStep bool `yaml:"single_step"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`
	// AllowedOrigins lists CORS origins (empty = any)
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AuditConfig configures the session log
type AuditConfig struct {
	// Enabled turns on the file sink
	Enabled bool `yaml:"enabled"`
	// Path is the JSON-lines session log
	Path string `yaml:"path"`
	// NATSURL additionally publishes entries to NATS when set
	NATSURL string `yaml:"nats_url"`
	// Subject is the NATS subject entries are published on
	Subject string `yaml:"subject"`
}

// Providers lists the accepted model.provider values.
var Providers = []string{"lmstudio", "ollama", "openai"}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ontology: OntologyConfig{
			BasePath:  "fibo-ontology",
			ModuleSet: ontology.SetCore,
			Debounce:  500 * time.Millisecond,
		},
		Model: ModelConfig{
			Provider:    "lmstudio",
			Endpoint:    "http://localhost:1234/v1",
			Name:        "google/gemma-3-12b",
			Temperature: 0.3,
			Timeout:     2 * time.Minute,
			MaxAttempts: 1,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Audit: AuditConfig{
			Path:    "logs/fibo_session.log",
			Subject: "semfibo.audit.session",
		},
	}
}

// Sets returns the built-in module sets overlaid with the configured ones.
func (c *Config) Sets() map[string]ontology.ModuleSet {
	sets := ontology.DefaultModuleSets()
	for name, set := range c.Ontology.ModuleSets {
		if set.Name == "" {
			set.Name = name
		}
		sets[name] = set
	}
	return sets
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Ontology.BasePath == "" {
		return fmt.Errorf("ontology.base_path is required")
	}
	sets := c.Sets()
	if _, ok := sets[c.Ontology.ModuleSet]; !ok {
		return fmt.Errorf("ontology.module_set %q is not defined", c.Ontology.ModuleSet)
	}
	for name, set := range sets {
		if len(set.Modules) == 0 {
			return fmt.Errorf("ontology.module_sets.%s has no modules", name)
		}
	}
	if c.Ontology.Debounce < 0 {
		return fmt.Errorf("ontology.debounce must not be negative")
	}
	if !slices.Contains(Providers, c.Model.Provider) {
		return fmt.Errorf("model.provider must be one of %v", Providers)
	}
	if c.Model.Endpoint == "" {
		return fmt.Errorf("model.endpoint is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Model.Timeout < 0 {
		return fmt.Errorf("model.timeout must not be negative")
	}
	if c.Model.MaxAttempts < 1 {
		return fmt.Errorf("model.max_attempts must be at least 1")
	}
	if c.Audit.Enabled && c.Audit.Path == "" {
		return fmt.Errorf("audit.path is required when audit is enabled")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Ontology
	if other.Ontology.BasePath != "" {
		c.Ontology.BasePath = other.Ontology.BasePath
	}
	if other.Ontology.ModuleSet != "" {
		c.Ontology.ModuleSet = other.Ontology.ModuleSet
	}
	if len(other.Ontology.ModuleSets) > 0 {
		if c.Ontology.ModuleSets == nil {
			c.Ontology.ModuleSets = make(map[string]ontology.ModuleSet)
		}
		for name, set := range other.Ontology.ModuleSets {
			c.Ontology.ModuleSets[name] = set
		}
	}
	if other.Ontology.Watch {
		c.Ontology.Watch = true
	}
	if other.Ontology.Debounce != 0 {
		c.Ontology.Debounce = other.Ontology.Debounce
	}

	// Model
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}
	if other.Model.MaxAttempts != 0 {
		c.Model.MaxAttempts = other.Model.MaxAttempts
	}
	if other.Model.SingleStep {
		c.Model.SingleStep = true
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if len(other.Server.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = other.Server.AllowedOrigins
	}

	// Audit
	if other.Audit.Enabled {
		c.Audit.Enabled = true
	}
	if other.Audit.Path != "" {
		c.Audit.Path = other.Audit.Path
	}
	if other.Audit.NATSURL != "" {
		c.Audit.NATSURL = other.Audit.NATSURL
	}
	if other.Audit.Subject != "" {
		c.Audit.Subject = other.Audit.Subject
	}
}
