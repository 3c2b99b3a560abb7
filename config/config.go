// Package config provides configuration loading and management for
// webforge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete webforge configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	NATS      NATSConfig      `yaml:"nats"`
	Browser   BrowserConfig   `yaml:"browser"`
	Inference InferenceConfig `yaml:"inference"`
	Tasks     TasksConfig     `yaml:"tasks"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address (default: ":8000")
	Addr string `yaml:"addr"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// NATSConfig configures the NATS connection.
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// Embedded indicates whether to use embedded NATS
	Embedded bool `yaml:"embedded"`
}

// BrowserConfig configures the browser-automation provider.
type BrowserConfig struct {
	// APIKey authenticates against the provider
	APIKey string `yaml:"api_key"`
	// ProjectID scopes created sessions
	ProjectID string `yaml:"project_id"`
	// BaseURL overrides the provider API root
	BaseURL string `yaml:"base_url"`
}

// InferenceConfig configures the hosted NLP inference API.
type InferenceConfig struct {
	// Token authenticates against the inference API
	Token string `yaml:"token"`
	// BaseURL overrides the inference API root
	BaseURL string `yaml:"base_url"`
}

// TasksConfig configures task-record retention.
type TasksConfig struct {
	// TTL is how long terminal task records are kept (default: 24h)
	TTL time.Duration `yaml:"ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 10 * time.Second,
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
		},
		Tasks: TasksConfig{
			TTL: 24 * time.Hour,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Tasks.TTL < 0 {
		return fmt.Errorf("tasks.ttl must not be negative")
	}
	if (c.Browser.APIKey == "") != (c.Browser.ProjectID == "") {
		return fmt.Errorf("browser.api_key and browser.project_id must be set together")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
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

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
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

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}

	if other.Browser.APIKey != "" {
		c.Browser.APIKey = other.Browser.APIKey
	}
	if other.Browser.ProjectID != "" {
		c.Browser.ProjectID = other.Browser.ProjectID
	}
	if other.Browser.BaseURL != "" {
		c.Browser.BaseURL = other.Browser.BaseURL
	}

	if other.Inference.Token != "" {
		c.Inference.Token = other.Inference.Token
	}
	if other.Inference.BaseURL != "" {
		c.Inference.BaseURL = other.Inference.BaseURL
	}

	if other.Tasks.TTL != 0 {
		c.Tasks.TTL = other.Tasks.TTL
	}
}
