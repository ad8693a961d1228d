// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"import-planner/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// CatalogPath is the path to the schema catalog file
	CatalogPath string `json:"catalog_path"`

	// OutputDir is where generated configuration blocks are written
	OutputDir string `json:"output_dir"`

	// Remote contains remote system client settings
	Remote RemoteConfig `json:"remote"`

	// Fetch contains remote fetch settings
	Fetch FetchConfig `json:"fetch"`

	// Ledger contains binding ledger settings
	Ledger LedgerConfig `json:"ledger"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// RemoteConfig contains remote system client settings
type RemoteConfig struct {
	// BaseURL is the remote system API endpoint
	BaseURL string `json:"base_url"`

	// Token is the API token; credential acquisition stays outside the core
	Token string `json:"token,omitempty"`
}

// FetchConfig contains remote state fetcher settings
type FetchConfig struct {
	// MaxRetries bounds retries of transient failures
	MaxRetries int `json:"max_retries"`

	// InitialDelayMS is the first backoff delay in milliseconds
	InitialDelayMS int `json:"initial_delay_ms"`

	// MaxDelayMS caps the backoff delay in milliseconds
	MaxDelayMS int `json:"max_delay_ms"`

	// TimeoutMS bounds a single plan's remote calls in milliseconds; 0 disables
	TimeoutMS int `json:"timeout_ms"`
}

// InitialDelay returns the initial backoff as a duration
func (f FetchConfig) InitialDelay() time.Duration {
	return time.Duration(f.InitialDelayMS) * time.Millisecond
}

// MaxDelay returns the backoff cap as a duration
func (f FetchConfig) MaxDelay() time.Duration {
	return time.Duration(f.MaxDelayMS) * time.Millisecond
}

// Timeout returns the per-request timeout as a duration
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMS) * time.Millisecond
}

// LedgerConfig contains binding ledger settings
type LedgerConfig struct {
	// Backend selects the persistence backend (memory, file, postgres)
	Backend string `json:"backend"`

	// Path is the ledger file location for the file backend
	Path string `json:"path"`

	// PostgresDSN is the connection string for the postgres backend
	PostgresDSN string `json:"postgres_dsn,omitempty"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".import-planner")

	return &Config{
		Version:     "1.0",
		CatalogPath: filepath.Join(base, "catalog.json"),
		OutputDir:   "generated",
		Fetch: FetchConfig{
			MaxRetries:     3,
			InitialDelayMS: 250,
			MaxDelayMS:     5000,
			TimeoutMS:      30000,
		},
		Ledger: LedgerConfig{
			Backend: "file",
			Path:    filepath.Join(base, "bindings.json"),
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
