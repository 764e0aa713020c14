// Package config handles configuration loading and validation for calcam.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	History  HistoryConfig  `yaml:"history"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Analysis AnalysisConfig `yaml:"analysis"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// HistoryConfig controls the meal history retention.
type HistoryConfig struct {
	MaxEntries int    `yaml:"max_entries"`
	StorageKey string `yaml:"storage_key"`
}

// StorageConfig controls the local key-value storage file.
type StorageConfig struct {
	// QuotaBytes caps the storage file contents, like a browser's local storage quota.
	QuotaBytes int `yaml:"quota_bytes"`
}

// AIConfig configures the generative model used for estimates.
type AIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"` // parallel accompaniment lookups
}

// AnalysisConfig configures nutrient analysis over history.
type AnalysisConfig struct {
	RecentMeals int `yaml:"recent_meals"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		History: HistoryConfig{
			MaxEntries: 20,
			StorageKey: "calorieCamHistory",
		},
		Storage: StorageConfig{
			QuotaBytes: 5 * 1024 * 1024,
		},
		AI: AIConfig{
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
			Model:       "gemini-2.0-flash",
			Timeout:     60 * time.Second,
			Concurrency: 4,
		},
		Analysis: AnalysisConfig{
			RecentMeals: 5,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = defaults.History.MaxEntries
	}
	if c.History.StorageKey == "" {
		c.History.StorageKey = defaults.History.StorageKey
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = defaults.AI.BaseURL
	}
	if c.AI.Model == "" {
		c.AI.Model = defaults.AI.Model
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = defaults.AI.Timeout
	}
	if c.AI.Concurrency == 0 {
		c.AI.Concurrency = defaults.AI.Concurrency
	}
	if c.Analysis.RecentMeals == 0 {
		c.Analysis.RecentMeals = defaults.Analysis.RecentMeals
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}
	if c.History.MaxEntries < 1 {
		errs = errs.Append("history.max_entries", fmt.Errorf("must be at least 1"))
	}
	if c.History.StorageKey == "" {
		errs = errs.Append("history.storage_key", fmt.Errorf("cannot be empty"))
	}
	if c.Storage.QuotaBytes < 0 {
		errs = errs.Append("storage.quota_bytes", fmt.Errorf("cannot be negative"))
	}
	if c.AI.Timeout < 0 {
		errs = errs.Append("ai.timeout", fmt.Errorf("cannot be negative"))
	}
	if c.AI.Concurrency < 1 {
		errs = errs.Append("ai.concurrency", fmt.Errorf("must be at least 1"))
	}
	if c.Analysis.RecentMeals < 1 {
		errs = errs.Append("analysis.recent_meals", fmt.Errorf("must be at least 1"))
	}

	return errs.ToError()
}

// StorageFile returns the path to the key-value storage file.
func (c *Config) StorageFile() string {
	return filepath.Join(c.DataDir, "storage.json")
}
