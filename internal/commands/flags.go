package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/calcam/internal/calcam"
	"github.com/hay-kot/calcam/internal/core/auth"
	"github.com/hay-kot/calcam/internal/core/config"
	"github.com/hay-kot/calcam/internal/core/history"
	"github.com/hay-kot/calcam/internal/core/kv"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	APIKey     string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Storage is the local key-value store backing history and sessions
	Storage kv.Store

	// History is the meal history store, hydrated lazily by the first
	// command that reads or writes it
	History *history.Store

	// Auth tracks the signed-in user
	Auth *auth.Provider

	// Service is the calcam service for orchestrating operations
	Service *calcam.Service
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "calcam", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "calcam")
}
