package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate, this also checks file access and the AI endpoint URL.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	var fieldErrs criterio.FieldErrors
	if errors.As(c.Validate(), &fieldErrs) {
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		}
	}

	if u, err := url.Parse(c.AI.BaseURL); err != nil {
		errs = errs.Append("ai.base_url", fmt.Errorf("invalid url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = errs.Append("ai.base_url", fmt.Errorf("scheme must be http or https, got %q", u.Scheme))
	}

	return errs.ToError()
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.AI.APIKey == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "AI",
			Item:     "api_key",
			Message:  "no API key configured; estimate, suggest and analyze will fail (set ai.api_key or CALCAM_API_KEY)",
		})
	}

	if c.Storage.QuotaBytes == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     "quota_bytes",
			Message:  "storage quota disabled; the storage file can grow without bound",
		})
	}

	if c.History.MaxEntries > 50 {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "max_entries",
			Message:  fmt.Sprintf("%d entries is more than the dashboard and analysis use", c.History.MaxEntries),
		})
	}

	return warnings
}
