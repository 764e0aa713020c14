package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.AI.APIKey = "test-key"
	return &cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidate_InvalidFields(t *testing.T) {
	cfg := validConfig(t)
	cfg.History.MaxEntries = 0
	cfg.AI.Concurrency = -1
	cfg.Analysis.RecentMeals = 0

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 3)
	assert.Equal(t, "history.max_entries", fieldErrs[0].Field)
}

func TestValidate_MissingDataDir(t *testing.T) {
	cfg := validConfig(t)
	cfg.DataDir = ""

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig(t).ValidateDeep(""))
}

func TestValidateDeep_BadBaseURL(t *testing.T) {
	cfg := validConfig(t)
	cfg.AI.BaseURL = "ftp://example.com"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "ai.base_url", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "scheme")
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs[0].Err.Error(), "is a directory")
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestValidateDeep_IncludesShallowErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.History.StorageKey = ""
	cfg.AI.BaseURL = "::bad"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings())

	cfg.AI.APIKey = ""
	cfg.Storage.QuotaBytes = 0

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "api_key", warnings[0].Item)
	assert.Equal(t, "quota_bytes", warnings[1].Item)
}

func TestLoad(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		dataDir := t.TempDir()
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
		require.NoError(t, err)

		assert.Equal(t, 20, cfg.History.MaxEntries)
		assert.Equal(t, "calorieCamHistory", cfg.History.StorageKey)
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.Equal(t, filepath.Join(dataDir, "storage.json"), cfg.StorageFile())
	})

	t.Run("file overrides and defaults fill zero values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
history:
  max_entries: 50
ai:
  model: gemini-1.5-pro
  timeout: 30s
storage:
  quota_bytes: 1024
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path, t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, 50, cfg.History.MaxEntries)
		assert.Equal(t, "calorieCamHistory", cfg.History.StorageKey)
		assert.Equal(t, "gemini-1.5-pro", cfg.AI.Model)
		assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
		assert.Equal(t, 4, cfg.AI.Concurrency)
		assert.Equal(t, 1024, cfg.Storage.QuotaBytes)
		assert.Equal(t, 5, cfg.Analysis.RecentMeals)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("history:\n  max_entries: -3\n"), 0o644))

		_, err := Load(path, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "history.max_entries")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("history: [\n"), 0o644))

		_, err := Load(path, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file")
	})
}
