package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/reqlog/internal/constants"
)

// writeConfig writes content to a config file inside a temporary directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), constants.DefaultFilePermissions))

	return path
}

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	return &Config{
		LogLevel:             "info",
		MaxBodySize:          "1MB",
		Timeout:              "30s",
		ContentTypeCacheSize: 16,
	}
}

// TestDefaultConfig tests that the defaults pass validation.
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, zapcore.InfoLevel, cfg.ParsedLogLevel)
	assert.Equal(t, int64(DefaultMaxBodySize), cfg.ParsedMaxBodySize)
	assert.Equal(t, 60*time.Second, cfg.ParsedTimeout)
	assert.Contains(t, cfg.FilterKeys, "password")
	assert.True(t, cfg.Color)
}

// TestLoadConfig tests the LoadConfig function.
func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		configContent string
		missing       bool
		expectedError string
		check         func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config file",
			configContent: `
log_level: "debug"
filter_keys: ["password", "pin"]
redaction_marker: "***"
max_body_size: "64 KB"
color: false
tags: ["billing"]
user_agent: "billing-probe/2.0"
timeout: "5s"
content_type_cache_size: 32
metrics: true
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, []string{"password", "pin"}, cfg.FilterKeys)
				assert.Equal(t, "***", cfg.RedactionMarker)
				assert.Equal(t, "64 KB", cfg.MaxBodySize)
				assert.False(t, cfg.Color)
				assert.Equal(t, []string{"billing"}, cfg.Tags)
				assert.Equal(t, "billing-probe/2.0", cfg.UserAgent)
				assert.Equal(t, "5s", cfg.Timeout)
				assert.Equal(t, 32, cfg.ContentTypeCacheSize)
				assert.True(t, cfg.Metrics)
			},
		},
		{
			name:          "partial file keeps defaults",
			configContent: "log_level: warn\n",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Equal(t, "warn", cfg.LogLevel)
				assert.Equal(t, "[FILTERED]", cfg.RedactionMarker)
				assert.Equal(t, DefaultContentTypeCacheSize, cfg.ContentTypeCacheSize)
				assert.True(t, cfg.Color)
			},
		},
		{
			name:          "non-existent explicit file",
			missing:       true,
			expectedError: "failed to read config from file",
		},
		{
			name:          "invalid yaml",
			configContent: "invalid: yaml: content: [unclosed\n",
			expectedError: "failed to read config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "missing.yaml")
			if !tt.missing {
				path = writeConfig(t, tt.configContent)
			}

			cfg, err := LoadConfig(path)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

// TestLoadConfig_DefaultFileMissing tests the fallback to defaults.
//
//nolint:paralleltest // Changes the working directory.
func TestLoadConfig_DefaultFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultConfig().FilterKeys, cfg.FilterKeys)
}

// TestLoadConfig_Environment tests REQLOG_* overrides.
//
//nolint:paralleltest // Sets environment variables.
func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("REQLOG_LOG_LEVEL", "error")
	t.Setenv("REQLOG_MAX_BODY_SIZE", "2 MB")

	cfg, err := LoadConfig(writeConfig(t, "log_level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "2 MB", cfg.MaxBodySize)
}

// TestValidateConfig tests the ValidateConfig function.
func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		modify      func(cfg *Config)
		expectedErr error
		errorMsg    string
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:        "invalid log level",
			modify:      func(cfg *Config) { cfg.LogLevel = "loud" },
			expectedErr: ErrUnknownLogLevel,
		},
		{
			name:     "invalid max body size",
			modify:   func(cfg *Config) { cfg.MaxBodySize = "lots" },
			errorMsg: "failed to parse max body size",
		},
		{
			name:        "zero max body size",
			modify:      func(cfg *Config) { cfg.MaxBodySize = "0" },
			expectedErr: ErrInvalidMaxBodySize,
		},
		{
			name:     "invalid timeout",
			modify:   func(cfg *Config) { cfg.Timeout = "soon" },
			errorMsg: "failed to parse timeout",
		},
		{
			name:        "negative timeout",
			modify:      func(cfg *Config) { cfg.Timeout = "-1s" },
			expectedErr: ErrInvalidTimeout,
		},
		{
			name:        "zero cache size",
			modify:      func(cfg *Config) { cfg.ContentTypeCacheSize = 0 },
			expectedErr: ErrInvalidCacheSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := ValidateConfig(cfg)

			switch {
			case tt.expectedErr != nil:
				require.ErrorIs(t, err, tt.expectedErr)
			case tt.errorMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			default:
				require.NoError(t, err)
			}
		})
	}
}

// TestValidateConfig_DerivedFields tests the parsed values.
func TestValidateConfig_DerivedFields(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.LogLevel = "debug"
	cfg.MaxBodySize = "512 KiB"
	cfg.FilterKeys = []string{" password ", "", "token"}
	cfg.Tags = []string{"", "checkout"}

	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, zapcore.DebugLevel, cfg.ParsedLogLevel)
	assert.Equal(t, int64(512*1024), cfg.ParsedMaxBodySize)
	assert.Equal(t, 30*time.Second, cfg.ParsedTimeout)
	assert.Equal(t, []string{"password", "token"}, cfg.FilterKeys)
	assert.Equal(t, []string{"checkout"}, cfg.Tags)

	cfg.MaxBodySize = ""
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, int64(DefaultMaxBodySize), cfg.ParsedMaxBodySize)
}

// TestWriteDefaultConfig tests writing and re-reading the default file.
func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)

	require.NoError(t, WriteDefaultConfig(path, false))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, DefaultConfig().FilterKeys, cfg.FilterKeys)
	assert.Equal(t, int64(DefaultMaxBodySize), cfg.ParsedMaxBodySize)

	err = WriteDefaultConfig(path, false)
	require.ErrorIs(t, err, ErrConfigFileExists)

	require.NoError(t, WriteDefaultConfig(path, true))
}

// TestSetValue tests in-place updates of the config file.
func TestSetValue(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "# reqlog settings\nlog_level: info # verbosity\ncolor: true\n")

	require.NoError(t, SetValue(path, "log_level", "debug"))
	require.NoError(t, SetValue(path, "tags", "billing, nightly"))
	require.NoError(t, SetValue(path, "filter_keys", ""))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), "# reqlog settings")
	assert.Contains(t, string(content), "# verbosity")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(content, &decoded))

	assert.Equal(t, "debug", decoded["log_level"])
	assert.Equal(t, true, decoded["color"])
	assert.Equal(t, []any{"billing", "nightly"}, decoded["tags"])
	assert.Equal(t, []any{}, decoded["filter_keys"])

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "nightly"}, cfg.Tags)

	err = SetValue(path, "quality", "3")
	require.ErrorIs(t, err, ErrUnknownKey)
}

// TestSetValue_NewFile tests that a missing file is created.
func TestSetValue_NewFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "new.yaml")

	require.NoError(t, SetValue(path, "timeout", "10s"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "10s", cfg.Timeout)
}

// TestSetValue_MalformedFile tests a file whose root is not a mapping.
func TestSetValue_MalformedFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "- just\n- a list\n")

	err := SetValue(path, "timeout", "10s")
	require.ErrorIs(t, err, ErrMalformedConfig)
}
