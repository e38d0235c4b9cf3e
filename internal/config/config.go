package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/reqlog/internal/constants"
	"github.com/oshokin/reqlog/internal/logger"
	"github.com/oshokin/reqlog/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// FilterKeys lists body keys whose values are replaced before logging. Matching is case-insensitive.
	FilterKeys []string `mapstructure:"filter_keys" yaml:"filter_keys"`
	// RedactionMarker replaces the values of filtered keys.
	RedactionMarker string `mapstructure:"redaction_marker" yaml:"redaction_marker"`
	// MaxBodySize is the maximum body size captured for logging (e.g., "1 MB", "512KB").
	MaxBodySize string `mapstructure:"max_body_size" yaml:"max_body_size"`
	// Color enables ANSI colors in the exchange summary line.
	Color bool `mapstructure:"color" yaml:"color"`
	// Tags are attached to every logged exchange.
	Tags []string `mapstructure:"tags" yaml:"tags"`
	// UserAgent is sent when a request has no User-Agent header. Empty means "reqlog/<version>".
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// Timeout bounds a whole HTTP call (e.g., "30s", "2m").
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	// ContentTypeCacheSize is the number of parsed Content-Type headers kept in memory.
	ContentTypeCacheSize int `mapstructure:"content_type_cache_size" yaml:"content_type_cache_size"`
	// Metrics prints exchange metrics after a command completes.
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `mapstructure:"-" yaml:"-"`
	// ParsedMaxBodySize is the parsed body capture limit in bytes.
	ParsedMaxBodySize int64 `mapstructure:"-" yaml:"-"`
	// ParsedTimeout is the parsed HTTP call timeout.
	ParsedTimeout time.Duration `mapstructure:"-" yaml:"-"`
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".reqlog.yaml"

	// DefaultMaxBodySize is the default maximum size (in bytes) of a body captured for logging.
	DefaultMaxBodySize = 1 * 1000 * 1000 // 1 MB

	// DefaultContentTypeCacheSize is the default number of cached Content-Type headers.
	DefaultContentTypeCacheSize = 256

	// envPrefix is the prefix of environment variables overriding configuration keys.
	envPrefix = "REQLOG"
)

// Static error definitions for better error handling.
var (
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidMaxBodySize indicates that the body capture limit is not positive.
	ErrInvalidMaxBodySize = errors.New("max_body_size must be positive")
	// ErrInvalidTimeout indicates that the timeout is not positive.
	ErrInvalidTimeout = errors.New("timeout must be positive")
	// ErrInvalidCacheSize indicates that the content type cache size is not positive.
	ErrInvalidCacheSize = errors.New("content_type_cache_size must be a positive integer")
	// ErrConfigFileExists indicates that a config file would be overwritten.
	ErrConfigFileExists = errors.New("config file already exists")
	// ErrUnknownKey indicates a configuration key that reqlog does not define.
	ErrUnknownKey = errors.New("unknown configuration key")
	// ErrMalformedConfig indicates a config file whose root is not a mapping.
	ErrMalformedConfig = errors.New("config file root must be a mapping")
)

// listKeys are the keys holding string lists.
//
//nolint:gochecknoglobals // Immutable lookup table.
var listKeys = []string{"filter_keys", "tags"}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:             "info",
		FilterKeys:           []string{"password", "token", "secret", "api_key", "authorization"},
		RedactionMarker:      "[FILTERED]",
		MaxBodySize:          humanize.Bytes(DefaultMaxBodySize),
		Color:                true,
		Tags:                 []string{},
		UserAgent:            "",
		Timeout:              "60s",
		ContentTypeCacheSize: DefaultContentTypeCacheSize,
		Metrics:              false,
	}
}

// Keys returns every configuration key in file order.
func Keys() []string {
	return []string{
		"log_level",
		"filter_keys",
		"redaction_marker",
		"max_body_size",
		"color",
		"tags",
		"user_agent",
		"timeout",
		"content_type_cache_size",
		"metrics",
	}
}

// LoadConfig loads configuration settings from a YAML file and REQLOG_* environment variables.
// An empty filename reads DefaultConfigFilename and falls back to defaults when it does not exist.
// An explicit filename must exist.
func LoadConfig(configFilename string) (*Config, error) {
	isDefaultFile := configFilename == ""
	if isDefaultFile {
		configFilename = DefaultConfigFilename
	}

	v := newViper()
	v.SetConfigFile(configFilename)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if !isDefaultFile || !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}

		logger.Debugf(context.Background(), "Config file %s not found, using defaults", configFilename)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// newViper returns a viper instance with defaults and environment overrides for every key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("filter_keys", defaults.FilterKeys)
	v.SetDefault("redaction_marker", defaults.RedactionMarker)
	v.SetDefault("max_body_size", defaults.MaxBodySize)
	v.SetDefault("color", defaults.Color)
	v.SetDefault("tags", defaults.Tags)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("content_type_cache_size", defaults.ContentTypeCacheSize)
	v.SetDefault("metrics", defaults.Metrics)

	return v
}

// ValidateConfig checks the configuration for validity and sets derived fields.
func ValidateConfig(cfg *Config) error {
	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	maxBodySize := strings.TrimSpace(cfg.MaxBodySize)
	if maxBodySize == "" {
		cfg.ParsedMaxBodySize = DefaultMaxBodySize
	} else {
		parsedMaxBodySize, err := humanize.ParseBytes(maxBodySize)
		if err != nil {
			return fmt.Errorf("failed to parse max body size: %w", err)
		}

		if parsedMaxBodySize == 0 {
			return ErrInvalidMaxBodySize
		}

		// io.LimitReader accepts only int64 so we transform it safely.
		cfg.ParsedMaxBodySize = utils.SafeUint64ToInt64(parsedMaxBodySize)
	}

	parsedTimeout, err := time.ParseDuration(strings.TrimSpace(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("failed to parse timeout: %w", err)
	}

	if parsedTimeout <= 0 {
		return ErrInvalidTimeout
	}

	cfg.ParsedTimeout = parsedTimeout

	if cfg.ContentTypeCacheSize <= 0 {
		return ErrInvalidCacheSize
	}

	cfg.FilterKeys = compactStrings(cfg.FilterKeys)
	cfg.Tags = compactStrings(cfg.Tags)

	return nil
}

// compactStrings trims every value and drops empty ones.
func compactStrings(values []string) []string {
	result := make([]string, 0, len(values))

	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}

	return result
}

// WriteDefaultConfig writes the default configuration to filename.
// An existing file is only replaced when force is set.
func WriteDefaultConfig(filename string, force bool) error {
	if filename == "" {
		filename = DefaultConfigFilename
	}

	exists, err := utils.IsFileExist(filename)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if exists && !force {
		return fmt.Errorf("%w: %s", ErrConfigFileExists, filename)
	}

	content, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(filename, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetValue updates one key of the config file while preserving the original format and order.
// List keys take a comma-separated value. A missing file is created with only that key.
func SetValue(filename, key, value string) error {
	if filename == "" {
		filename = DefaultConfigFilename
	}

	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	var node yaml.Node

	originalContent, err := os.ReadFile(filename)

	switch {
	case err == nil:
		if err = yaml.Unmarshal(originalContent, &node); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// Start from an empty document.
	default:
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err = setValueInNode(&node, key, valueNode(key, value)); err != nil {
		return err
	}

	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(filename, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// valueNode builds the YAML node of a raw command line value.
func valueNode(key, value string) *yaml.Node {
	if !slices.Contains(listKeys, key) {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	}

	items := compactStrings(strings.Split(value, ","))

	sequence := &yaml.Node{Kind: yaml.SequenceNode}
	if len(items) == 0 {
		// An empty block sequence would read back as null.
		sequence.Style = yaml.FlowStyle
	}

	for _, item := range items {
		sequence.Content = append(sequence.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item})
	}

	return sequence
}

// setValueInNode replaces or appends key in the YAML node tree.
func setValueInNode(node *yaml.Node, key string, value *yaml.Node) error {
	// An empty file decodes to a zero node.
	if node.Kind == 0 {
		node.Kind = yaml.DocumentNode
	}

	if len(node.Content) == 0 {
		node.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}

	// The root node is a document node, content[0] is the actual map.
	mapNode := node.Content[0]
	if mapNode.Kind != yaml.MappingNode {
		return ErrMalformedConfig
	}

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value != key {
			continue
		}

		// Keep the comments attached to the old value.
		value.HeadComment = mapNode.Content[i+1].HeadComment
		value.LineComment = mapNode.Content[i+1].LineComment
		mapNode.Content[i+1] = value

		return nil
	}

	mapNode.Content = append(mapNode.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)

	return nil
}
