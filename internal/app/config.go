package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/reqlog/internal/config"
	"github.com/oshokin/reqlog/internal/logger"
)

// configFilenameOrDefault returns the path a config command operates on.
func configFilenameOrDefault(filename string) string {
	if filename == "" {
		return config.DefaultConfigFilename
	}

	return filename
}

// ExecuteConfigInitCommand writes the default configuration file.
func ExecuteConfigInitCommand(ctx context.Context, filename string, force bool) {
	filename = configFilenameOrDefault(filename)

	if err := config.WriteDefaultConfig(filename, force); err != nil {
		logger.Fatalf(ctx, "Failed to write configuration: %v", err)
	}

	logger.Infof(ctx, "Configuration written to %s", filename)
}

// ExecuteConfigSetCommand updates one key of the configuration file.
func ExecuteConfigSetCommand(ctx context.Context, filename, key, value string) {
	filename = configFilenameOrDefault(filename)

	if err := config.SetValue(filename, key, value); err != nil {
		logger.Fatalf(ctx, "Failed to update configuration: %v", err)
	}

	logger.Infof(ctx, "Set %s in %s", key, filename)
}

// WriteEffectiveConfig writes cfg as YAML to out.
func WriteEffectiveConfig(cfg *config.Config, out io.Writer) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2) //nolint:mnd // Conventional YAML indentation.

	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	return encoder.Close()
}

// ExecuteConfigShowCommand prints the effective configuration after defaults and environment overrides.
func ExecuteConfigShowCommand(ctx context.Context, cfg *config.Config) {
	if err := WriteEffectiveConfig(cfg, os.Stdout); err != nil {
		logger.Fatalf(ctx, "%v", err)
	}
}
