package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/reqlog/internal/config"
	"github.com/oshokin/reqlog/internal/logger"
	"github.com/oshokin/reqlog/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "reqlog",
		Short: "Send HTTP requests and log every exchange as structured records.",
		Long: `reqlog is a CLI HTTP client that logs each request/response exchange.
Every exchange produces two log lines:
- a colored summary: > STATUS : METHOD URL @ TIME
- a JSON record with headers, text bodies, timing and tags

Sensitive keys of JSON and form bodies are redacted, binary bodies are never logged.`,
		Version:          version.Short(),
		SilenceUsage:     true,
		PersistentPreRun: initConfig,
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	addConfigFlags(flags)
}

// addConfigFlags defines the flags overriding configuration keys.
func addConfigFlags(flags *pflag.FlagSet) {
	flags.StringP(
		"log-level",
		"l",
		"",
		"log level: debug, info, warn, error.")

	flags.StringSlice(
		"filter-key",
		nil,
		"body key to redact, may be repeated or comma-separated (replaces the configured list).")

	flags.String(
		"redaction-marker",
		"",
		"text replacing redacted values.")

	flags.String(
		"max-body-size",
		"",
		"maximum body size captured for logging, for example: 64 KB, 1 MB.")

	flags.Bool(
		"no-color",
		false,
		"disable colors in the summary line.")

	flags.StringSliceP(
		"tag",
		"t",
		nil,
		"tag attached to every logged exchange, may be repeated.")

	flags.String(
		"user-agent",
		"",
		"User-Agent sent when a request has none.")

	flags.String(
		"timeout",
		"",
		"timeout of a whole HTTP call, for example: 30s, 2m.")

	flags.Bool(
		"metrics",
		false,
		"print exchange metrics when the command completes.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

//nolint:cyclop // One branch per flag.
func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if flag := flags.Lookup("filter-key"); flag != nil && flag.Changed {
		cfg.FilterKeys, _ = flags.GetStringSlice("filter-key")
	}

	if flag := flags.Lookup("redaction-marker"); flag != nil && flag.Changed {
		cfg.RedactionMarker, _ = flags.GetString("redaction-marker")
	}

	if flag := flags.Lookup("max-body-size"); flag != nil && flag.Changed {
		cfg.MaxBodySize, _ = flags.GetString("max-body-size")
	}

	if flag := flags.Lookup("no-color"); flag != nil && flag.Changed {
		noColor, _ := flags.GetBool("no-color")
		cfg.Color = !noColor
	}

	if flag := flags.Lookup("tag"); flag != nil && flag.Changed {
		tags, _ := flags.GetStringSlice("tag")
		cfg.Tags = append(cfg.Tags, tags...)
	}

	if flag := flags.Lookup("user-agent"); flag != nil && flag.Changed {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}

	if flag := flags.Lookup("timeout"); flag != nil && flag.Changed {
		cfg.Timeout, _ = flags.GetString("timeout")
	}

	if flag := flags.Lookup("metrics"); flag != nil && flag.Changed {
		cfg.Metrics, _ = flags.GetBool("metrics")
	}

	return config.ValidateConfig(cfg)
}
