package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/oshokin/reqlog/internal/app"
	"github.com/oshokin/reqlog/internal/config"
)

var (
	//nolint:gochecknoglobals // Filled by cobra flag parsing.
	forceConfigInit bool

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration file management commands",
		// The file may not exist or be invalid yet.
		PersistentPreRun: func(*cobra.Command, []string) {},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteConfigInitCommand(cmd.Context(), configFilenameFromFlag, forceConfigInit)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configSetCmd = &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set one configuration key, keeping the rest of the file as is",
		Long: "Set one configuration key, keeping the rest of the file as is.\n" +
			"List keys take a comma-separated value.\n\nKeys: " + strings.Join(config.Keys(), ", "),
		Args:      cobra.ExactArgs(2), //nolint:mnd // KEY and VALUE.
		ValidArgs: config.Keys(),
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteConfigSetCommand(cmd.Context(), configFilenameFromFlag, args[0], args[1])
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configShowCmd = &cobra.Command{
		Use:              "show",
		Short:            "Print the effective configuration",
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteConfigShowCommand(cmd.Context(), appConfig)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	configInitCmd.Flags().BoolVarP(&forceConfigInit, "force", "f", false, "overwrite an existing file.")

	configCmd.AddCommand(configInitCmd, configSetCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
