package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/reqlog/internal/version"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	// Build information does not depend on the configuration.
	PersistentPreRun: func(*cobra.Command, []string) {},
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reqlog "+version.Full())
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(versionCmd)
}
