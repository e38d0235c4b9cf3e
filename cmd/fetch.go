package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/reqlog/internal/app"
)

var (
	//nolint:gochecknoglobals // Filled by cobra flag parsing.
	fetchOptions app.FetchOptions

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	fetchCmd = &cobra.Command{
		Use:   "fetch [flags] {urls}",
		Short: "Send a request to each URL and log the exchanges.",
		Long: `Sends one HTTP request per URL through the logging client.

The response body is written to the standard output, or to --output for a single URL.
Examples:
  reqlog fetch https://api.example.com/items
  reqlog fetch -X POST -H "Content-Type: application/json" -d '{"password":"x"}' https://api.example.com/login
  reqlog fetch -o report.pdf https://example.com/report.pdf
  reqlog fetch -i urls.txt --tag nightly`,
		Run: func(cmd *cobra.Command, urls []string) {
			app.ExecuteFetchCommand(cmd.Context(), appConfig, fetchOptions, urls)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	flags := fetchCmd.Flags()

	flags.StringVarP(&fetchOptions.Method, "request", "X", "", "HTTP method (default GET, or POST with --data).")
	flags.StringArrayVarP(&fetchOptions.Headers, "header", "H", nil, `request header "Name: value", may be repeated.`)
	flags.StringVarP(&fetchOptions.Data, "data", "d", "", "request body, or @file to read it from a file.")
	flags.StringVarP(&fetchOptions.Output, "output", "o", "", "file receiving the response body.")
	flags.StringVarP(&fetchOptions.InputFile, "input-file", "i", "", "file with additional URLs, one per line.")

	rootCmd.AddCommand(fetchCmd)
}
