package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/reqlog/internal/app"
)

var (
	//nolint:gochecknoglobals // Filled by cobra flag parsing.
	graphQLOptions app.GraphQLOptions

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	graphQLCmd = &cobra.Command{
		Use:   "graphql [flags] {endpoint}",
		Short: "Send a GraphQL query and log the exchange.",
		Long: `Sends a GraphQL request to the endpoint through the logging client and prints the data as JSON.

Examples:
  reqlog graphql https://api.example.com/graphql -q '{ viewer { login } }'
  reqlog graphql https://api.example.com/graphql -q @query.graphql --var id=42 --var 'filter={"active":true}'`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteGraphQLCommand(cmd.Context(), appConfig, args[0], graphQLOptions)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	flags := graphQLCmd.Flags()

	flags.StringVarP(&graphQLOptions.Query, "query", "q", "", "GraphQL document, or @file to read it from a file.")
	flags.StringArrayVar(&graphQLOptions.Variables, "var", nil, "variable name=value, JSON values are decoded, may be repeated.")
	flags.StringArrayVarP(&graphQLOptions.Headers, "header", "H", nil, `request header "Name: value", may be repeated.`)

	_ = graphQLCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(graphQLCmd)
}
