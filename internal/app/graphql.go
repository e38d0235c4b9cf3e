package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/machinebox/graphql"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/reqlog/internal/config"
	"github.com/oshokin/reqlog/internal/logger"
	"github.com/oshokin/reqlog/internal/utils"
)

// ErrEmptyQuery indicates that the graphql command got no query document.
var ErrEmptyQuery = errors.New("GraphQL query cannot be empty")

// GraphQLOptions holds the command line arguments of the graphql command.
type GraphQLOptions struct {
	// Query is the GraphQL document, or "@path" to read it from a file.
	Query string
	// Variables are "name=value" pairs. Values that parse as JSON are sent as JSON.
	Variables []string
	// Headers are "Name: value" request headers.
	Headers []string
	// Tags are attached to the logged exchange in addition to the configured tags.
	Tags []string
}

// RunGraphQL sends one GraphQL request through client and writes the indented data to out.
func RunGraphQL(ctx context.Context, client *http.Client, endpoint string, opts GraphQLOptions, out io.Writer) error {
	query, err := readQuery(opts.Query)
	if err != nil {
		return err
	}

	graphqlRequest := graphql.NewRequest(query)

	for _, line := range opts.Headers {
		name, value, parseErr := utils.ParseHeaderLine(line)
		if parseErr != nil {
			return parseErr
		}

		graphqlRequest.Header.Add(name, value)
	}

	for _, pair := range opts.Variables {
		name, value, parseErr := utils.ParseKeyValue(pair)
		if parseErr != nil {
			return parseErr
		}

		graphqlRequest.Var(name, variableValue(value))
	}

	graphqlClient := graphql.NewClient(endpoint, graphql.WithHTTPClient(client))
	graphqlClient.Log = func(s string) {
		logger.Debug(ctx, s)
	}

	var graphQLResponse map[string]any
	if err = graphqlClient.Run(ctx, graphqlRequest, &graphQLResponse); err != nil {
		return fmt.Errorf("GraphQL request failed: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err = encoder.Encode(graphQLResponse); err != nil {
		return fmt.Errorf("failed to write GraphQL response: %w", err)
	}

	return nil
}

// readQuery returns the query document, reading it from a file for "@path".
func readQuery(query string) (string, error) {
	if path, isFile := strings.CutPrefix(query, dataFilePrefix); isFile {
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}

		query = string(content)
	}

	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	return query, nil
}

// variableValue decodes JSON literals and keeps everything else as a string.
func variableValue(raw string) any {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		return decoded
	}

	return raw
}

// ExecuteGraphQLCommand sends one GraphQL request with the logging client.
func ExecuteGraphQLCommand(ctx context.Context, cfg *config.Config, endpoint string, opts GraphQLOptions) {
	var registry *prometheus.Registry
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
	}

	client, err := NewHTTPClient(cfg, registererOrNil(registry))
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize HTTP client: %v", err)
	}

	ctx = logger.WithTags(ctx, slices.Concat(cfg.Tags, opts.Tags)...)

	if err = RunGraphQL(ctx, client, endpoint, opts, os.Stdout); err != nil {
		logger.Errorf(ctx, "%v", err)
	}

	if registry != nil {
		PrintMetrics(ctx, registry)
	}
}
