// Package app provides the application logic behind the reqlog commands.
// It builds the logging HTTP client from the configuration, performs fetch and GraphQL
// requests through it, manages the configuration file, and prints statistics and metrics.
package app
