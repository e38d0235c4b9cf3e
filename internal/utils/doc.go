// Package utils provides small helpers shared by the command line tools:
// argument parsing for headers and key/value pairs, reading URL lists from files,
// safe numeric conversion, and the User-Agent provider used by the HTTP transport.
package utils
