package utils

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// commentPrefix marks lines ignored by ReadUniqueLinesFromFile.
const commentPrefix = "#"

// Static error definitions for better error handling.
var (
	// ErrInvalidHeaderLine indicates a header argument without a "Name: value" shape.
	ErrInvalidHeaderLine = errors.New("invalid header line")

	// ErrInvalidKeyValue indicates an argument without a "key=value" shape.
	ErrInvalidKeyValue = errors.New("invalid key=value pair")
)

// SafeUint64ToInt64 converts a uint64 value to an int64 safely,
// ensuring that the value does not exceed the maximum limit of int64.
func SafeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(val)
}

// IsFileExist checks if a file exists at the specified path.
// It returns true if the file exists and is not a directory, false if the file does not exist,
// and an error if there was an issue accessing the file.
func IsFileExist(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err == nil {
		return !stat.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// ReadUniqueLinesFromFile reads a text file and returns its unique non-empty lines in order.
// Surrounding whitespace is trimmed and lines starting with "#" are skipped.
func ReadUniqueLinesFromFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer file.Close() //nolint:errcheck // Error on close is not critical here.

	var (
		lines       []string
		uniqueLines = make(map[string]struct{})
		scanner     = bufio.NewScanner(file)
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		if _, exists := uniqueLines[line]; !exists {
			uniqueLines[line] = struct{}{}

			lines = append(lines, line)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// ParseHeaderLine splits a "Name: value" argument into a canonical-looking pair.
// The value may be empty, the name may not.
func ParseHeaderLine(line string) (string, string, error) {
	name, value, found := strings.Cut(line, ":")

	name = strings.TrimSpace(name)
	if !found || name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHeaderLine, line)
	}

	return name, strings.TrimSpace(value), nil
}

// ParseKeyValue splits a "key=value" argument. Only the first "=" separates the pair.
func ParseKeyValue(arg string) (string, string, error) {
	key, value, found := strings.Cut(arg, "=")

	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKeyValue, arg)
	}

	return key, value, nil
}
