package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/reqlog/internal/config"
	"github.com/oshokin/reqlog/internal/constants"
	"github.com/oshokin/reqlog/internal/logger"
	"github.com/oshokin/reqlog/internal/utils"
)

// dataFilePrefix marks a request body argument naming a file.
const dataFilePrefix = "@"

// overwriteFileOptions truncates or creates output files.
const overwriteFileOptions = os.O_CREATE | os.O_WRONLY | os.O_TRUNC

// Static error definitions for better error handling.
var (
	// ErrNoURLs indicates that the fetch command got nothing to request.
	ErrNoURLs = errors.New("no URLs to fetch")
	// ErrOutputWithManyURLs indicates an output file combined with several URLs.
	ErrOutputWithManyURLs = errors.New("output file can only be used with a single URL")
	// ErrUnsupportedScheme indicates a URL that is not http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrHTTPStatus indicates a response with a 4xx or 5xx status.
	ErrHTTPStatus = errors.New("server returned an error status")
)

// FetchOptions holds the command line arguments of the fetch command.
type FetchOptions struct {
	// Method is the HTTP method. Empty means GET, or POST when Data is set.
	Method string
	// Headers are "Name: value" request headers.
	Headers []string
	// Data is the request body, or "@path" to read it from a file.
	Data string
	// Output is the file receiving the response body. Empty writes to the standard output.
	Output string
	// InputFile lists additional URLs, one per line.
	InputFile string
	// Tags are attached to the logged exchanges in addition to the configured tags.
	Tags []string
}

// Fetcher performs logged HTTP requests and collects statistics.
type Fetcher struct {
	client  *http.Client
	method  string
	header  http.Header
	body    []byte
	output  string
	stdout  io.Writer
	now     func() time.Time
	showBar bool

	statsMutex sync.Mutex
	stats      FetchStatistics
}

// NewFetcher validates opts and creates a Fetcher sending requests through client.
// Response bodies go to opts.Output, or to stdout when no output file is set.
func NewFetcher(client *http.Client, opts FetchOptions, stdout io.Writer) (*Fetcher, error) {
	header := make(http.Header, len(opts.Headers))

	for _, line := range opts.Headers {
		name, value, err := utils.ParseHeaderLine(line)
		if err != nil {
			return nil, err
		}

		header.Add(name, value)
	}

	body, err := readRequestData(opts.Data)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	if stdout == nil {
		stdout = os.Stdout
	}

	return &Fetcher{
		client:  client,
		method:  method,
		header:  header,
		body:    body,
		output:  opts.Output,
		stdout:  stdout,
		now:     time.Now,
		showBar: logger.Level() <= zap.InfoLevel,
	}, nil
}

// readRequestData returns the request body described by data.
// Nil means the request has no body.
func readRequestData(data string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}

	path, isFile := strings.CutPrefix(data, dataFilePrefix)
	if !isFile {
		return []byte(data), nil
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body file: %w", err)
	}

	return content, nil
}

// FetchURLs requests every URL in order. Failures are logged and counted, never fatal.
func (f *Fetcher) FetchURLs(ctx context.Context, urls []string) {
	for _, rawURL := range urls {
		if ctx.Err() != nil {
			logger.Warnf(ctx, "Fetch interrupted, %d URL(s) left unprocessed", len(urls)-int(f.Statistics().Requested))

			return
		}

		if _, err := f.Fetch(ctx, rawURL); err != nil {
			logger.Errorf(ctx, "Failed to fetch %s: %v", rawURL, err)
		}
	}
}

// Fetch requests rawURL and writes the response body to the configured output.
// It returns the number of body bytes written.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (int64, error) {
	f.markStarted(f.now())

	written, err := f.fetch(ctx, rawURL)
	if err != nil {
		f.incrementFailed(rawURL, written, err, f.now())

		return written, err
	}

	f.incrementSucceeded(written, f.now())

	return written, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (int64, error) {
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}

	if target.Scheme != "http" && target.Scheme != "https" {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, target.Scheme)
	}

	var body io.Reader
	if f.body != nil {
		body = bytes.NewReader(f.body)
	}

	req, err := http.NewRequestWithContext(ctx, f.method, target.String(), body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = f.header.Clone()

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	written, err := f.writeBody(ctx, resp)
	if err != nil {
		return written, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return written, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	return written, nil
}

// writeBody copies the response body to the output file or to stdout.
func (f *Fetcher) writeBody(ctx context.Context, resp *http.Response) (int64, error) {
	if f.output == "" {
		written, err := io.Copy(f.stdout, resp.Body)
		if err != nil {
			return written, fmt.Errorf("failed to write response body: %w", err)
		}

		return written, nil
	}

	return f.writeOutputFile(ctx, resp)
}

// writeOutputFile downloads to a temporary .part file and renames it once complete.
func (f *Fetcher) writeOutputFile(ctx context.Context, resp *http.Response) (int64, error) {
	if dir := filepath.Dir(f.output); dir != "." {
		if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempFilePath := f.output + constants.PartFileSuffix

	file, err := os.OpenFile(filepath.Clean(tempFilePath), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	var downloadSucceeded bool

	defer func() {
		closeErr := file.Close()

		if downloadSucceeded {
			return
		}

		if removeErr := os.Remove(tempFilePath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v (close error: %v)",
				tempFilePath, removeErr, closeErr)
		}
	}()

	var writer io.Writer = file

	if f.showBar {
		bar := progressbar.DefaultBytes(resp.ContentLength, "Downloading")
		writer = io.MultiWriter(file, bar)
	}

	written, err := io.Copy(writer, resp.Body)
	if err != nil {
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return written, fmt.Errorf("%w: wrote %d bytes, expected %d bytes",
			io.ErrUnexpectedEOF, written, resp.ContentLength)
	}

	if err = file.Sync(); err != nil {
		return written, fmt.Errorf("failed to flush file: %w", err)
	}

	if err = os.Rename(tempFilePath, f.output); err != nil {
		return written, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	downloadSucceeded = true

	return written, nil
}

// ExecuteFetchCommand requests every URL with the logging client and prints a summary.
func ExecuteFetchCommand(ctx context.Context, cfg *config.Config, opts FetchOptions, urls []string) {
	urls, err := collectURLs(urls, opts.InputFile)
	if err != nil {
		logger.Fatalf(ctx, "Failed to collect URLs: %v", err)
	}

	if opts.Output != "" && len(urls) > 1 {
		logger.Fatalf(ctx, "%v: got %d URLs", ErrOutputWithManyURLs, len(urls))
	}

	var registry *prometheus.Registry
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
	}

	client, err := NewHTTPClient(cfg, registererOrNil(registry))
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize HTTP client: %v", err)
	}

	fetcher, err := NewFetcher(client, opts, os.Stdout)
	if err != nil {
		logger.Fatalf(ctx, "Invalid fetch arguments: %v", err)
	}

	ctx = logger.WithTags(ctx, slices.Concat(cfg.Tags, opts.Tags)...)

	// Ensure statistics are always printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		fetcher.PrintSummary(ctx)

		if registry != nil {
			PrintMetrics(ctx, registry)
		}
	}()

	fetcher.FetchURLs(ctx, urls)
}

// collectURLs merges the command line URLs with the URLs listed in inputFile, dropping duplicates.
func collectURLs(urls []string, inputFile string) ([]string, error) {
	result := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))

	add := func(values []string) {
		for _, value := range values {
			if value = strings.TrimSpace(value); value == "" {
				continue
			}

			if _, exists := seen[value]; !exists {
				seen[value] = struct{}{}
				result = append(result, value)
			}
		}
	}

	add(urls)

	if inputFile != "" {
		lines, err := utils.ReadUniqueLinesFromFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}

		add(lines)
	}

	if len(result) == 0 {
		return nil, ErrNoURLs
	}

	return result, nil
}

// registererOrNil keeps a nil registry from becoming a non-nil interface.
func registererOrNil(registry *prometheus.Registry) prometheus.Registerer {
	if registry == nil {
		return nil
	}

	return registry
}
