package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/reqlog/internal/config"
	"github.com/oshokin/reqlog/internal/constants"
	"github.com/oshokin/reqlog/internal/logger"
	"github.com/oshokin/reqlog/internal/utils"
)

// testConfig returns a validated configuration for tests.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Color = false
	require.NoError(t, config.ValidateConfig(cfg))

	return cfg
}

// newTestFetcher returns a Fetcher without a progress bar writing to stdout.
func newTestFetcher(t *testing.T, opts FetchOptions, stdout io.Writer) *Fetcher {
	t.Helper()

	client, err := NewHTTPClient(testConfig(t), nil)
	require.NoError(t, err)

	fetcher, err := NewFetcher(client, opts, stdout)
	require.NoError(t, err)

	fetcher.showBar = false

	return fetcher
}

// TestNewFetcher tests argument validation and method defaults.
func TestNewFetcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		opts           FetchOptions
		expectedMethod string
		expectedErr    error
	}{
		{name: "defaults to GET", opts: FetchOptions{}, expectedMethod: http.MethodGet},
		{name: "data defaults to POST", opts: FetchOptions{Data: "a=1"}, expectedMethod: http.MethodPost},
		{name: "explicit method", opts: FetchOptions{Method: "put", Data: "a=1"}, expectedMethod: http.MethodPut},
		{name: "bad header", opts: FetchOptions{Headers: []string{"nonsense"}}, expectedErr: utils.ErrInvalidHeaderLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fetcher, err := NewFetcher(http.DefaultClient, tt.opts, io.Discard)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedMethod, fetcher.method)
		})
	}
}

// TestReadRequestData tests inline and file request bodies.
func TestReadRequestData(t *testing.T) {
	t.Parallel()

	body, err := readRequestData("")
	require.NoError(t, err)
	assert.Nil(t, body)

	body, err = readRequestData(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), body)

	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"b":2}`), constants.DefaultFilePermissions))

	body, err = readRequestData("@" + path)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"b":2}`), body)

	_, err = readRequestData("@" + filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

// TestFetcher_Fetch tests a request written to stdout.
func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "yes", r.Header.Get("X-Test"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "name=reqlog", string(body))

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("created"))
	}))
	defer server.Close()

	var stdout bytes.Buffer

	fetcher := newTestFetcher(t, FetchOptions{
		Headers: []string{"X-Test: yes"},
		Data:    "name=reqlog",
	}, &stdout)

	written, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(len("created")), written)
	assert.Equal(t, "created", stdout.String())

	stats := fetcher.Statistics()
	assert.Equal(t, int64(1), stats.Requested)
	assert.Equal(t, int64(1), stats.Succeeded)
	assert.Equal(t, int64(7), stats.BytesReceived)
	assert.False(t, stats.StartTime.IsZero())
}

// TestFetcher_FetchErrors tests failures counted in the statistics.
func TestFetcher_FetchErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	var stdout bytes.Buffer

	fetcher := newTestFetcher(t, FetchOptions{}, &stdout)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/nothing")
	require.ErrorIs(t, err, ErrHTTPStatus)
	assert.Equal(t, "missing\n", stdout.String())

	_, err = fetcher.Fetch(context.Background(), "ftp://example.com/file")
	require.ErrorIs(t, err, ErrUnsupportedScheme)

	stats := fetcher.Statistics()
	assert.Equal(t, int64(2), stats.Requested)
	assert.Equal(t, int64(2), stats.Failed)
	require.Len(t, stats.Errors, 2)
	assert.Equal(t, "ftp://example.com/file", stats.Errors[1].URL)
}

// TestFetcher_FetchOutputFile tests the download to a file through a .part file.
func TestFetcher_FetchOutputFile(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0x00, 0x01, 0xFE, 0xFF}, 4096)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	output := filepath.Join(t.TempDir(), "downloads", "blob.bin")
	fetcher := newTestFetcher(t, FetchOptions{Output: output}, io.Discard)

	written, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), written)

	content, err := os.ReadFile(output) //nolint:gosec // Test file path.
	require.NoError(t, err)
	assert.Equal(t, payload, content)

	_, err = os.Stat(output + constants.PartFileSuffix)
	assert.True(t, os.IsNotExist(err))
}

// TestFetcher_FetchURLsCancelled tests that a cancelled context stops the loop.
func TestFetcher_FetchURLsCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := newTestFetcher(t, FetchOptions{}, io.Discard)
	fetcher.FetchURLs(ctx, []string{"http://example.invalid/a", "http://example.invalid/b"})

	assert.Zero(t, fetcher.Statistics().Requested)
}

// TestCollectURLs tests merging command line URLs with an input file.
func TestCollectURLs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "https://b.example\n# skipped\nhttps://a.example\n"
	require.NoError(t, os.WriteFile(path, []byte(content), constants.DefaultFilePermissions))

	urls, err := collectURLs([]string{"https://a.example", " "}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, urls)

	_, err = collectURLs(nil, "")
	require.ErrorIs(t, err, ErrNoURLs)

	_, err = collectURLs(nil, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

// TestFormatDuration tests the human-readable duration format.
func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    time.Duration
		expected string
	}{
		{input: 250 * time.Millisecond, expected: "250ms"},
		{input: 42 * time.Second, expected: "42s"},
		{input: 3*time.Minute + 5*time.Second, expected: "3m 5s"},
		{input: 2*time.Hour + time.Minute + time.Second, expected: "2h 1m 1s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, formatDuration(tt.input))
		})
	}
}

// TestHTTPClient_LogsExchanges tests the assembled client end to end through the global logger.
//
//nolint:paralleltest // Replaces the global logger.
func TestHTTPClient_LogsExchanges(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	previous := logger.Logger()
	logger.SetLogger(zap.New(core).Sugar())

	t.Cleanup(func() {
		logger.SetLogger(previous)
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "probe/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"abc","ok":true}`))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.UserAgent = "probe/1.0"

	registry := prometheus.NewRegistry()

	client, err := NewHTTPClient(cfg, registry)
	require.NoError(t, err)

	ctx := logger.WithTags(context.Background(), "unit")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/session", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.JSONEq(t, `{"token":"abc","ok":true}`, string(body))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[0].Message, "> 200 : GET "+server.URL+"/session @ "))
	assert.Contains(t, entries[1].Message, `"User-Agent":"probe/1.0"`)
	assert.Contains(t, entries[1].Message, `[FILTERED]`)
	assert.NotContains(t, entries[1].Message, "abc")
	assert.Equal(t, []any{"unit"}, entries[1].ContextMap()[logger.TagsKey])

	lines, err := GatherMetricLines(registry)
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	var found bool

	for _, line := range lines {
		if line.Name == "reqlog_client_exchanges_total" {
			found = true

			assert.Equal(t, `method="GET",status_class="success"`, line.Labels)
			assert.InDelta(t, 1.0, line.Value, 1e-9)
		}
	}

	assert.True(t, found)
}
