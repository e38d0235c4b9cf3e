package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/reqlog/internal/logger"
)

// FetchError describes one URL that could not be fetched.
type FetchError struct {
	// URL is the requested URL.
	URL string
	// Err is the failure reason.
	Err error
}

// FetchStatistics summarizes one fetch command.
type FetchStatistics struct {
	// Requested is the number of URLs processed.
	Requested int64
	// Succeeded is the number of URLs answered with a non-error status.
	Succeeded int64
	// Failed is the number of URLs that failed or got an error status.
	Failed int64
	// BytesReceived is the number of body bytes written to the output.
	BytesReceived int64
	// StartTime is the moment the first request started.
	StartTime time.Time
	// EndTime is the moment the last request finished.
	EndTime time.Time
	// Errors lists the failures in processing order.
	Errors []FetchError
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

func (f *Fetcher) markStarted(now time.Time) {
	f.statsMutex.Lock()
	defer f.statsMutex.Unlock()

	if f.stats.StartTime.IsZero() {
		f.stats.StartTime = now
	}
}

func (f *Fetcher) incrementSucceeded(bytes int64, now time.Time) {
	f.statsMutex.Lock()
	defer f.statsMutex.Unlock()

	f.stats.Requested++
	f.stats.Succeeded++
	f.stats.BytesReceived += bytes
	f.stats.EndTime = now
}

func (f *Fetcher) incrementFailed(rawURL string, bytes int64, err error, now time.Time) {
	f.statsMutex.Lock()
	defer f.statsMutex.Unlock()

	f.stats.Requested++
	f.stats.Failed++
	f.stats.BytesReceived += bytes
	f.stats.EndTime = now
	f.stats.Errors = append(f.stats.Errors, FetchError{URL: rawURL, Err: err})
}

// Statistics returns a snapshot of the fetch statistics.
func (f *Fetcher) Statistics() FetchStatistics {
	f.statsMutex.Lock()
	defer f.statsMutex.Unlock()

	stats := f.stats
	stats.Errors = append([]FetchError(nil), f.stats.Errors...)

	return stats
}

// PrintSummary prints a formatted summary of the fetch statistics.
func (f *Fetcher) PrintSummary(ctx context.Context) {
	stats := f.Statistics()

	// If nothing was processed, don't print summary.
	if stats.Requested == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "Fetch Summary")
	logger.Infof(ctx, "  Requested:       %d", stats.Requested)
	logger.Infof(ctx, "  Succeeded:       %d", stats.Succeeded)

	if stats.Failed > 0 {
		logger.Infof(ctx, "  Failed:          %d", stats.Failed)
	}

	if stats.BytesReceived > 0 {
		//nolint:gosec // BytesReceived is never negative.
		logger.Infof(ctx, "  Data Received:   %s", humanize.Bytes(uint64(stats.BytesReceived)))
	}

	if !stats.StartTime.IsZero() && !stats.EndTime.IsZero() {
		logger.Infof(ctx, "  Duration:        %s", formatDuration(stats.EndTime.Sub(stats.StartTime)))
	}

	for _, fetchErr := range stats.Errors {
		logger.Errorf(ctx, "  %s: %v", fetchErr.URL, fetchErr.Err)
	}
}
