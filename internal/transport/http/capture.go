package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// replayBody serves the captured prefix followed by the rest of the original stream.
type replayBody struct {
	io.Reader
	io.Closer
}

// newReplayBody returns a body that yields prefix and then whatever is left in original.
func newReplayBody(prefix []byte, original io.ReadCloser) io.ReadCloser {
	return &replayBody{
		Reader: io.MultiReader(bytes.NewReader(prefix), original),
		Closer: original,
	}
}

// snapshotRequestBody copies up to limit bytes of the request body without consuming it.
// When the request cannot be rewound through GetBody, req.Body is replaced with a replaying reader.
func snapshotRequestBody(req *http.Request, limit int64) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}

		defer body.Close() //nolint:errcheck // The copy is discarded after reading.

		return io.ReadAll(io.LimitReader(body, limit))
	}

	prefix, err := io.ReadAll(io.LimitReader(req.Body, limit))
	req.Body = newReplayBody(prefix, req.Body)

	return prefix, err
}

// loggedBody copies up to limit bytes of what the caller reads from a response body.
// The done callback runs once, when the stream ends, fails or is closed.
type loggedBody struct {
	body  io.ReadCloser
	limit int64
	done  func(captured []byte, truncated bool)

	mu        sync.Mutex
	captured  []byte
	truncated bool
	drained   bool
	once      sync.Once
}

// newLoggedBody wraps body. Nothing is read ahead of the caller.
func newLoggedBody(body io.ReadCloser, limit int64, done func(captured []byte, truncated bool)) *loggedBody {
	return &loggedBody{
		body:     body,
		limit:    limit,
		done:     done,
		captured: []byte{},
	}
}

// Read implements io.Reader.
func (b *loggedBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 {
		b.capture(p[:n])
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			b.mu.Lock()
			b.drained = true
			b.mu.Unlock()
		}

		b.finish()
	}

	return n, err
}

// Close implements io.Closer. A body closed before EOF is logged as truncated.
func (b *loggedBody) Close() error {
	err := b.body.Close()

	b.finish()

	return err
}

func (b *loggedBody) capture(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := b.limit - int64(len(b.captured))
	if int64(len(p)) > remaining {
		p = p[:max(remaining, 0)]
		b.truncated = true
	}

	b.captured = append(b.captured, p...)
}

func (b *loggedBody) finish() {
	b.once.Do(func() {
		b.mu.Lock()
		captured := b.captured
		truncated := b.truncated || !b.drained
		b.mu.Unlock()

		b.done(captured, truncated)
	})
}

// trimPartialRune drops an incomplete UTF-8 sequence left at the end of a truncated body.
func trimPartialRune(data []byte) []byte {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}

		if !utf8.FullRune(data[i:]) {
			return data[:i]
		}

		break
	}

	return data
}

// decodeContentEncoding returns the decoded form of data for the given Content-Encoding.
// A stream cut short keeps what was decoded before the cut. The second return value is
// false when nothing readable is left, so compressed bytes never reach the log.
func decodeContentEncoding(encoding string, data []byte, limit int64) ([]byte, bool) {
	encoding = strings.ToLower(strings.TrimSpace(encoding))
	if encoding == "" || encoding == "identity" {
		return data, true
	}

	if len(data) == 0 {
		return data, true
	}

	var (
		reader io.ReadCloser
		err    error
	)

	switch encoding {
	case "gzip", "x-gzip":
		reader, err = gzip.NewReader(bytes.NewReader(data))
	case "deflate":
		reader, err = zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			// Some servers send raw deflate streams without the zlib wrapper.
			reader, err = flate.NewReader(bytes.NewReader(data)), nil
		}
	case "zstd":
		var decoder *zstd.Decoder

		decoder, err = zstd.NewReader(bytes.NewReader(data))
		if err == nil {
			reader = decoder.IOReadCloser()
		}
	default:
		return nil, false
	}

	if err != nil {
		return nil, false
	}

	defer reader.Close() //nolint:errcheck // Decoding an in-memory copy.

	decoded, err := io.ReadAll(io.LimitReader(reader, limit))
	if err != nil && len(decoded) == 0 {
		return nil, false
	}

	if err != nil || int64(len(decoded)) >= limit {
		decoded = trimPartialRune(decoded)
	}

	return decoded, true
}
