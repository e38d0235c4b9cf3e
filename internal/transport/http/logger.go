package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/oshokin/reqlog/internal/config"
	"github.com/oshokin/reqlog/internal/contenttype"
	"github.com/oshokin/reqlog/internal/exchangelog"
	"github.com/oshokin/reqlog/internal/logger"
)

// LogTransport is a custom http.RoundTripper that logs HTTP requests and responses.
// It wraps another http.RoundTripper and hands every completed exchange to an exchange logger.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// requestLogger renders and writes the exchange lines.
	requestLogger *exchangelog.Logger
	// contentTypes caches parsed Content-Type headers.
	contentTypes *contenttype.Cache
	// maxBodySize is the maximum number of body bytes captured for logging.
	maxBodySize int64
	// now returns the current time.
	now func() time.Time
}

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// NewLogTransport creates and returns a new instance of LogTransport.
// If maxBodySize is less than or equal to 0, it defaults to config.DefaultMaxBodySize.
// If requestLogger is nil, exchanges are written to the global logger.
func NewLogTransport(
	next http.RoundTripper,
	requestLogger *exchangelog.Logger,
	contentTypes *contenttype.Cache,
	maxBodySize int64,
) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	if requestLogger == nil {
		requestLogger = exchangelog.New(nil, exchangelog.Options{ContentTypes: contentTypes})
	}

	if maxBodySize <= 0 {
		maxBodySize = config.DefaultMaxBodySize
	}

	return &LogTransport{
		next:          next,
		requestLogger: requestLogger,
		contentTypes:  contentTypes,
		maxBodySize:   maxBodySize,
		now:           time.Now,
	}
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
// It implements the http.RoundTripper interface. Logging never changes the outcome of the call.
//
// A text response is logged once the caller drains or closes its body;
// the transport itself never reads ahead of the caller.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	ctx := req.Context()

	requestBody, err := snapshotRequestBody(req, t.maxBodySize)
	if err != nil {
		logger.Debugf(ctx, "Failed to capture request body: %s %s | Error: %v", req.Method, req.URL.String(), err)
	}

	if int64(len(requestBody)) >= t.maxBodySize {
		requestBody = trimPartialRune(requestBody)
	}

	exchange := exchangelog.Begin(ctx, exchangelog.RequestDescriptor{
		Method: req.Method,
		URL:    req.URL,
		Header: req.Header,
		Body:   bodyOrNil(requestBody),
	}, t.now())

	// Forward the request to the underlying RoundTripper.
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		logger.Debugf(ctx, "Request failed: %s %s | Error: %v", req.Method, req.URL.String(), err)

		return nil, err
	}

	completedAt := t.now()

	// Binary bodies are never read, so large downloads stream straight to the caller.
	if resp.Body == nil || resp.Body == http.NoBody || !t.contentTypes.ParseHeader(resp.Header).IsText() {
		t.logExchange(ctx, req, exchange, resp, nil, completedAt)

		return resp, nil
	}

	resp.Body = newLoggedBody(resp.Body, t.maxBodySize, func(captured []byte, truncated bool) {
		body, ok := decodeContentEncoding(resp.Header.Get("Content-Encoding"), captured, t.maxBodySize)

		switch {
		case !ok:
			body = nil
		case truncated:
			body = trimPartialRune(body)
		}

		t.logExchange(ctx, req, exchange, resp, body, completedAt)
	})

	return resp, nil
}

// logExchange completes the exchange and writes it. Failures are logged and swallowed.
func (t *LogTransport) logExchange(
	ctx context.Context,
	req *http.Request,
	exchange *exchangelog.Exchange,
	resp *http.Response,
	body []byte,
	completedAt time.Time,
) {
	if err := exchange.Complete(exchangelog.ResponseDescriptor{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   bodyOrNil(body),
	}, completedAt); err != nil {
		logger.Errorf(ctx, "Failed to complete exchange: %s %s | Error: %v", req.Method, req.URL.String(), err)

		return
	}

	if err := t.requestLogger.Log(ctx, exchange); err != nil {
		logger.Errorf(ctx, "Failed to log exchange: %s %s | Error: %v", req.Method, req.URL.String(), err)
	}
}

// bodyOrNil keeps "no body" distinct from an empty body in the exchange descriptors.
func bodyOrNil(body []byte) any {
	if body == nil {
		return nil
	}

	return body
}
