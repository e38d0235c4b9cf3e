package exchangelog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/reqlog/internal/logger"
)

// State is the lifecycle stage of an Exchange.
type State uint8

const (
	// StateStarted is the state right after Begin.
	StateStarted State = iota
	// StateCompleted is the state after the response has been attached.
	StateCompleted
	// StateLogged is the terminal state.
	StateLogged
)

// Static error definitions for better error handling.
var (
	// ErrExchangeState indicates an operation was called in the wrong lifecycle state.
	ErrExchangeState = errors.New("invalid exchange state")
	// ErrNegativeDuration indicates the exchange completed before it began.
	ErrNegativeDuration = errors.New("negative exchange duration")
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateCompleted:
		return "completed"
	case StateLogged:
		return "logged"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// RequestDescriptor describes an outbound request.
type RequestDescriptor struct {
	// Method is the HTTP method.
	Method string
	// URL is the absolute request URL.
	URL *url.URL
	// Header holds the request headers.
	Header http.Header
	// Body is the request body: raw bytes, a string, or a structured value. Nil means no body.
	Body any
}

// ResponseDescriptor describes the response to an outbound request.
type ResponseDescriptor struct {
	// Status is the HTTP status code.
	Status int
	// Header holds the response headers.
	Header http.Header
	// Body is the response body: raw bytes, a string, or a structured value. Nil means no body.
	Body any
}

// Exchange holds everything captured about one request/response pair.
type Exchange struct {
	// ID pairs the two log lines emitted for the exchange.
	ID uuid.UUID
	// Request is the request as it was when the exchange began.
	Request RequestDescriptor
	// Response is set by Complete.
	Response ResponseDescriptor
	// BeganAt is the time the request was handed to the transport.
	BeganAt time.Time
	// CompletedAt is the time the response was received.
	CompletedAt time.Time
	// Tags is the snapshot of contextual tags active when the exchange began.
	Tags []string

	state State
}

// Begin starts an exchange, snapshotting the request body and the contextual tags of ctx.
func Begin(ctx context.Context, req RequestDescriptor, now time.Time) *Exchange {
	req.Header = req.Header.Clone()
	req.Body = snapshotBody(req.Body)

	if req.URL != nil {
		u := *req.URL
		req.URL = &u
	}

	return &Exchange{
		ID:      uuid.New(),
		Request: req,
		BeganAt: now,
		Tags:    logger.Tags(ctx),
		state:   StateStarted,
	}
}

// Complete attaches the response and moves the exchange to StateCompleted.
func (e *Exchange) Complete(resp ResponseDescriptor, now time.Time) error {
	if e.state != StateStarted {
		return fmt.Errorf("%w: cannot complete exchange in state %s", ErrExchangeState, e.state)
	}

	resp.Header = resp.Header.Clone()
	e.Response = resp
	e.CompletedAt = now
	e.state = StateCompleted

	return nil
}

// State returns the lifecycle state.
func (e *Exchange) State() State {
	return e.state
}

// Duration returns the time between Begin and Complete.
func (e *Exchange) Duration() time.Duration {
	return e.CompletedAt.Sub(e.BeganAt)
}

func snapshotBody(body any) any {
	switch v := body.(type) {
	case []byte:
		return bytes.Clone(v)
	default:
		return body
	}
}
