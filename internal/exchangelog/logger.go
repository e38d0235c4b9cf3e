package exchangelog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/oshokin/reqlog/internal/bodycodec"
	"github.com/oshokin/reqlog/internal/contenttype"
	"github.com/oshokin/reqlog/internal/logger"
	"github.com/oshokin/reqlog/internal/redact"
)

// exchangeIDKey is the field pairing the summary line with the record line.
const exchangeIDKey = "exchange_id"

// Options configures a Logger.
type Options struct {
	// Redaction hides sensitive keys of structured bodies. Nil disables redaction.
	Redaction *redact.Spec
	// Colorize enables ANSI colors in the summary line.
	Colorize bool
	// ContentTypes caches parsed Content-Type headers. Nil parses every header.
	ContentTypes *contenttype.Cache
	// Metrics records logged exchanges. Nil disables metrics.
	Metrics *Metrics
}

// Logger turns completed exchanges into a summary line and a structured JSON line.
type Logger struct {
	sink    Sink
	opts    Options
	painter painter
}

// New creates a Logger writing to sink.
// If sink is nil, lines go to the global logger.
func New(sink Sink, opts Options) *Logger {
	if sink == nil {
		sink = NewZapSink(nil)
	}

	return &Logger{
		sink:    sink,
		opts:    opts,
		painter: newPainter(opts.Colorize),
	}
}

// BuildRecord assembles the structured record of a completed exchange.
// Bodies are included only when their content type classifies as text.
func (l *Logger) BuildRecord(e *Exchange) (*Record, error) {
	if e.state != StateCompleted && e.state != StateLogged {
		return nil, fmt.Errorf("%w: cannot build record in state %s", ErrExchangeState, e.state)
	}

	duration := e.Duration()
	if duration < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeDuration, duration)
	}

	record := &Record{
		RequestRole: clientRole,
		Request: RequestBlock{
			Method:  e.Request.Method,
			URI:     NormalizeURL(e.Request.URL),
			Headers: flattenHeaders(e.Request.Header),
		},
		Response: ResponseBlock{
			Status:  strconv.Itoa(e.Response.Status),
			Headers: flattenHeaders(e.Response.Header),
		},
		Processing: ProcessingBlock{
			BeganAt:  epochSeconds(e.BeganAt.UTC()),
			Duration: duration.Seconds(),
			Tags:     slices.Clone(e.Tags),
		},
	}

	if body, ok := l.loggableBody(e.Request.Body, e.Request.Header); ok {
		record.Request.Body = body
	}

	if body, ok := l.loggableBody(e.Response.Body, e.Response.Header); ok {
		record.Response.Body = body
	}

	return record, nil
}

// Log emits the summary line and the record line of a completed exchange.
// Errors are returned for lifecycle defects only; nothing here touches the HTTP call.
func (l *Logger) Log(ctx context.Context, e *Exchange) error {
	if e.state != StateCompleted {
		return fmt.Errorf("%w: cannot log exchange in state %s", ErrExchangeState, e.state)
	}

	record, err := l.BuildRecord(e)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		// Bodies are the only optional values that could break encoding.
		record.Request.Body = nil
		record.Response.Body = nil

		if payload, err = json.Marshal(record); err != nil {
			return fmt.Errorf("failed to encode exchange record: %w", err)
		}
	}

	sink := l.sink
	if len(e.Tags) > 0 && !slices.Equal(logger.Tags(ctx), e.Tags) {
		sink = sink.WithTags(e.Tags)
	}

	idField := zap.String(exchangeIDKey, e.ID.String())

	sink.Info(ctx, summaryLine(l.painter, e), idField)
	sink.Info(ctx, string(payload), idField)

	l.opts.Metrics.Observe(e.Request.Method, ClassifyStatus(e.Response.Status), e.Duration())

	e.state = StateLogged

	return nil
}

// loggableBody redacts and encodes one side's body.
// The second return value is false when the body must be left out of the record.
func (l *Logger) loggableBody(body any, header http.Header) (any, bool) {
	if body == nil {
		return nil, false
	}

	attrs := l.opts.ContentTypes.ParseHeader(header)
	if !attrs.IsText() {
		return nil, false
	}

	body = l.redactBody(body, attrs)

	return bodycodec.ToLoggable(body, attrs)
}

func (l *Logger) redactBody(body any, attrs *contenttype.Attrs) any {
	spec := l.opts.Redaction
	if spec == nil {
		return body
	}

	switch v := body.(type) {
	case []byte:
		if redacted, ok := spec.Bytes(v, attrs); ok {
			return redacted
		}
	case string:
		if redacted, ok := spec.Bytes([]byte(v), attrs); ok {
			return string(redacted)
		}
	case map[string]any, []any:
		return spec.Document(v)
	}

	return body
}
