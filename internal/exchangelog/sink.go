package exchangelog

//go:generate $MOCKGEN -source=sink.go -destination=mocks/sink_mock.go

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/oshokin/reqlog/internal/logger"
)

// Sink receives the log lines of an exchange.
type Sink interface {
	// Info writes one line at info level.
	Info(ctx context.Context, line string, fields ...zap.Field)
	// WithTags returns a sink that attaches tags to every line instead of the tags found in the context.
	WithTags(tags []string) Sink
}

// ZapSink writes exchange lines through a zap logger.
type ZapSink struct {
	// base is the target logger. If nil, the global logger is used at write time.
	base *zap.Logger
	// tags overrides the contextual tags when tagged is true.
	tags   []string
	tagged bool
}

// NewZapSink creates a sink writing to base, or to the global logger if base is nil.
func NewZapSink(base *zap.Logger) *ZapSink {
	return &ZapSink{base: base}
}

// Info writes line with the tags of ctx, or the tags fixed by WithTags.
func (s *ZapSink) Info(ctx context.Context, line string, fields ...zap.Field) {
	tags := s.tags
	if !s.tagged {
		tags = logger.Tags(ctx)
	}

	if len(tags) > 0 {
		fields = append(fields, zap.Strings(logger.TagsKey, tags))
	}

	s.logger().Info(line, fields...)
}

// WithTags returns a copy of the sink bound to tags.
func (s *ZapSink) WithTags(tags []string) Sink {
	return &ZapSink{
		base:   s.base,
		tags:   slices.Clone(tags),
		tagged: true,
	}
}

func (s *ZapSink) logger() *zap.Logger {
	if s.base != nil {
		return s.base
	}

	return logger.Direct()
}
