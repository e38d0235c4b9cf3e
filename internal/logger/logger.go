package logger

import (
	"context"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	//nolint:gochecknoglobals // The global logger is shared by every package through the context helpers.
	globalLogger atomic.Pointer[zap.SugaredLogger]

	//nolint:gochecknoglobals // The atomic level is changed at runtime after the configuration is loaded.
	defaultLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

//nolint:gochecknoinits // The logger must be usable before the configuration is loaded.
func init() {
	SetLogger(New(defaultLevel))
}

// New creates a sugared logger writing human-readable entries to stderr.
// If level is nil, the package-wide atomic level is used.
func New(level zapcore.LevelEnabler, options ...zap.Option) *zap.SugaredLogger {
	if level == nil {
		level = defaultLevel
	}

	sink := zapcore.Lock(zapcore.AddSync(os.Stderr))

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, level)

	options = append(options, zap.ErrorOutput(sink), zap.AddCaller(), zap.AddCallerSkip(1))

	return zap.New(core, options...).Sugar()
}

// ParseLogLevel converts a textual level into a zap level.
// The second return value reports whether the input was recognized.
func ParseLogLevel(value string) (zapcore.Level, bool) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || strings.TrimSpace(value) == "" {
		return zapcore.InfoLevel, false
	}

	return level, true
}

// Level returns the current level of the global logger.
func Level() zapcore.Level {
	return defaultLevel.Level()
}

// SetLevel changes the level of the global logger.
func SetLevel(level zapcore.Level) {
	defaultLevel.SetLevel(level)
}

// IsDebugLevel reports whether debug entries are currently emitted.
func IsDebugLevel() bool {
	return defaultLevel.Enabled(zapcore.DebugLevel)
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return globalLogger.Load()
}

// Direct returns the global logger for callers that log through it without the package helpers.
// The one-frame caller skip that New adds for the helpers is removed.
func Direct() *zap.Logger {
	return Logger().Desugar().WithOptions(zap.AddCallerSkip(-1))
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.SugaredLogger) {
	globalLogger.Store(l)
}

// FromContext returns the global logger enriched with the tags stored in ctx.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	l := Logger()

	if tags := Tags(ctx); len(tags) > 0 {
		l = l.With(zap.Strings(TagsKey, tags))
	}

	return l
}

// Debug logs a message at debug level.
func Debug(ctx context.Context, args ...any) {
	FromContext(ctx).Debug(args...)
}

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Debugf(format, args...)
}

// DebugKV logs a message with key-value pairs at debug level.
func DebugKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Debugw(message, kvs...)
}

// Info logs a message at info level.
func Info(ctx context.Context, args ...any) {
	FromContext(ctx).Info(args...)
}

// Infof logs a formatted message at info level.
func Infof(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Infof(format, args...)
}

// InfoKV logs a message with key-value pairs at info level.
func InfoKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Infow(message, kvs...)
}

// Warn logs a message at warn level.
func Warn(ctx context.Context, args ...any) {
	FromContext(ctx).Warn(args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Warnf(format, args...)
}

// WarnKV logs a message with key-value pairs at warn level.
func WarnKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Warnw(message, kvs...)
}

// Error logs a message at error level.
func Error(ctx context.Context, args ...any) {
	FromContext(ctx).Error(args...)
}

// Errorf logs a formatted message at error level.
func Errorf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Errorf(format, args...)
}

// ErrorKV logs a message with key-value pairs at error level.
func ErrorKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Errorw(message, kvs...)
}

// Fatal logs a message at fatal level and exits.
func Fatal(ctx context.Context, args ...any) {
	FromContext(ctx).Fatal(args...)
}

// Fatalf logs a formatted message at fatal level and exits.
func Fatalf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Fatalf(format, args...)
}

// FatalKV logs a message with key-value pairs at fatal level and exits.
func FatalKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Fatalw(message, kvs...)
}
