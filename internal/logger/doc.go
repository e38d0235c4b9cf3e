// Package logger provides a structured logging solution using the Zap logging library.
// It keeps a global logger with an atomic level, exposes context-aware helpers,
// and carries contextual tags through context.Context so that log entries emitted
// after an asynchronous hand-off still carry the tags of the originating call.
package logger
