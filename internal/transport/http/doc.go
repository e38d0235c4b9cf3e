// Package http provides custom HTTP transport utilities,
// including request/response exchange logging and User-Agent header injection.
// LogTransport captures both bodies without disturbing the caller's streams
// and hands each completed exchange to the exchangelog package.
package http
