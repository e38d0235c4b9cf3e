// Package bodycodec renders HTTP bodies into JSON-safe values.
//
// Raw bytes are reinterpreted under the charset declared by their content type
// when that charset applies cleanly, then as ASCII or UTF-8, and finally as a
// list of 8-bit code points, so a body never makes JSON encoding fail.
// Structured and opaque values are probed for JSON encodability and omitted
// when they cannot be encoded.
package bodycodec
