// Package exchangelog records outbound HTTP exchanges.
//
// An Exchange is begun before the request is sent, completed when the response
// arrives and logged exactly once. Logging emits two lines through a Sink: a
// short colorized summary and the full structured Record encoded as JSON.
// Contextual tags are captured when the exchange begins and reapplied on
// emission, so the lines carry the tags of the originating call even when the
// completion runs elsewhere.
package exchangelog
