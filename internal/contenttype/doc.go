// Package contenttype parses Content-Type header values into a media type and
// a multi-valued attribute mapping, and classifies bodies as text or binary.
// The attribute grammar is strict: a header that does not match completely is
// reported as unparsed so that a malformed value never yields a charset hint.
package contenttype
