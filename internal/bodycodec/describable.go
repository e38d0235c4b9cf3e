package bodycodec

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/oshokin/reqlog/internal/contenttype"
)

// Describable is a body that knows how to render itself into a JSON-safe value.
// The second return value is false when the body has no loggable representation.
type Describable interface {
	Loggable(attrs *contenttype.Attrs) (any, bool)
}

// Bytes is a raw body whose text encoding is unknown until its content type is consulted.
type Bytes []byte

// Text is a body handed over as a Go string, so UTF-8 is its assumed encoding.
type Text string

// Document is an already structured body, such as a decoded JSON object.
type Document struct {
	// Value is the structured body.
	Value any
}

// Opaque is any other body value.
type Opaque struct {
	// Value is the body as handed over by the caller.
	Value any
}

// Describe wraps body in the matching Describable variant.
func Describe(body any) Describable {
	switch v := body.(type) {
	case Describable:
		return v
	case json.RawMessage:
		if json.Valid(v) {
			return Document{Value: json.RawMessage(bytes.Clone(v))}
		}

		return Bytes(v)
	case []byte:
		return Bytes(v)
	case string:
		return Text(v)
	case map[string]any, []any:
		return Document{Value: v}
	default:
		return Opaque{Value: v}
	}
}

// Loggable renders the bytes as text when a declared or inferred charset applies cleanly,
// and as a list of 8-bit code points otherwise.
func (b Bytes) Loggable(attrs *contenttype.Attrs) (any, bool) {
	raw := bytes.Clone([]byte(b))
	if raw == nil {
		raw = []byte{}
	}

	if attrs == nil {
		attrs = contenttype.Parse("", false)
	}

	if attrs.Parsed() {
		if charset, ok := attrs.Charset(); ok {
			if text, ok := decodeCharset(raw, charset); ok {
				return text, true
			}
		}
	}

	if isASCII(raw) {
		return string(raw), true
	}

	// A declared charset that did not apply rules out guessing UTF-8.
	if !attrs.DeclaresCharset() && utf8.Valid(raw) {
		return string(raw), true
	}

	return codepoints(raw), true
}

// Loggable keeps valid UTF-8 text as is unless a declared charset applies to its bytes.
// Invalid text is handled like raw bytes.
func (t Text) Loggable(attrs *contenttype.Attrs) (any, bool) {
	if !utf8.ValidString(string(t)) {
		return Bytes(t).Loggable(attrs)
	}

	if attrs != nil && attrs.Parsed() {
		if charset, ok := attrs.Charset(); ok {
			if text, ok := decodeCharset([]byte(t), charset); ok {
				return text, true
			}
		}
	}

	return string(t), true
}

// Loggable returns the document itself when it encodes as JSON.
func (d Document) Loggable(_ *contenttype.Attrs) (any, bool) {
	return probe(d.Value)
}

// Loggable returns the value itself when it encodes as JSON.
func (o Opaque) Loggable(_ *contenttype.Attrs) (any, bool) {
	return probe(o.Value)
}

// probe reports whether value survives JSON encoding. A value encoding to null is absent.
func probe(value any) (any, bool) {
	if value == nil {
		return nil, false
	}

	encoded, err := json.Marshal(value)
	if err != nil || bytes.Equal(bytes.TrimSpace(encoded), []byte("null")) {
		return nil, false
	}

	return value, true
}
