package redact

import (
	"net/url"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/oshokin/reqlog/internal/contenttype"
)

// DefaultMarker replaces the values of redacted keys.
const DefaultMarker = "[FILTERED]"

// Spec is a set of field names whose values are hidden before logging.
// A nil *Spec redacts nothing.
type Spec struct {
	// keys holds lower-cased field names.
	keys map[string]struct{}
	// marker replaces the value of every matched field.
	marker string
}

// NewSpec creates a redaction spec for keys.
// It returns nil when keys is empty. An empty marker defaults to DefaultMarker.
func NewSpec(keys []string, marker string) *Spec {
	set := make(map[string]struct{}, len(keys))

	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		set[strings.ToLower(key)] = struct{}{}
	}

	if len(set) == 0 {
		return nil
	}

	if marker == "" {
		marker = DefaultMarker
	}

	return &Spec{
		keys:   set,
		marker: marker,
	}
}

// Marker returns the replacement value.
func (s *Spec) Marker() string {
	if s == nil {
		return DefaultMarker
	}

	return s.marker
}

// Matches reports whether key must be redacted. Matching is case-insensitive.
func (s *Spec) Matches(key string) bool {
	if s == nil {
		return false
	}

	_, ok := s.keys[strings.ToLower(key)]

	return ok
}

// Bytes redacts a raw body according to its content type.
// JSON documents and URL-encoded forms are supported; for anything else,
// or when the body does not parse, the second return value is false and the
// caller keeps the original body.
func (s *Spec) Bytes(body []byte, attrs *contenttype.Attrs) ([]byte, bool) {
	if s == nil || attrs == nil || len(body) == 0 {
		return nil, false
	}

	switch {
	case attrs.IsJSON():
		return s.jsonBytes(body)
	case attrs.IsForm():
		return s.formBytes(body), true
	default:
		return nil, false
	}
}

// Document returns a redacted copy of an already decoded document.
// Maps and slices are copied on the way down; other values are returned as is.
func (s *Spec) Document(value any) any {
	if s == nil {
		return value
	}

	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))

		for key, child := range v {
			if s.Matches(key) {
				result[key] = s.marker

				continue
			}

			result[key] = s.Document(child)
		}

		return result
	case []any:
		result := make([]any, len(v))
		for i, child := range v {
			result[i] = s.Document(child)
		}

		return result
	default:
		return value
	}
}

func (s *Spec) jsonBytes(body []byte) ([]byte, bool) {
	var parser fastjson.Parser

	root, err := parser.ParseBytes(body)
	if err != nil {
		return nil, false
	}

	var arena fastjson.Arena

	return s.appendValue(make([]byte, 0, len(body)), root, &arena), true
}

// appendValue writes v to dst with the value of every matching key replaced by the marker.
// Objects are written entry by entry, so repeated keys are all redacted and keep their order.
func (s *Spec) appendValue(dst []byte, v *fastjson.Value, arena *fastjson.Arena) []byte {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, err := v.Object()
		if err != nil {
			return v.MarshalTo(dst)
		}

		dst = append(dst, '{')
		first := true

		obj.Visit(func(key []byte, child *fastjson.Value) {
			if !first {
				dst = append(dst, ',')
			}

			first = false

			dst = arena.NewStringBytes(key).MarshalTo(dst)
			dst = append(dst, ':')

			if s.Matches(string(key)) {
				dst = arena.NewString(s.marker).MarshalTo(dst)

				return
			}

			dst = s.appendValue(dst, child, arena)
		})

		return append(dst, '}')
	case fastjson.TypeArray:
		items, err := v.Array()
		if err != nil {
			return v.MarshalTo(dst)
		}

		dst = append(dst, '[')

		for i, item := range items {
			if i > 0 {
				dst = append(dst, ',')
			}

			dst = s.appendValue(dst, item, arena)
		}

		return append(dst, ']')
	default:
		return v.MarshalTo(dst)
	}
}

// formBytes rewrites matching pairs of a URL-encoded form, keeping pair order.
func (s *Spec) formBytes(body []byte) []byte {
	pairs := strings.Split(string(body), "&")

	for i, pair := range pairs {
		rawKey, _, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
		}

		if s.Matches(key) {
			pairs[i] = rawKey + "=" + url.QueryEscape(s.marker)
		}
	}

	return []byte(strings.Join(pairs, "&"))
}
