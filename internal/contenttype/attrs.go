package contenttype

import (
	"net/http"
	"regexp"
	"slices"
	"strings"
)

// HeaderName is the canonical name of the header parsed by this package.
const HeaderName = "Content-Type"

// charsetAttribute is the attribute naming the text encoding of a body.
const charsetAttribute = "charset"

var (
	// attributesPrefixPattern skips everything up to the last ';' and the whitespace after it.
	//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
	attributesPrefixPattern = regexp.MustCompile(`^.*;\s*`)

	// attributePattern matches one key=value pair with optional quotes and an optional trailing comma.
	//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
	attributePattern = regexp.MustCompile(`^(\w+)=("?)([^"]*)("?)\s*(,?)\s*`)
)

// Attrs is the parsed form of a single Content-Type header value.
// It is immutable once constructed and may be shared between goroutines.
type Attrs struct {
	// mediaType is the trimmed token before the first ';'.
	mediaType string
	// hasMediaType is false when no header value was given.
	hasMediaType bool
	// parsed reports whether the attribute section matched the grammar completely.
	parsed bool
	// attributes maps attribute names to their values in declaration order.
	attributes map[string][]string
}

// Parse parses a Content-Type header value.
// present is false when the header is absent, which is distinct from an empty value.
func Parse(header string, present bool) *Attrs {
	attrs := &Attrs{attributes: map[string][]string{}}

	if !present {
		return attrs
	}

	// An empty header carries no media type at all.
	if header != "" {
		mediaType, _, _ := strings.Cut(header, ";")
		attrs.mediaType = strings.TrimSpace(mediaType)
		attrs.hasMediaType = true
	}

	attributes, ok := parseAttributes(header)
	if ok {
		attrs.attributes = attributes
		attrs.parsed = true
	}

	return attrs
}

// ParseHeader parses the Content-Type header of h, treating a missing key as absent.
func ParseHeader(h http.Header) *Attrs {
	values, ok := h[HeaderName]
	if !ok || len(values) == 0 {
		return Parse("", false)
	}

	return Parse(values[0], true)
}

// MediaType returns the media type and whether one was present.
func (a *Attrs) MediaType() (string, bool) {
	return a.mediaType, a.hasMediaType
}

// Parsed reports whether the attribute section was parsed successfully.
func (a *Attrs) Parsed() bool {
	return a.parsed
}

// Attribute returns the values declared for key.
// An unknown key or an unparsed header yields an empty slice.
func (a *Attrs) Attribute(key string) []string {
	values := a.attributes[key]
	if values == nil {
		return []string{}
	}

	return slices.Clone(values)
}

// Charset returns the first declared charset attribute, if any.
func (a *Attrs) Charset() (string, bool) {
	values := a.attributes[charsetAttribute]
	if len(values) == 0 {
		return "", false
	}

	return values[0], true
}

// DeclaresCharset reports whether the header parsed and named at least one charset.
func (a *Attrs) DeclaresCharset() bool {
	return a.parsed && len(a.attributes[charsetAttribute]) > 0
}

// parseAttributes scans the attribute section of a header.
// It fails closed: any leftover or malformed input rejects the whole section.
func parseAttributes(header string) (map[string][]string, bool) {
	prefix := attributesPrefixPattern.FindString(header)
	if prefix == "" {
		return nil, false
	}

	var (
		rest       = header[len(prefix):]
		attributes = map[string][]string{}
	)

	for rest != "" {
		match := attributePattern.FindStringSubmatch(rest)
		if match == nil {
			break
		}

		rest = rest[len(match[0]):]

		var (
			key          = match[1]
			openQuote    = match[2]
			value        = match[3]
			closeQuote   = match[4]
			commaFollows = match[5] != ""
		)

		if openQuote != closeQuote {
			return nil, false
		}

		if !commaFollows && rest != "" {
			return nil, false
		}

		key = unescape(key)
		attributes[key] = append(attributes[key], unescape(value))
	}

	if rest != "" {
		return nil, false
	}

	return attributes, true
}

// unescape percent-decodes every valid %XX escape of s and keeps invalid ones as written.
func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))

			i += 2

			continue
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
