package bodycodec

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// lookupEncoding resolves a charset name case-insensitively.
// IANA names and aliases are tried first, then the WHATWG labels.
func lookupEncoding(name string) (encoding.Encoding, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, true
	}

	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, true
	}

	return nil, false
}

// isUTF8Charset reports whether name denotes UTF-8.
func isUTF8Charset(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}

	return false
}

// isASCIICharset reports whether name denotes 7-bit US-ASCII.
func isASCIICharset(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "us-ascii", "ascii", "ansi_x3.4-1968", "iso646-us", "csascii":
		return true
	}

	return false
}

// decodeCharset reinterprets raw under the named charset.
// The result is kept only when the bytes are valid under it, i.e. decoding is lossless.
func decodeCharset(raw []byte, name string) (string, bool) {
	switch {
	case isUTF8Charset(name):
		if !utf8.Valid(raw) {
			return "", false
		}

		return string(raw), true
	case isASCIICharset(name):
		if !isASCII(raw) {
			return "", false
		}

		return string(raw), true
	}

	enc, ok := lookupEncoding(name)
	if !ok {
		return "", false
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}

	// Decoders substitute invalid input instead of failing, so validity is
	// checked by encoding the text back and comparing with the original bytes.
	reencoded, err := enc.NewEncoder().Bytes(decoded)
	if err != nil || !bytes.Equal(reencoded, raw) {
		return "", false
	}

	return string(decoded), true
}

// isASCII reports whether every byte of raw is 7-bit.
func isASCII(raw []byte) bool {
	for _, b := range raw {
		if b >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

// codepoints returns raw as a sequence of 8-bit code points.
func codepoints(raw []byte) []int {
	result := make([]int, len(raw))
	for i, b := range raw {
		result[i] = int(b)
	}

	return result
}
