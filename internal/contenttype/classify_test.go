package contenttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsText tests text versus binary classification.
func TestIsText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   string
		present  bool
		expected bool
	}{
		{name: "absent", present: false, expected: true},
		{name: "empty", header: "", present: true, expected: true},
		{name: "text/plain", header: "text/plain", present: true, expected: true},
		{name: "text/html with charset", header: "text/html; charset=utf-8", present: true, expected: true},
		{name: "message/http", header: "message/http", present: true, expected: true},
		{name: "application/json", header: "application/json", present: true, expected: true},
		{name: "unknown", header: "application/x-custom", present: true, expected: true},
		{name: "malformed", header: `;;; "`, present: true, expected: true},
		{name: "image/png", header: "image/png", present: true, expected: false},
		{name: "uppercase image", header: "Image/PNG", present: true, expected: false},
		{name: "audio/mpeg", header: "audio/mpeg", present: true, expected: false},
		{name: "video/mp4", header: "video/mp4", present: true, expected: false},
		{name: "model/gltf+json", header: "model/gltf+json", present: true, expected: false},
		{name: "application/octet-stream", header: "application/octet-stream", present: true, expected: false},
		{name: "application/ogg", header: "application/ogg", present: true, expected: false},
		{name: "application/pdf", header: "application/pdf", present: true, expected: false},
		{name: "application/postscript", header: "application/postscript", present: true, expected: false},
		{name: "application/zip", header: "application/zip", present: true, expected: false},
		{name: "application/gzip", header: "application/gzip; foo=bar", present: true, expected: false},
		{name: "zip prefix is not zip", header: "application/zipper", present: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Parse(tt.header, tt.present).IsText())
		})
	}
}

// TestIsJSONAndIsForm tests structured media type detection.
func TestIsJSONAndIsForm(t *testing.T) {
	t.Parallel()

	assert.True(t, Parse("application/json; charset=utf-8", true).IsJSON())
	assert.True(t, Parse("application/problem+json", true).IsJSON())
	assert.True(t, Parse("text/json", true).IsJSON())
	assert.False(t, Parse("text/plain", true).IsJSON())
	assert.False(t, Parse("", false).IsJSON())

	assert.True(t, Parse("application/x-www-form-urlencoded", true).IsForm())
	assert.False(t, Parse("multipart/form-data; boundary=x", true).IsForm())
}

// TestCache tests that the cache reuses parsed values.
func TestCache(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(2)
	require.NoError(t, err)

	first := cache.Parse("text/plain; charset=utf-8", true)
	second := cache.Parse("text/plain; charset=utf-8", true)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())

	absent := cache.Parse("", false)
	assert.Same(t, absent, cache.Parse("ignored", false))
	assert.Equal(t, 1, cache.Len())

	cache.Parse("a/b", true)
	cache.Parse("c/d", true)
	assert.Equal(t, 2, cache.Len())
}

// TestNilCache tests that a nil cache still parses.
func TestNilCache(t *testing.T) {
	t.Parallel()

	var cache *Cache

	attrs := cache.Parse("image/png", true)
	assert.False(t, attrs.IsText())
	assert.Equal(t, 0, cache.Len())
}
