package contenttype

import (
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of distinct header values kept by a Cache.
const DefaultCacheSize = 256

// Cache memoizes parsed header values.
// A nil *Cache is valid and parses every value afresh.
type Cache struct {
	// entries holds parsed values keyed by the raw header value.
	entries *lru.Cache[string, *Attrs]
	// absent is shared by every lookup of a missing header.
	absent *Attrs
}

// NewCache creates a cache holding up to size parsed header values.
// If size is less than or equal to 0, it defaults to DefaultCacheSize.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	entries, err := lru.New[string, *Attrs](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create content type cache: %w", err)
	}

	return &Cache{
		entries: entries,
		absent:  Parse("", false),
	}, nil
}

// Parse returns the parsed form of header, reusing a cached value when possible.
func (c *Cache) Parse(header string, present bool) *Attrs {
	if c == nil {
		return Parse(header, present)
	}

	if !present {
		return c.absent
	}

	if attrs, ok := c.entries.Get(header); ok {
		return attrs
	}

	attrs := Parse(header, true)
	c.entries.Add(header, attrs)

	return attrs
}

// ParseHeader returns the parsed Content-Type header of h.
func (c *Cache) ParseHeader(h http.Header) *Attrs {
	values, ok := h[HeaderName]
	if !ok || len(values) == 0 {
		return c.Parse("", false)
	}

	return c.Parse(values[0], true)
}

// Len returns the number of cached header values.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	return c.entries.Len()
}
