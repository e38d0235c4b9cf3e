package contenttype

import (
	"regexp"
	"strings"
)

// bodyKind is the loggability class of a media type.
type bodyKind uint8

const (
	kindText bodyKind = iota
	kindBinary
)

// mediaTypeRule maps a media type pattern to a body kind.
type mediaTypeRule struct {
	pattern *regexp.Regexp
	kind    bodyKind
}

// mediaTypeRules is ordered by priority: the first matching rule wins.
// Patterns are anchored on both ends.
//
//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
var mediaTypeRules = []mediaTypeRule{
	{regexp.MustCompile(`^image/.*$`), kindBinary},
	{regexp.MustCompile(`^audio/.*$`), kindBinary},
	{regexp.MustCompile(`^video/.*$`), kindBinary},
	{regexp.MustCompile(`^model/.*$`), kindBinary},
	{regexp.MustCompile(`^text/.*$`), kindText},
	{regexp.MustCompile(`^message/.*$`), kindText},
	{regexp.MustCompile(`^application/octet-stream$`), kindBinary},
	{regexp.MustCompile(`^application/ogg$`), kindBinary},
	{regexp.MustCompile(`^application/pdf$`), kindBinary},
	{regexp.MustCompile(`^application/postscript$`), kindBinary},
	{regexp.MustCompile(`^application/zip$`), kindBinary},
	{regexp.MustCompile(`^application/gzip$`), kindBinary},
}

// IsText reports whether a body of this content type is worth embedding in a log record as text.
// Unknown, absent and malformed media types are treated as text.
func (a *Attrs) IsText() bool {
	if !a.hasMediaType {
		return true
	}

	mediaType := strings.ToLower(a.mediaType)

	for _, rule := range mediaTypeRules {
		if rule.pattern.MatchString(mediaType) {
			return rule.kind == kindText
		}
	}

	return true
}

// IsJSON reports whether the media type denotes a JSON document.
func (a *Attrs) IsJSON() bool {
	mediaType := strings.ToLower(a.mediaType)

	return mediaType == "application/json" ||
		mediaType == "text/json" ||
		strings.HasSuffix(mediaType, "+json")
}

// IsForm reports whether the media type denotes a URL-encoded form.
func (a *Attrs) IsForm() bool {
	return strings.EqualFold(a.mediaType, "application/x-www-form-urlencoded")
}
