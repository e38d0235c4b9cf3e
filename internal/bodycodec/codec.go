package bodycodec

import "github.com/oshokin/reqlog/internal/contenttype"

// ToLoggable renders body into a value that always survives JSON encoding.
// The second return value is false when the body should be omitted from the log.
func ToLoggable(body any, attrs *contenttype.Attrs) (any, bool) {
	if body == nil {
		return nil, false
	}

	return Describe(body).Loggable(attrs)
}
