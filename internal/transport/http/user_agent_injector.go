package http

import (
	"net/http"

	"github.com/oshokin/reqlog/internal/utils"
)

// userAgentHeader is the HTTP header name for User-Agent.
const userAgentHeader = "User-Agent"

// UserAgentInjector fills a missing User-Agent header before the request reaches the next round tripper.
// It clones the request instead of modifying the caller's copy.
type UserAgentInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgentProvider supplies the User-Agent string. An empty string falls back to DefaultUserAgent.
	userAgentProvider utils.UserAgentProvider
}

// NewUserAgentInjector creates and returns a new instance of UserAgentInjector.
// A nil provider always injects DefaultUserAgent.
func NewUserAgentInjector(next http.RoundTripper, userAgentProvider utils.UserAgentProvider) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &UserAgentInjector{
		next:              next,
		userAgentProvider: userAgentProvider,
	}
}

// RoundTrip executes a single HTTP transaction and injects a User-Agent header if it is missing.
// It implements the http.RoundTripper interface.
func (t *UserAgentInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if req.Header.Get(userAgentHeader) != "" {
		return t.next.RoundTrip(req)
	}

	cloned := req.Clone(req.Context())
	if cloned.Header == nil {
		cloned.Header = make(http.Header)
	}

	cloned.Header.Set(userAgentHeader, t.userAgent())

	return t.next.RoundTrip(cloned)
}

func (t *UserAgentInjector) userAgent() string {
	if t.userAgentProvider != nil {
		if userAgent := t.userAgentProvider.GetUserAgent(); userAgent != "" {
			return userAgent
		}
	}

	return DefaultUserAgent()
}
