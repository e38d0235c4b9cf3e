package http

import (
	"time"

	"github.com/oshokin/reqlog/internal/version"
)

const (
	// DefaultTimeout is the default timeout duration for HTTP requests.
	DefaultTimeout = 60 * time.Second

	// userAgentProduct is the product token of the default User-Agent.
	userAgentProduct = "reqlog"
)

// DefaultUserAgent returns the User-Agent sent when the request carries none.
func DefaultUserAgent() string {
	return userAgentProduct + "/" + version.Short()
}
