package exchangelog

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

const (
	// clientRole marks records emitted for outbound requests.
	clientRole = "client"

	defaultHTTPPort  = "80"
	defaultHTTPSPort = "443"
)

// Record is the structured log payload of one exchange.
type Record struct {
	RequestRole string          `json:"request_role"`
	Request     RequestBlock    `json:"request"`
	Response    ResponseBlock   `json:"response"`
	Processing  ProcessingBlock `json:"processing"`
}

// RequestBlock describes the request side of a Record.
type RequestBlock struct {
	Method  string            `json:"method"`
	URI     string            `json:"uri"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body,omitempty"`
}

// ResponseBlock describes the response side of a Record.
type ResponseBlock struct {
	Status  string            `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body,omitempty"`
}

// ProcessingBlock holds timing and contextual information.
type ProcessingBlock struct {
	// BeganAt is the start time in seconds since the Unix epoch.
	BeganAt float64 `json:"began_at"`
	// Duration is the exchange duration in seconds.
	Duration float64  `json:"duration"`
	Tags     []string `json:"tags,omitempty"`
}

// flattenHeaders joins repeated header values with ", ".
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for key, values := range h {
		result[key] = strings.Join(values, ", ")
	}

	return result
}

// NormalizeURL renders u in a normalized absolute form: lower-case scheme and host,
// no default port, "/" for an empty path and no fragment.
func NormalizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	normalized := *u
	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = normalizeHost(normalized.Scheme, normalized.Host)
	normalized.Fragment = ""
	normalized.RawFragment = ""

	if normalized.Host != "" && normalized.Path == "" && normalized.Opaque == "" {
		normalized.Path = "/"
		normalized.RawPath = ""
	}

	return normalized.String()
}

func normalizeHost(scheme, host string) string {
	host = strings.ToLower(host)

	hostname, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	if (scheme == "http" && port == defaultHTTPPort) || (scheme == "https" && port == defaultHTTPSPort) {
		if strings.Contains(hostname, ":") {
			return "[" + hostname + "]"
		}

		return hostname
	}

	return host
}
