package app

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/reqlog/internal/config"
	"github.com/oshokin/reqlog/internal/contenttype"
	"github.com/oshokin/reqlog/internal/exchangelog"
	"github.com/oshokin/reqlog/internal/redact"
	http_transport "github.com/oshokin/reqlog/internal/transport/http"
	"github.com/oshokin/reqlog/internal/utils"
)

// NewHTTPClient builds an HTTP client whose every exchange is logged according to cfg.
// cfg must already be validated. If registerer is nil, no metrics are recorded.
func NewHTTPClient(cfg *config.Config, registerer prometheus.Registerer) (*http.Client, error) {
	contentTypes, err := contenttype.NewCache(cfg.ContentTypeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create content type cache: %w", err)
	}

	var metrics *exchangelog.Metrics

	if registerer != nil {
		if metrics, err = exchangelog.NewMetrics(registerer); err != nil {
			return nil, err
		}
	}

	requestLogger := exchangelog.New(nil, exchangelog.Options{
		Redaction:    redact.NewSpec(cfg.FilterKeys, cfg.RedactionMarker),
		Colorize:     cfg.Color,
		ContentTypes: contentTypes,
		Metrics:      metrics,
	})

	// Cookies persist between the calls of one command.
	cookies, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	timeout := cfg.ParsedTimeout
	if timeout <= 0 {
		timeout = http_transport.DefaultTimeout
	}

	// The injector wraps the logger so the logged request carries the final User-Agent.
	return &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(http.DefaultTransport, requestLogger, contentTypes, cfg.ParsedMaxBodySize),
			utils.NewSimpleUserAgentProvider(cfg.UserAgent)),
		Jar:     cookies,
		Timeout: timeout,
	}, nil
}
