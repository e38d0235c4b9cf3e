package exchangelog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "reqlog"

// Metrics counts logged exchanges. A nil *Metrics records nothing.
type Metrics struct {
	exchanges *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the exchange metrics and registers them on registerer.
// Collectors that are already registered are reused.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	exchanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "client",
		Name:      "exchanges_total",
		Help:      "Number of logged outbound HTTP exchanges.",
	}, []string{"method", "status_class"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "client",
		Name:      "exchange_duration_seconds",
		Help:      "Duration of logged outbound HTTP exchanges.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	var err error

	if exchanges, err = register(registerer, exchanges); err != nil {
		return nil, err
	}

	if duration, err = register(registerer, duration); err != nil {
		return nil, err
	}

	return &Metrics{
		exchanges: exchanges,
		duration:  duration,
	}, nil
}

// Observe records one exchange.
func (m *Metrics) Observe(method string, class StatusClass, duration time.Duration) {
	if m == nil {
		return
	}

	method = strings.ToUpper(method)

	m.exchanges.WithLabelValues(method, class.String()).Inc()
	m.duration.WithLabelValues(method).Observe(duration.Seconds())
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return collector, fmt.Errorf("failed to register exchange metrics: %w", err)
}
