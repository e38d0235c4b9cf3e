package app

import (
	"context"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/oshokin/reqlog/internal/logger"
)

// MetricLine is one printable sample of a gathered metric.
type MetricLine struct {
	// Name is the metric family name.
	Name string
	// Labels is the rendered label set, e.g. `method="GET"`.
	Labels string
	// Value is the counter value, or the observation count of a histogram.
	Value float64
	// Sum is the sum of histogram observations. Zero for counters.
	Sum float64
}

// GatherMetricLines collects counters and histograms from gatherer in a stable order.
func GatherMetricLines(gatherer prometheus.Gatherer) ([]MetricLine, error) {
	families, err := gatherer.Gather()
	if err != nil {
		return nil, err
	}

	var lines []MetricLine

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			line := MetricLine{
				Name:   family.GetName(),
				Labels: renderLabels(metric.GetLabel()),
			}

			switch family.GetType() {
			case dto.MetricType_COUNTER:
				line.Value = metric.GetCounter().GetValue()
			case dto.MetricType_HISTOGRAM:
				line.Value = float64(metric.GetHistogram().GetSampleCount())
				line.Sum = metric.GetHistogram().GetSampleSum()
			case dto.MetricType_GAUGE:
				line.Value = metric.GetGauge().GetValue()
			default:
				continue
			}

			lines = append(lines, line)
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}

		return lines[i].Labels < lines[j].Labels
	})

	return lines, nil
}

func renderLabels(pairs []*dto.LabelPair) string {
	rendered := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		rendered = append(rendered, pair.GetName()+`="`+pair.GetValue()+`"`)
	}

	return strings.Join(rendered, ",")
}

// PrintMetrics logs the gathered exchange metrics.
func PrintMetrics(ctx context.Context, gatherer prometheus.Gatherer) {
	lines, err := GatherMetricLines(gatherer)
	if err != nil {
		logger.Errorf(ctx, "Failed to gather metrics: %v", err)

		return
	}

	if len(lines) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "Metrics")

	for _, line := range lines {
		if line.Sum != 0 {
			logger.Infof(ctx, "  %s{%s} count=%g sum=%gs", line.Name, line.Labels, line.Value, line.Sum)

			continue
		}

		logger.Infof(ctx, "  %s{%s} %g", line.Name, line.Labels, line.Value)
	}
}
