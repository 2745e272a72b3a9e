// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Counters and the operation duration summary are kept in a private
// registry and pushed to the gateway on Flush; the run label becomes the
// Pushgateway grouping key instead of a metric label.
package prompush

import (
	"fmt"

	"tablestat/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	run        string
	reg        *prometheus.Registry

	opCounter  *prometheus.CounterVec // tablestat_op_total
	opDuration *prometheus.SummaryVec // tablestat_op_duration_seconds

	rowCounter   *prometheus.CounterVec // tablestat_rows_total
	valueCounter *prometheus.CounterVec // tablestat_values_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name.
// gatewayURL: base URL of the Pushgateway server.
// run: optional grouping key value, usually the profile run ID.
func NewBackend(jobName, gatewayURL, run string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tablestat"
	}

	reg := prometheus.NewRegistry()

	opCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.OpTotal,
			Help: "Analysis operations executed, partitioned by op and status.",
		},
		[]string{"op", "status"},
	)
	opDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.OpDurationSeconds,
			Help:       "Duration of analysis operations in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"op", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Data rows read, partitioned by source kind.",
		},
		[]string{"source"},
	)
	valueCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.ValuesTotal,
			Help: "Values classified by analyses (numeric, parse_errors, null, ...).",
		},
		[]string{"kind"},
	)

	for name, c := range map[string]prometheus.Collector{
		"op counter":    opCounter,
		"op summary":    opDuration,
		"row counter":   rowCounter,
		"value counter": valueCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		run:          run,
		reg:          reg,
		opCounter:    opCounter,
		opDuration:   opDuration,
		rowCounter:   rowCounter,
		valueCounter: valueCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.OpTotal:
		if b.opCounter == nil {
			return
		}
		b.opCounter.WithLabelValues(labels["op"], labels["status"]).Add(delta)

	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["source"]).Add(delta)

	case metrics.ValuesTotal:
		if b.valueCounter == nil {
			return
		}
		b.valueCounter.WithLabelValues(labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.OpDurationSeconds || b.opDuration == nil {
		return
	}
	b.opDuration.WithLabelValues(labels["op"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	if b.run != "" {
		p = p.Grouping("run", b.run)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}
