// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from tablestat runs.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems live in subpackages (prompush, datadog); the
//     rest of the code base depends only on this package.
//
// The instrumented units are analysis operations (profile, stats,
// valuecounts, ...) and the rows pulled from sources.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	OpTotal           = "tablestat_op_total"
	OpDurationSeconds = "tablestat_op_duration_seconds"
	RowsTotal         = "tablestat_rows_total"
	ValuesTotal       = "tablestat_values_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordOp counts one analysis operation and observes its duration.
func RecordOp(run, op string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"run":    run,
		"op":     op,
		"status": status,
	}
	b := current()
	b.IncCounter(OpTotal, 1, lbls)
	b.ObserveHistogram(OpDurationSeconds, d.Seconds(), lbls)
}

// RecordRows adds delta data rows read from the named source.
func RecordRows(run, source string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"run":    run,
		"source": source,
	})
}

// RecordValues adds delta values of the given kind seen by an operation.
//
// Typical kinds:
//   - "numeric"
//   - "parse_errors"
//   - "null"
func RecordValues(run, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(ValuesTotal, float64(delta), Labels{
		"run":  run,
		"kind": kind,
	})
}
