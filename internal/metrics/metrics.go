// Package metrics exposes Prometheus instrumentation for the supervisor
// and logger pipeline, grounded on the teacher's internal/metrics package
// (which instrumented LogEntry throughput; here the same idiom
// instruments the module's own LoggingEvent stream instead).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

var (
	// EventsBySeverity counts every event delivered to the main logger,
	// labeled by its (possibly appease-rewritten) severity name.
	EventsBySeverity = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goworkflow",
		Name:      "events_total",
		Help:      "Number of logging events delivered to the main logger, by severity.",
	}, []string{"severity"})

	// WorstSeverity reports the current worst-severity accumulator value
	// as an ordinal (see severity.Severity's declaration order).
	WorstSeverity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "goworkflow",
		Name:      "worst_severity",
		Help:      "Ordinal of the worst severity observed so far (see severity package order).",
	})

	// BackgroundQueueDepth reports the current number of events queued
	// in a background logger, labeled by sink name.
	BackgroundQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "goworkflow",
		Name:      "background_logger_queue_depth",
		Help:      "Number of events currently queued in a background logger.",
	}, []string{"sink"})

	// FileSinkDedupSetSize reports the size of a file sink's
	// write-dedup set, labeled by file path.
	FileSinkDedupSetSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "goworkflow",
		Name:      "file_sink_dedup_set_size",
		Help:      "Number of distinct lines recorded in a file sink's write-dedup set.",
	}, []string{"path"})
)

// Registry collects every metric this package defines, for tests and for
// hosts that want an isolated registry instead of the global default.
func Registry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(EventsBySeverity, WorstSeverity, BackgroundQueueDepth, FileSinkDedupSetSize)
	return r
}

func init() {
	prometheus.MustRegister(EventsBySeverity, WorstSeverity, BackgroundQueueDepth, FileSinkDedupSetSize)
}

// RecordEvent increments the per-severity event counter.
func RecordEvent(s severity.Severity) {
	EventsBySeverity.WithLabelValues(s.String()).Inc()
}

// SetWorstSeverity updates the worst-severity gauge.
func SetWorstSeverity(s severity.Severity) {
	WorstSeverity.Set(float64(s))
}

// SetBackgroundQueueDepth updates the named background logger's queue
// depth gauge.
func SetBackgroundQueueDepth(sink string, depth int) {
	BackgroundQueueDepth.WithLabelValues(sink).Set(float64(depth))
}

// SetFileSinkDedupSetSize updates the named file sink's dedup-set-size
// gauge.
func SetFileSinkDedupSetSize(path string, size int) {
	FileSinkDedupSetSize.WithLabelValues(path).Set(float64(size))
}
