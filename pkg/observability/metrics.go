// Package observability provides Prometheus metrics for simulations, storage and caching
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// SimulationsTotal tracks the total number of simulations requested
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_simulations_total",
			Help: "Total number of simulations processed",
		},
		[]string{"variable", "status"}, // status: success, failed
	)

	// SimulationDuration measures simulation duration in seconds
	SimulationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projector_simulation_duration_seconds",
			Help:    "Simulation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"variable", "status"},
	)

	// SimulationsRunning tracks the number of currently running simulations
	SimulationsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "projector_simulations_running",
			Help: "Number of currently running simulations",
		},
	)

	// RunsTotal counts Monte Carlo runs by outcome
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_runs_total",
			Help: "Total number of Monte Carlo runs",
		},
		[]string{"variable", "result"}, // result: complete, empty
	)

	// VariantFailures counts variants skipped during run aggregation
	VariantFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_variant_failures_total",
			Help: "Total number of variant evaluations skipped during aggregation",
		},
		[]string{"variable"},
	)

	// ComparisonsTotal counts comparisons by outcome
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_comparisons_total",
			Help: "Total number of comparisons assembled",
		},
		[]string{"status"},
	)

	// GraphBuildDuration measures time taken to load a driver graph
	GraphBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projector_graph_build_duration_seconds",
			Help:    "Time taken to load a driver graph",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
		},
		[]string{"result"}, // result: success, error
	)

	// GraphVariables tracks the number of variables in the last loaded graph
	GraphVariables = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "projector_graph_variables",
			Help: "Number of variables in the last loaded driver graph",
		},
	)

	// StorageQueries counts storage reads and writes
	StorageQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_storage_queries_total",
			Help: "Total number of storage queries executed",
		},
		[]string{"operation", "status"}, // status: success, error
	)

	// ErrorsTotal counts total number of errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// CacheHits tracks lookup cache hits
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_cache_hits_total",
			Help: "Total number of lookup cache hits",
		},
		[]string{"record"}, // record: variable, variants, overrides, target_year, names
	)

	// CacheMisses tracks lookup cache misses
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_cache_misses_total",
			Help: "Total number of lookup cache misses",
		},
		[]string{"record"},
	)
)

// RecordSimulationStart records the start of a simulation
func RecordSimulationStart() {
	SimulationsRunning.Inc()
}

// RecordSimulationComplete records simulation completion
func RecordSimulationComplete(variable, status string, duration float64) {
	SimulationsRunning.Dec()
	SimulationsTotal.WithLabelValues(variable, status).Inc()
	SimulationDuration.WithLabelValues(variable, status).Observe(duration)
}

// RecordRun records the outcome of one Monte Carlo run
func RecordRun(variable, result string) {
	RunsTotal.WithLabelValues(variable, result).Inc()
}

// RecordVariantFailure records a variant skipped during aggregation
func RecordVariantFailure(variable string) {
	VariantFailures.WithLabelValues(variable).Inc()
}

// RecordComparison records a comparison outcome
func RecordComparison(status string) {
	ComparisonsTotal.WithLabelValues(status).Inc()
}

// RecordGraphBuild records driver graph loading metrics
func RecordGraphBuild(result string, variables int, duration float64) {
	GraphBuildDuration.WithLabelValues(result).Observe(duration)
	if result == StatusSuccess {
		GraphVariables.Set(float64(variables))
	}
}

// RecordStorageQuery records a storage query
func RecordStorageQuery(operation, status string) {
	StorageQueries.WithLabelValues(operation, status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordCacheHit records a lookup cache hit
func RecordCacheHit(record string) {
	CacheHits.WithLabelValues(record).Inc()
}

// RecordCacheMiss records a lookup cache miss
func RecordCacheMiss(record string) {
	CacheMisses.WithLabelValues(record).Inc()
}

// Status label values shared by the Record helpers
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// Status returns the status label for err
func Status(err error) string {
	if err != nil {
		return StatusFailed
	}

	return StatusSuccess
}
