package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Fallback kinds
const (
	FallbackEmbedding  = "embedding"
	FallbackUnsortable = "unsortable"
	FallbackGraphUtils = "graph_utils"
)

// Metrics holds all Prometheus metrics for taskweave
type Metrics struct {
	// Run metrics
	Runs        *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	TaskCount   *prometheus.HistogramVec
	ClusterSize *prometheus.HistogramVec
	Clusters    *prometheus.GaugeVec

	// Ordering metrics
	CyclesDetected *prometheus.CounterVec
	EdgesBroken    *prometheus.CounterVec
	Fallbacks      *prometheus.CounterVec

	// Embedding metrics
	EmbedCalls    *prometheus.CounterVec
	EmbedLatency  *prometheus.HistogramVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	SkippedTasks  *prometheus.CounterVec
	InsertResults *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"operation", "outcome"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskweave_run_duration_seconds",
				Help:    "Pipeline run duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
			},
			[]string{"operation"},
		),
		TaskCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskweave_run_tasks",
				Help:    "Number of tasks processed per run",
				Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
			},
			[]string{"operation"},
		),
		ClusterSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskweave_cluster_size",
				Help:    "Number of tasks per produced cluster",
				Buckets: []float64{1, 2, 5, 10, 15, 20, 50},
			},
			[]string{"operation"},
		),
		Clusters: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "taskweave_clusters",
				Help: "Number of clusters produced by the last run",
			},
			[]string{"operation"},
		),

		CyclesDetected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_cycles_detected_total",
				Help: "Total number of cluster dependency cycles detected",
			},
			[]string{},
		),
		EdgesBroken: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_edges_broken_total",
				Help: "Total number of cluster edges removed to break cycles",
			},
			[]string{},
		),
		Fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_fallbacks_total",
				Help: "Total number of degraded pipeline steps",
			},
			[]string{"kind"},
		),

		EmbedCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_embed_calls_total",
				Help: "Total number of embedding provider calls",
			},
			[]string{"provider", "success"},
		),
		EmbedLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskweave_embed_latency_seconds",
				Help:    "Embedding provider call latency in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"provider"},
		),
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_embed_cache_hits_total",
				Help: "Total number of embedding cache hits",
			},
			[]string{},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_embed_cache_misses_total",
				Help: "Total number of embedding cache misses",
			},
			[]string{},
		),
		SkippedTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_skipped_tasks_total",
				Help: "Total number of tasks skipped as malformed or duplicate",
			},
			[]string{"reason"},
		),
		InsertResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_insertions_total",
				Help: "Total number of incremental insertions by placement",
			},
			[]string{"placement", "split"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskweave_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// ObserveRun records the outcome and shape of one pipeline run.
func (m *Metrics) ObserveRun(operation string, err error, elapsed time.Duration, tasks int, clusterSizes []int) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.Runs.WithLabelValues(operation, outcome).Inc()
	m.RunDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	m.TaskCount.WithLabelValues(operation).Observe(float64(tasks))
	m.Clusters.WithLabelValues(operation).Set(float64(len(clusterSizes)))
	for _, size := range clusterSizes {
		m.ClusterSize.WithLabelValues(operation).Observe(float64(size))
	}
}

// ObserveOrdering records cycles found and edges removed by the orderer.
func (m *Metrics) ObserveOrdering(cycles, broken int) {
	if m == nil {
		return
	}
	m.CyclesDetected.WithLabelValues().Add(float64(cycles))
	m.EdgesBroken.WithLabelValues().Add(float64(broken))
}

// ObserveFallback records a degraded pipeline step.
func (m *Metrics) ObserveFallback(kind string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(kind).Inc()
}

// ObserveEmbed records an embedding provider call.
func (m *Metrics) ObserveEmbed(provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	success := "true"
	if err != nil {
		success = "false"
	}
	m.EmbedCalls.WithLabelValues(provider, success).Inc()
	m.EmbedLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveCache records embedding cache hits and misses.
func (m *Metrics) ObserveCache(hits, misses int) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues().Add(float64(hits))
	m.CacheMisses.WithLabelValues().Add(float64(misses))
}

// ObserveSkipped records a skipped task by error code.
func (m *Metrics) ObserveSkipped(reason string) {
	if m == nil {
		return
	}
	m.SkippedTasks.WithLabelValues(reason).Inc()
}

// ObserveInsert records where an inserted task landed.
func (m *Metrics) ObserveInsert(placement string, split bool) {
	if m == nil {
		return
	}
	s := "false"
	if split {
		s = "true"
	}
	m.InsertResults.WithLabelValues(placement, s).Inc()
}

// ObserveError records a coded error for a component.
func (m *Metrics) ObserveError(code, component string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code, component).Inc()
}
