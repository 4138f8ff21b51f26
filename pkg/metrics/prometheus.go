// Package metrics provides Prometheus metrics for the inhouse tournament service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	epochBuckets   []float64
	fitnessBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Tournament flow
	actions       *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	poolSize      *prometheus.GaugeVec
	activeMatches prometheus.Gauge
	guilds        prometheus.Gauge

	// Optimizer
	optimizerRuns     *prometheus.CounterVec
	optimizerEpochs   prometheus.Histogram
	optimizerFitness  prometheus.Histogram
	optimizerDuration prometheus.Histogram
	optimizerMemoHits prometheus.Counter

	// Ledger
	matchesScored   prometheus.Counter
	awardsApplied   prometheus.Counter
	scoreDuplicates prometheus.Counter
	toxicityReports prometheus.Counter

	// Directory and rating
	participants  prometheus.Gauge
	ratingLookups *prometheus.CounterVec

	// Job queue
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActive            prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record*/Update* helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "inhouse",
		subsystem:      "tournament",
		latencyBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		epochBuckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		fitnessBuckets: []float64{0, 0.5, 1, 2, 5, 10, 20, 50, 100},
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.actions = m.counterVec("actions_total", "Tournament actions by type and outcome", "action", "outcome")
	m.transitions = m.counterVec("match_transitions_total", "Match lifecycle transitions", "from", "to")
	m.poolSize = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "pool_size", ConstLabels: m.constLabels,
		Help: "Participants waiting in the pool per guild and status",
	}, []string{"guild", "status"})
	m.activeMatches = m.gauge("active_matches", "Matches that are not yet completed or cancelled")
	m.guilds = m.gauge("guilds", "Tournament instances held by the registry")

	m.optimizerRuns = m.counterVec("optimizer_runs_total", "Optimizer runs by stop reason", "stop_reason")
	m.optimizerEpochs = m.histogram("optimizer_epochs", "Epochs spent per optimizer run", m.epochBuckets)
	m.optimizerFitness = m.histogram("optimizer_fitness", "Best fitness reached per optimizer run", m.fitnessBuckets)
	m.optimizerDuration = m.histogram("optimizer_duration_milliseconds", "Wall time per optimizer run", m.latencyBuckets)
	m.optimizerMemoHits = m.counter("optimizer_memo_hits_total", "Candidate states skipped because they were already evaluated")

	m.matchesScored = m.counter("matches_scored_total", "Matches whose outcome reached the ledger")
	m.awardsApplied = m.counter("awards_applied_total", "Per-participant counter deltas written by the ledger")
	m.scoreDuplicates = m.counter("score_duplicates_total", "Rejected second scoring attempts for the same match")
	m.toxicityReports = m.counter("toxicity_reports_total", "Toxicity increments recorded")

	m.participants = m.gauge("participants", "Participants known to the directory")
	m.ratingLookups = m.counterVec("rating_lookups_total", "External rating lookups by result", "result")

	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the optimizer job queue")
	m.queueSize = m.gauge("queue_size", "Jobs waiting in the optimizer queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue attempts that failed")

	m.workerCount = m.gauge("worker_count", "Optimizer workers started")
	m.workerActive = m.gauge("worker_active", "Optimizer workers currently running a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time a worker spends on one job", m.latencyBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs that finished with an error")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_seconds",
		Help: "HTTP request duration in seconds", ConstLabels: m.constLabels, Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and kind", "component", "kind")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Live goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Most recent GC pause",
		[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50})
}

// RecordAction counts one dispatched action.
func RecordAction(action, outcome string) {
	globalManager.actions.WithLabelValues(action, outcome).Inc()
}

// RecordTransition counts one lifecycle transition.
func RecordTransition(from, to string) {
	globalManager.transitions.WithLabelValues(from, to).Inc()
}

// UpdatePoolSize sets the pool gauge for a guild and entry status.
func UpdatePoolSize(guild, status string, size int) {
	globalManager.poolSize.WithLabelValues(guild, status).Set(float64(size))
}

// AddActiveMatches moves the active match gauge by delta.
func AddActiveMatches(delta int) {
	globalManager.activeMatches.Add(float64(delta))
}

// UpdateGuilds sets the number of tournament instances.
func UpdateGuilds(count int) {
	globalManager.guilds.Set(float64(count))
}

// RecordOptimizerRun records the outcome of one search.
func RecordOptimizerRun(stopReason string, epochs int, fitness, durationMs float64, memoHits int) {
	globalManager.optimizerRuns.WithLabelValues(stopReason).Inc()
	globalManager.optimizerEpochs.Observe(float64(epochs))
	globalManager.optimizerFitness.Observe(fitness)
	globalManager.optimizerDuration.Observe(durationMs)
	globalManager.optimizerMemoHits.Add(float64(memoHits))
}

// RecordMatchScored counts a scored match and its awards.
func RecordMatchScored(awards int) {
	globalManager.matchesScored.Inc()
	globalManager.awardsApplied.Add(float64(awards))
}

// RecordScoreDuplicate counts a rejected second scoring attempt.
func RecordScoreDuplicate() {
	globalManager.scoreDuplicates.Inc()
}

// RecordToxicity counts a toxicity increment.
func RecordToxicity() {
	globalManager.toxicityReports.Inc()
}

// UpdateParticipants sets the directory size.
func UpdateParticipants(count int) {
	globalManager.participants.Set(float64(count))
}

// RecordRatingLookup counts a rating lookup; result is ok, stale, default or error.
func RecordRatingLookup(result string) {
	globalManager.ratingLookups.WithLabelValues(result).Inc()
}

// UpdateQueueCapacity sets the job queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current job queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive moves the busy worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActive.Add(float64(delta))
}

// RecordWorkerProcessingLatency records job latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request and its duration in seconds.
func RecordHTTPRequest(endpoint, method string, statusCode int, duration float64) {
	code := strconv.Itoa(statusCode)
	globalManager.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(duration)
}

// RecordError counts an error by component and kind.
func RecordError(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
