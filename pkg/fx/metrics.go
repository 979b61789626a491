package fx

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "kirei").
	Namespace string

	// Subsystem is the metrics subsystem (default: "fx").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures EnableMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the flush duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "kirei",
		Subsystem: "fx",
		Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	effectsCreated   prometheus.Counter
	effectsStopped   prometheus.Counter
	activeEffects    prometheus.Gauge
	effectRuns       prometheus.Counter
	tracks           prometheus.Counter
	triggers         *prometheus.CounterVec
	proxies          *prometheus.CounterVec
	readonlyRejected prometheus.Counter
	queuePushes      prometheus.Counter
	flushes          *prometheus.CounterVec
	flushDuration    *prometheus.HistogramVec
	recursionDrops   *prometheus.CounterVec
	jobPanics        *prometheus.CounterVec
}

var globalMetrics atomic.Pointer[metrics]

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &metrics{
		effectsCreated: counter("effects_created_total", "Total number of effects created"),
		effectsStopped: counter("effects_stopped_total", "Total number of effects stopped"),
		activeEffects: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_effects",
			Help:        "Number of effects created and not yet stopped",
			ConstLabels: config.ConstLabels,
		}),
		effectRuns:       counter("effect_runs_total", "Total number of effect runs"),
		tracks:           counter("tracks_total", "Total number of dependency edges recorded"),
		triggers:         counterVec("triggers_total", "Total number of writes that notified dependents", "op"),
		proxies:          counterVec("proxies_created_total", "Total number of proxies created", "mode"),
		readonlyRejected: counter("readonly_rejections_total", "Total number of writes rejected by read-only proxies"),
		queuePushes:      counter("queue_pushes_total", "Total number of jobs accepted by queues"),
		flushes:          counterVec("flushes_total", "Total number of queue flushes", "queue"),
		flushDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Queue flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"queue"}),
		recursionDrops: counterVec("recursion_drops_total", "Total number of effects dropped for exceeding the recursion limit", "queue"),
		jobPanics:      counterVec("job_panics_total", "Total number of recovered job panics", "queue"),
	}
}

// EnableMetrics registers the package collectors and starts recording.
//
// Metrics collected (with the default namespace and subsystem):
//   - kirei_fx_effects_created_total, kirei_fx_effects_stopped_total
//   - kirei_fx_active_effects
//   - kirei_fx_effect_runs_total
//   - kirei_fx_tracks_total, kirei_fx_triggers_total{op}
//   - kirei_fx_proxies_created_total{mode}
//   - kirei_fx_readonly_rejections_total
//   - kirei_fx_queue_pushes_total, kirei_fx_flushes_total{queue}
//   - kirei_fx_flush_duration_seconds{queue}
//   - kirei_fx_recursion_drops_total{queue}, kirei_fx_job_panics_total{queue}
//
// Calling it again replaces the collectors; the registry must not already
// hold collectors with the same names.
func EnableMetrics(opts ...MetricsOption) {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	globalMetrics.Store(initMetrics(config))
}

// DisableMetrics stops recording. Registered collectors keep their values.
func DisableMetrics() {
	globalMetrics.Store(nil)
}

func recordTrack() {
	stats.tracks.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.tracks.Inc()
	}
}

func recordTrigger(op TriggerOp) {
	stats.triggers.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.triggers.WithLabelValues(string(op)).Inc()
	}
}

func recordEffectCreated() {
	stats.effectsCreated.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.effectsCreated.Inc()
		m.activeEffects.Inc()
	}
}

func recordEffectRun() {
	stats.effectRuns.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.effectRuns.Inc()
	}
}

func recordEffectStopped() {
	stats.effectsStopped.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.effectsStopped.Inc()
		m.activeEffects.Dec()
	}
}

func recordProxyCreated(readonly bool) {
	mode := "reactive"
	if readonly {
		mode = "readonly"
		stats.readonlyProxies.Add(1)
	} else {
		stats.reactiveProxies.Add(1)
	}
	if m := globalMetrics.Load(); m != nil {
		m.proxies.WithLabelValues(mode).Inc()
	}
}

func recordReadonlyRejected() {
	stats.readonlyRejected.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.readonlyRejected.Inc()
	}
}

func recordQueuePush() {
	stats.queuePushes.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.queuePushes.Inc()
	}
}

func recordFlush(queue string, ev FlushEvent) {
	stats.flushes.Add(1)
	stats.flushRuns.Add(uint64(ev.Runs))
	if m := globalMetrics.Load(); m != nil {
		m.flushes.WithLabelValues(queue).Inc()
		m.flushDuration.WithLabelValues(queue).Observe(ev.Duration.Seconds())
	}
}

func recordRecursionDrop(queue string) {
	stats.recursionDrops.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.recursionDrops.WithLabelValues(queue).Inc()
	}
}

func recordJobPanic(queue string) {
	stats.jobPanics.Add(1)
	if m := globalMetrics.Load(); m != nil {
		m.jobPanics.WithLabelValues(queue).Inc()
	}
}
