package diagnostics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink records step counts and latency in Prometheus, the same
// shape as the donor's pkg/observability/prometheus.Metrics but scoped
// to the engine's own concerns instead of HTTP/EventBus/DB traffic.
type MetricsSink struct {
	steps   *prometheus.CounterVec
	faults  prometheus.Counter
	latency *prometheus.HistogramVec
}

// NewMetricsSink registers its collectors on reg and returns a
// Diagnostics sink that feeds them.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	s := &MetricsSink{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsm_steps_total",
			Help: "Number of engine steps, labeled by resulting status.",
		}, []string{"status"}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fsm_faults_total",
			Help: "Number of steps that ended in Fault.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fsm_step_duration_seconds",
			Help:    "Wall-clock duration of a single step() call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
	}
	reg.MustRegister(s.steps, s.faults, s.latency)
	return s
}

func (s *MetricsSink) Observe(rec Record) {
	if s == nil {
		return
	}
	s.steps.WithLabelValues(rec.Status).Inc()
	s.latency.WithLabelValues(rec.Status).Observe(rec.Duration.Seconds())
	if rec.Fault {
		s.faults.Inc()
	}
}
