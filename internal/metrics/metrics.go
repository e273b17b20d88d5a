package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/conncheck/internal/domain"
	"github.com/hamed0406/conncheck/internal/repo"
)

var _ repo.Recorder = (*Recorder)(nil)

// Recorder exports every check as Prometheus series.
type Recorder struct {
	registry *prometheus.Registry
	checks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conncheck",
			Name:      "checks_total",
			Help:      "Completed connectivity checks by target type, severity and error category.",
		}, []string{"type", "severity", "category"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "conncheck",
			Name:      "check_duration_seconds",
			Help:      "Wall-clock time of connectivity checks.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"type"}),
	}
	r.registry.MustRegister(r.checks, r.duration)
	return r
}

func (r *Recorder) Record(rec domain.CheckRecord) {
	category := ""
	if rec.ErrorCategory != nil {
		category = string(*rec.ErrorCategory)
	}
	r.checks.WithLabelValues(string(rec.Kind), string(rec.Severity), category).Inc()
	r.duration.WithLabelValues(string(rec.Kind)).Observe(rec.ResponseTime)
}

// Handler serves the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
