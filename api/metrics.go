package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
)

// Metrics owns a private registry so several servers (and tests) can coexist
// in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	evaluations *prometheus.CounterVec
	estimated   *prometheus.CounterVec
}

var _ subsidy.Recorder = (*Metrics)(nil)

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepath",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests broken down by route and result.",
		}, []string{"route", "result"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carepath",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets: []float64{
				0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5,
			},
		}, []string{"route", "result"}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepath",
			Subsystem: "subsidy",
			Name:      "evaluations_total",
			Help:      "Plan evaluations broken down by determined tier.",
		}, []string{"tier"}),
		estimated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepath",
			Subsystem: "subsidy",
			Name:      "estimated_yen_total",
			Help:      "Sum of estimated annual subsidy amounts in yen, by tier.",
		}, []string{"tier"}),
	}
}

// RecordEvaluation implements subsidy.Recorder.
func (m *Metrics) RecordEvaluation(tier subsidy.Tier, amount generic.Yen) {
	label := string(tier)
	if tier == subsidy.TierNone {
		label = "none"
	}
	m.evaluations.WithLabelValues(label).Inc()
	m.estimated.WithLabelValues(label).Add(float64(amount))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument counts requests per chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		result := "2xx"
		switch status := ww.Status(); {
		case status >= 500:
			result = "5xx"
		case status >= 400:
			result = "4xx"
		}
		route := routePattern(r)
		m.requests.WithLabelValues(route, result).Inc()
		m.latency.WithLabelValues(route, result).Observe(time.Since(start).Seconds())
	})
}
