// Package metrics instruments collectors, samplers and the HTTP server with
// Prometheus counters and histograms.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

const namespace = "sysstat"

// Failure reasons recorded by CollectFailed.
const (
	ReasonError     = "error"
	ReasonPanic     = "panic"
	ReasonSerialize = "serialize"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	collectDuration *prometheus.HistogramVec
	collectFailures *prometheus.CounterVec
	samplerTicks    *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// Compile-time guard.
var _ plugin.TickObserver = (*Metrics)(nil)

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		collectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collect_duration_seconds",
			Help:      "Time spent in a collector's Collect call.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"collector"}),
		collectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collect_failures_total",
			Help:      "Collector documents dropped from a response.",
		}, []string{"collector", "reason"}),
		samplerTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sampler_ticks_total",
			Help:      "Background sampler ticks by outcome.",
		}, []string{"sampler", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by status code.",
		}, []string{"code"}),
	}
	reg.MustRegister(m.collectDuration, m.collectFailures, m.samplerTicks, m.httpRequests)
	return m
}

// ObserveCollect records how long a collector took.
func (m *Metrics) ObserveCollect(collector string, d time.Duration) {
	if m == nil {
		return
	}
	m.collectDuration.WithLabelValues(collector).Observe(d.Seconds())
}

// CollectFailed counts a document dropped from a response.
func (m *Metrics) CollectFailed(collector, reason string) {
	if m == nil {
		return
	}
	m.collectFailures.WithLabelValues(collector, reason).Inc()
}

// ObserveTick implements plugin.TickObserver.
func (m *Metrics) ObserveTick(sampler string, published bool, _ error) {
	if m == nil {
		return
	}
	result := "failed"
	if published {
		result = "published"
	}
	m.samplerTicks.WithLabelValues(sampler, result).Inc()
}

// ObserveRequest counts one HTTP response.
func (m *Metrics) ObserveRequest(code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}
