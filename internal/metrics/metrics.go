// Package metrics holds the Prometheus collectors for the trip lifecycle.
// Collectors are registered on an injected registry rather than the global
// default so tests can build isolated instances. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes used as the "outcome" label.
const (
	OutcomeDispatched = "dispatched"
	OutcomePlanned    = "planned"
	OutcomeRejected   = "rejected"
	OutcomeError      = "error"
)

// Metrics holds the dispatch, lifecycle and HTTP collectors.
type Metrics struct {
	// DispatchTotal counts dispatch attempts by outcome and rejection reason
	// (empty unless outcome is "rejected").
	DispatchTotal *prometheus.CounterVec

	// TransitionsTotal counts committed trip status changes.
	TransitionsTotal *prometheus.CounterVec

	// TxDuration observes how long lifecycle transactions take, by operation
	// and result ("commit" or "rollback").
	TxDuration *prometheus.HistogramVec

	// HTTPDuration observes API request latency by method, chi route
	// pattern and status code.
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleet_dispatch_total",
				Help: "Dispatch attempts by outcome and rejection reason.",
			},
			[]string{"outcome", "reason"},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleet_trip_transitions_total",
				Help: "Committed trip status transitions.",
			},
			[]string{"from", "to"},
		),
		TxDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fleet_trip_tx_duration_seconds",
				Help:    "Duration of trip lifecycle transactions.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "result"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fleet_http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
	}
	reg.MustRegister(m.DispatchTotal, m.TransitionsTotal, m.TxDuration, m.HTTPDuration)
	return m
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors, for use by the binaries.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) Dispatch(outcome, reason string) {
	if m == nil {
		return
	}
	m.DispatchTotal.WithLabelValues(outcome, reason).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	if from == "" {
		from = "NONE"
	}
	m.TransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Tx(op string, committed bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "commit"
	if !committed {
		result = "rollback"
	}
	m.TxDuration.WithLabelValues(op, result).Observe(d.Seconds())
}

// Request records one served HTTP request. route should be the matched
// pattern ("/trips/{id}"), never the raw path, to keep cardinality bounded.
func (m *Metrics) Request(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}
