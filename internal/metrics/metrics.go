// Package metrics holds the Prometheus collectors of the bot. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finbot"

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeUsage       = "usage"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

type Metrics struct {
	registry *prometheus.Registry

	UpdatesTotal       prometheus.Counter
	CommandsTotal      *prometheus.CounterVec
	TransactionsTotal  *prometheus.CounterVec
	CompletionsTotal   *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
	ExportsTotal       *prometheus.CounterVec
}

// New registers the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		UpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Chat updates received",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Handled messages by command and outcome",
		}, []string{"command", "outcome"}),
		TransactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Recorded transactions by kind",
		}, []string{"kind"}),
		CompletionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Advice completion requests by outcome",
		}, []string{"outcome"}),
		CompletionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of advice completions",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Ledger events mirrored to the spreadsheet by event type and outcome",
		}, []string{"event", "outcome"}),
	}
	reg.MustRegister(
		m.UpdatesTotal,
		m.CommandsTotal,
		m.TransactionsTotal,
		m.CompletionsTotal,
		m.CompletionDuration,
		m.ExportsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Update() {
	if m == nil {
		return
	}
	m.UpdatesTotal.Inc()
}

func (m *Metrics) Command(command, outcome string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) Transaction(kind string) {
	if m == nil {
		return
	}
	m.TransactionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) Completion(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.CompletionsTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRateLimited {
		m.CompletionDuration.Observe(took.Seconds())
	}
}

func (m *Metrics) Export(event, outcome string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(event, outcome).Inc()
}

// WatchLimiter exposes the rejected request count and the tracked keys of a
// rate limiter, sampled on every scrape.
func (m *Metrics) WatchLimiter(name string, stats func() (rejected, clients int64)) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"limiter": name}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "ratelimit_rejected_total",
			Help:        "Requests rejected by a rate limiter",
			ConstLabels: labels,
		}, func() float64 {
			rejected, _ := stats()
			return float64(rejected)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "ratelimit_clients",
			Help:        "Keys with an open rate limit window",
			ConstLabels: labels,
		}, func() float64 {
			_, clients := stats()
			return float64(clients)
		}),
	)
}
