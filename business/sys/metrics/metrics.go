// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ethpool"

// Metrics represents the set of metrics we gather. Each value owns its
// registry so more than one node can run in a process.
type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	errors       prometheus.Counter
	panics       prometheus.Counter
	instructions *prometheus.CounterVec
}

// New constructs the metrics and registers them with a fresh registry.
func New() *Metrics {
	m := Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Number of web requests handled (by method and status).",
			},
			[]string{"method", "status"},
		),
		errors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Number of web requests that ended in an error.",
			},
		),
		panics: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "panics_total",
				Help:      "Number of panics recovered by the web middleware.",
			},
		),
		instructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instructions_total",
				Help:      "Number of pool instructions (by kind and result).",
			},
			[]string{"kind", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.errors,
		m.panics,
		m.instructions,
	)

	return &m
}

// TrackPool registers gauges that read the pool totals on every scrape.
func (m *Metrics) TrackPool(stats func() pool.Stats) {
	gauge := func(name string, help string, fn func(pool.Stats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      name,
				Help:      help,
			},
			func() float64 { return fn(stats()) },
		)
	}

	m.registry.MustRegister(
		gauge("accounts", "Number of accounts holding principal.", func(s pool.Stats) float64 {
			return float64(s.Accounts)
		}),
		gauge("injections", "Number of reward injections.", func(s pool.Stats) float64 {
			return float64(s.Injections)
		}),
		gauge("principal_ether", "Total principal held by the pool.", func(s pool.Stats) float64 {
			return ether.Float(s.TotalPrincipal)
		}),
		gauge("rewards_ether", "Total rewards injected into the pool.", func(s pool.Stats) float64 {
			return ether.Float(s.TotalRewards)
		}),
		gauge("liabilities_ether", "Total balance owed to the accounts.", func(s pool.Stats) float64 {
			return ether.Float(s.Liabilities)
		}),
		gauge("dust_wei", "Funds held that no account can claim.", func(s pool.Stats) float64 {
			return float64(s.Dust.Uint64())
		}),
	)
}

// Request records a handled web request.
func (m *Metrics) Request(method string, status string) {
	m.requests.WithLabelValues(method, status).Inc()
}

// Error records a web request that failed.
func (m *Metrics) Error() {
	m.errors.Inc()
}

// Panic records a recovered panic.
func (m *Metrics) Panic() {
	m.panics.Inc()
}

// Instruction records the outcome of a pool instruction.
func (m *Metrics) Instruction(kind string, err error) {
	result := "applied"
	if err != nil {
		result = "rejected"
	}
	m.instructions.WithLabelValues(kind, result).Inc()
}

// Handler returns the http handler that serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
