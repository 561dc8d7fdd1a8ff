package submitter

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	submittedTotal *prometheus.CounterVec
	outcomesTotal  *prometheus.CounterVec
	confirmLatency *prometheus.HistogramVec
	inFlight       prometheus.Gauge
}

func NewMetrics() *Metrics {
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otcescrow_tx_submitted_total",
		Help: "Transactions handed to the network, by target and result",
	}, []string{"network", "target", "result"})

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otcescrow_tx_outcomes_total",
		Help: "Receipts observed for broadcast transactions",
	}, []string{"network", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "otcescrow_tx_confirm_seconds",
		Help:    "Time from broadcast to receipt",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"network"})

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "otcescrow_tx_in_flight",
		Help: "Broadcast transactions still waiting for a receipt",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(submitted, outcomes, latency, inFlight)
	r.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Metrics{
		registry:       r,
		submittedTotal: submitted,
		outcomesTotal:  outcomes,
		confirmLatency: latency,
		inFlight:       inFlight,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) incSubmitted(network, target, result string) {
	m.submittedTotal.WithLabelValues(network, target, result).Inc()
}

func (m *Metrics) observeOutcome(network string, status Status, elapsed time.Duration) {
	m.outcomesTotal.WithLabelValues(network, status.String()).Inc()
	if status == StatusConfirmed {
		m.confirmLatency.WithLabelValues(network).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) setInFlight(n int64) {
	m.inFlight.Set(float64(n))
}
