package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus registry. Decision counters are
// labelled by outcome only; client ids are unbounded and stay out of label
// space.
type Metrics struct {
	reg *prometheus.Registry

	decisionsTotal     *prometheus.CounterVec
	storageErrorsTotal prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		reg: reg,
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_decisions_total",
			Help: "Rate limit decisions by outcome",
		}, []string{"outcome"}),
		storageErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ratelimit_storage_errors_total",
			Help: "Total store failures during rate limit evaluation",
		}),
	}
	reg.MustRegister(m.decisionsTotal, m.storageErrorsTotal)
	return m
}

func (m *Metrics) Admitted() {
	m.decisionsTotal.WithLabelValues("admitted").Inc()
}

func (m *Metrics) Rejected() {
	m.decisionsTotal.WithLabelValues("rejected").Inc()
}

func (m *Metrics) StorageError() {
	m.storageErrorsTotal.Inc()
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
