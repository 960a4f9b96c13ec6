package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the ingestion pipeline.
type Metrics struct {
	FetchCycles     *prometheus.CounterVec // label: status={success,warning,error}
	RecordsUpserted prometheus.Counter
}

// NewMetrics creates and registers the pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting creates metrics backed by a fresh registry so tests
// never hit "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics(prometheus.NewRegistry())
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imgw",
			Name:      "fetch_cycles_total",
			Help:      "Fetch cycles against the IMGW endpoint by outcome.",
		}, []string{"status"}),
		RecordsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imgw",
			Name:      "records_upserted_total",
			Help:      "Observation rows inserted or replaced in the store.",
		}),
	}

	reg.MustRegister(
		m.FetchCycles,
		m.RecordsUpserted,
	)

	return m
}
