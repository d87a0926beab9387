package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sigboard/sigboard/pkg/datastore"
)

const (
	namespace string = "sigboard"

	RefreshUnchanged string = "unchanged"
	RefreshChanged   string = "changed"
	RefreshFailed    string = "error"
)

// Metrics holds the runtime's Prometheus collectors on a dedicated registry
type Metrics struct {
	registry *prometheus.Registry

	datasetsLoaded     *prometheus.CounterVec // By file_type
	refreshes          *prometheus.CounterVec // By result
	evaluationDuration *prometheus.HistogramVec

	datasets      prometheus.Gauge
	signals       prometheus.Gauge
	subscriptions prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		datasetsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "datasets_loaded_total",
			Help:      "Total number of datasets loaded from files",
		}, []string{"file_type"}),

		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "dataset_refreshes_total",
			Help:      "Total number of dataset refreshes by result",
		}, []string{"result"}),

		evaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "evaluation_duration_seconds",
			Help:      "Signal evaluation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"signal_type"}),

		datasets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "datasets",
			Help:      "Number of datasets in the store",
		}),

		signals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "signals",
			Help:      "Number of signals across all datasets",
		}),

		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "subscriptions",
			Help:      "Number of active pattern subscriptions",
		}),
	}

	m.registry.MustRegister(
		m.datasetsLoaded,
		m.refreshes,
		m.evaluationDuration,
		m.datasets,
		m.signals,
		m.subscriptions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) DatasetLoaded(fileType string) {
	m.datasetsLoaded.WithLabelValues(fileType).Inc()
}

func (m *Metrics) DatasetRefreshed(result string) {
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveEvaluation(signalType string, started time.Time) {
	m.evaluationDuration.WithLabelValues(signalType).Observe(time.Since(started).Seconds())
}

func (m *Metrics) SetSubscriptions(n int) {
	m.subscriptions.Set(float64(n))
}

// ObserveStore updates the store size gauges
func (m *Metrics) ObserveStore(store *datastore.Store) {
	signals := 0
	for _, ds := range store.Datasets() {
		signals += ds.Root().Len()
	}

	m.datasets.Set(float64(store.Len()))
	m.signals.Set(float64(signals))
}
