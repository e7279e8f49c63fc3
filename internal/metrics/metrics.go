package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the chart service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	GeometryComputations *prometheus.CounterVec // labels: result=ok|empty
	GeometryComputeDur   prometheus.Histogram
	SurfaceSessions      prometheus.Gauge
	SurfaceResizes       prometheus.Counter
	RendersTotal         *prometheus.CounterVec // labels: format
	DatasetReloads       *prometheus.CounterVec // labels: result=ok|error|unchanged
	RateLimited          prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		GeometryComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchchart_geometry_computations_total",
			Help: "Geometry bundles computed, by result",
		}, []string{"result"}),
		GeometryComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchchart_geometry_compute_seconds",
			Help:    "Time spent computing one geometry bundle",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		SurfaceSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchchart_surface_sessions",
			Help: "Open render surface websocket sessions",
		}),
		SurfaceResizes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchchart_surface_resizes_total",
			Help: "Viewport changes reported by render surfaces",
		}),
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchchart_renders_total",
			Help: "Charts rendered to images, by format",
		}, []string{"format"}),
		DatasetReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchchart_dataset_reloads_total",
			Help: "Dataset file reload attempts, by result",
		}, []string{"result"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchchart_api_rate_limited_total",
			Help: "API requests rejected by the rate limiter",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.GeometryComputations,
		m.GeometryComputeDur,
		m.SurfaceSessions,
		m.SurfaceResizes,
		m.RendersTotal,
		m.DatasetReloads,
		m.RateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveGeometry(empty bool, took time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if empty {
		result = "empty"
	}
	m.GeometryComputations.WithLabelValues(result).Inc()
	m.GeometryComputeDur.Observe(took.Seconds())
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.SurfaceSessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.SurfaceSessions.Dec()
	}
}

func (m *Metrics) Resized() {
	if m != nil {
		m.SurfaceResizes.Inc()
	}
}

func (m *Metrics) Rendered(format string) {
	if m != nil {
		m.RendersTotal.WithLabelValues(format).Inc()
	}
}

func (m *Metrics) Reloaded(result string) {
	if m != nil {
		m.DatasetReloads.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Limited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}
