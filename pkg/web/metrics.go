package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-finch/pkg/hub"
)

const metricsNamespace = "finch_viewer"

// metrics holds the viewer's Prometheus collectors. Each Server owns its
// registry so several servers can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	updates  prometheus.Counter
	segments prometheus.Gauge
	drawn    prometheus.Gauge
	pngs     *prometheus.CounterVec
}

func newMetrics(h *hub.Hub) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "updates_total",
			Help:      "Drawings shown to the viewer",
		}),
		segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "segments",
			Help:      "Segments in the current drawing",
		}),
		drawn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "drawn_segments",
			Help:      "Pen-down segments in the current drawing",
		}),
		pngs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "png_renders_total",
			Help:      "PNG renders by outcome",
		}, []string{"status"}),
	}
	clients := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "clients",
		Help:      "Connected websocket viewers",
	}, func() float64 { return float64(h.ClientCount()) })

	m.registry.MustRegister(
		m.updates, m.segments, m.drawn, m.pngs, clients,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
