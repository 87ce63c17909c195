// Package metrics exposes request and booking counters in the prometheus
// text format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zaqqye/hotel_backend/internal/services"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	roomEvents *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	wsClients  prometheus.Gauge
}

// New registers every collector on reg. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hotel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		roomEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "room_events_total",
			Help:      "Successful room mutations by event type.",
		}, []string{"type"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "booking_rejections_total",
			Help:      "Failed book and checkout attempts by reason.",
		}, []string{"op", "reason"}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "hotel",
			Name:      "websocket_clients",
			Help:      "Connected room event subscribers.",
		}),
	}
}

var _ services.Observer = (*Metrics)(nil)

func (m *Metrics) RoomEvent(t services.EventType) {
	m.roomEvents.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) BookingRejected(op, reason string) {
	m.rejected.WithLabelValues(op, reason).Inc()
}

// ClientsChanged tracks the websocket subscriber count.
func (m *Metrics) ClientsChanged(n int) {
	m.wsClients.Set(float64(n))
}

// Middleware records one sample per request. Unmatched routes share the
// "unmatched" label so arbitrary paths cannot blow up cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
