// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a set of collectors registered on their own registry, so tests
// can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Moves         *prometheus.CounterVec
	GamesStarted  prometheus.Counter
	GamesWon      prometheus.Counter
	AutoplayMoves prometheus.Counter
	History       *prometheus.CounterVec
	Sessions      prometheus.Gauge
	HTTPDuration  *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Moves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "klondike_moves_total",
			Help: "Moves submitted, by move type and result",
		}, []string{"type", "result"}),
		GamesStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "klondike_games_started_total",
			Help: "Games dealt",
		}),
		GamesWon: f.NewCounter(prometheus.CounterOpts{
			Name: "klondike_games_won_total",
			Help: "Games won",
		}),
		AutoplayMoves: f.NewCounter(prometheus.CounterOpts{
			Name: "klondike_autoplay_moves_total",
			Help: "Cards sent to foundations by autoplay",
		}),
		History: f.NewCounterVec(prometheus.CounterOpts{
			Name: "klondike_undo_total",
			Help: "Successful undo and redo steps",
		}, []string{"direction"}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "klondike_sessions",
			Help: "Live sessions held in memory",
		}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "klondike_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status code",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}, []string{"route", "code"}),
	}
}

// Move records one submitted move.
func (m *Metrics) Move(moveType string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.Moves.WithLabelValues(moveType, result).Inc()
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
