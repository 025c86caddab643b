package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ActiveSessions prometheus.Gauge
	Moves          *prometheus.CounterVec
	Captured       *prometheus.CounterVec
	GamesFinished  *prometheus.CounterVec
	ParseErrors    prometheus.Counter
	TurnLatency    prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected game sessions",
		}),
		Moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Stones placed or passes made, by colour",
		}, []string{"color"}),
		Captured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captured_stones_total",
			Help:      "Stones removed by capture, by colour of the removed stone",
		}, []string{"color"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games by reason",
		}, []string{"reason"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Client messages that were not a move",
		}),
		TurnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_seconds",
			Help:      "Time to resolve one human+opponent turn",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
}

// Monitor owns a private registry so several servers (and tests) can live
// in one process.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time

	mutex        sync.Mutex
	messageCount int64
}

func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		metrics:   NewMetrics(namespace),
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}
	m.registry.MustRegister(
		m.metrics.ActiveSessions,
		m.metrics.Moves,
		m.metrics.Captured,
		m.metrics.GamesFinished,
		m.metrics.ParseErrors,
		m.metrics.TurnLatency,
	)
	return m
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var publishOnce sync.Once

// PublishExpvar exposes uptime and message count under /debug/vars. Only
// the first monitor of a process is published.
func (m *Monitor) PublishExpvar() {
	publishOnce.Do(func() {
		expvar.Publish("uptime", expvar.Func(func() interface{} {
			return time.Since(m.startTime).Seconds()
		}))
		expvar.Publish("messages", expvar.Func(func() interface{} {
			return m.MessageCount()
		}))
	})
}

func (m *Monitor) IncSessions() {
	m.metrics.ActiveSessions.Inc()
}

func (m *Monitor) DecSessions() {
	m.metrics.ActiveSessions.Dec()
}

func (m *Monitor) IncMessages() {
	m.mutex.Lock()
	m.messageCount++
	m.mutex.Unlock()
}

func (m *Monitor) MessageCount() int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.messageCount
}

func (m *Monitor) IncMoves(color string) {
	m.metrics.Moves.WithLabelValues(color).Inc()
}

func (m *Monitor) AddCaptured(color string, n int) {
	if n > 0 {
		m.metrics.Captured.WithLabelValues(color).Add(float64(n))
	}
}

func (m *Monitor) IncGamesFinished(reason string) {
	m.metrics.GamesFinished.WithLabelValues(reason).Inc()
}

func (m *Monitor) IncParseErrors() {
	m.metrics.ParseErrors.Inc()
}

func (m *Monitor) ObserveTurnLatency(duration time.Duration) {
	m.metrics.TurnLatency.Observe(duration.Seconds())
}
