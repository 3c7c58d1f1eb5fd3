package guidebook

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "guidebook"

// Metrics - метрики редактора в собственном реестре сервера.
type Metrics struct {
	Registry *prometheus.Registry

	clicks   *prometheus.CounterVec
	sessions prometheus.Gauge
	preview  *prometheus.HistogramVec
	applies  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		clicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "clicks_total",
			Help:      "Editor clicks by resolution outcome and strategy",
		}, []string{"outcome", "strategy"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions",
			Help:      "Open editor sessions",
		}),
		preview: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "preview_format_seconds",
			Help:      "Preview formatting duration",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"format", "status"}),
		applies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "applies_total",
			Help:      "Attribute applications by node kind and result",
		}, []string{"kind", "result"}),
	}

	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))

	m.Registry.MustRegister(m.clicks, m.sessions, m.preview, m.applies, bootTimeGauge)
	return m
}

// Исходы клика
const (
	clickHandled   = "handled"
	clickPrevented = "prevented"
	clickIgnored   = "ignored"
)

func (m *Metrics) observeClick(outcome, strategy string) {
	m.clicks.WithLabelValues(outcome, strategy).Inc()
}

func (m *Metrics) observePreview(format string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.preview.WithLabelValues(format, status).Observe(d.Seconds())
}

func (m *Metrics) observeApply(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.applies.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) setSessions(n int) {
	m.sessions.Set(float64(n))
}
