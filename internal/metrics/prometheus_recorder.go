package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	completed  *prom.CounterVec
	focusTime  prom.Counter
	skipped    *prom.CounterVec
	manualLogs *prom.CounterVec
	remaining  prom.Gauge
}

// NewPrometheusRecorder constructs and registers the session metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		completed: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pomotaro",
			Name:      "sessions_completed_total",
			Help:      "Sessions that ran to zero, by session type",
		}, []string{"session_type"}),
		focusTime: prom.NewCounter(prom.CounterOpts{
			Namespace: "pomotaro",
			Name:      "focus_seconds_total",
			Help:      "Accumulated focus time recorded in history",
		}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pomotaro",
			Name:      "sessions_skipped_total",
			Help:      "Sessions skipped before completion, by session type",
		}, []string{"session_type"}),
		manualLogs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pomotaro",
			Name:      "manual_logs_total",
			Help:      "Focus records added outside the countdown, by source",
		}, []string{"source"}),
		remaining: prom.NewGauge(prom.GaugeOpts{
			Namespace: "pomotaro",
			Name:      "timer_remaining_seconds",
			Help:      "Seconds left in the current session",
		}),
	}
	reg.MustRegister(pr.completed, pr.focusTime, pr.skipped, pr.manualLogs, pr.remaining)
	return pr
}

func (p *PrometheusRecorder) IncSessionCompleted(sessionType string) {
	p.completed.WithLabelValues(sessionType).Inc()
}

func (p *PrometheusRecorder) AddFocusTime(d time.Duration) {
	if d > 0 {
		p.focusTime.Add(d.Seconds())
	}
}

func (p *PrometheusRecorder) IncSkipped(sessionType string) {
	p.skipped.WithLabelValues(sessionType).Inc()
}

func (p *PrometheusRecorder) IncManualLog(source string) {
	p.manualLogs.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) SetRemaining(d time.Duration) {
	p.remaining.Set(d.Seconds())
}

// HTTPHandler serves the metrics registered on reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
