// Package telemetry exposes the service's prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's counters. A nil *Metrics is safe to use;
// every method no-ops, which keeps tests free of registry plumbing.
type Metrics struct {
	analyzeRequests *prometheus.CounterVec
	planFallbacks   prometheus.Counter
	fetchFailures   prometheus.Counter
	reportFallbacks prometheus.Counter
	stageDuration   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analyzeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradeops_analyze_requests_total",
			Help: "Analyze requests by outcome.",
		}, []string{"outcome"}),
		planFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradeops_plan_fallbacks_total",
			Help: "Requests where the default scrape plan replaced the model plan.",
		}),
		fetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradeops_fetch_failures_total",
			Help: "Scrape targets that failed to fetch.",
		}),
		reportFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradeops_report_fallbacks_total",
			Help: "Reports rendered by the local fallback instead of the model.",
		}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradeops_stage_duration_seconds",
			Help:    "Wall time per pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}

func (m *Metrics) AnalyzeRequest(outcome string) {
	if m == nil {
		return
	}
	m.analyzeRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PlanFallback() {
	if m == nil {
		return
	}
	m.planFallbacks.Inc()
}

func (m *Metrics) FetchFailure() {
	if m == nil {
		return
	}
	m.fetchFailures.Inc()
}

func (m *Metrics) ReportFallback() {
	if m == nil {
		return
	}
	m.reportFallbacks.Inc()
}

func (m *Metrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}
