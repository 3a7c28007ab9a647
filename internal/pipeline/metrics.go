package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jknoll/agentic-orchestration/internal/agent"
	"github.com/jknoll/agentic-orchestration/internal/generation"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	jobsTotal       *prometheus.CounterVec
	jobDuration     prometheus.Histogram
	jobsInProgress  prometheus.Gauge
	toolCallsTotal  *prometheus.CounterVec
	providerResults *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adflow_jobs_total",
			Help: "Finished ad generation jobs by outcome.",
		}, []string{"outcome"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "adflow_job_duration_seconds",
			Help:    "Wall time of ad generation jobs.",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 900},
		}),
		jobsInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adflow_jobs_in_progress",
			Help: "Ad generation jobs currently running.",
		}),
		toolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adflow_tool_calls_total",
			Help: "Agent tool invocations by tool and result.",
		}, []string{"tool", "result"}),
		providerResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adflow_provider_results_total",
			Help: "Video provider outcomes by provider.",
		}, []string{"provider", "outcome"}),
	}
	reg.MustRegister(m.jobsTotal, m.jobDuration, m.jobsInProgress, m.toolCallsTotal, m.providerResults)
	return m
}

func (m *Metrics) jobStarted() {
	if m == nil {
		return
	}
	m.jobsInProgress.Inc()
}

func (m *Metrics) jobFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobsInProgress.Dec()
	m.jobsTotal.WithLabelValues(outcome).Inc()
	m.jobDuration.Observe(elapsed.Seconds())
}

// metricsObserver counts tool calls and provider outcomes.
type metricsObserver struct {
	agent.NopObserver
	m *Metrics
}

func (o metricsObserver) OnToolResult(name agent.ToolName, args map[string]any, res agent.ToolResult) {
	if o.m == nil {
		return
	}
	result := "ok"
	if res.IsError {
		result = "error"
	}
	o.m.toolCallsTotal.WithLabelValues(string(name), result).Inc()
	switch data := res.Data.(type) {
	case *generation.Outcome:
		for _, a := range data.Attempts {
			label := "success"
			if a.Err != nil {
				label = "failure"
			}
			o.m.providerResults.WithLabelValues(a.Provider, label).Inc()
		}
	case *generation.GenerationError:
		for _, f := range data.Failures {
			o.m.providerResults.WithLabelValues(f.Provider, "failure").Inc()
		}
	}
}
