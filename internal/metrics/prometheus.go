package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_agent_calls_total",
			Help: "Total number of agent invocations",
		},
		[]string{"agent", "status"}, // status: success|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minerva_agent_latency_seconds",
			Help:    "Agent execution latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_agent_tokens_total",
			Help: "Total tokens consumed by agent backend calls",
		},
		[]string{"agent", "type"}, // type: input|output
	)

	// Intent resolution metrics
	IntentResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_intent_resolutions_total",
			Help: "Total intent resolutions by outcome",
		},
		[]string{"source"}, // source: backend|fallback|cache
	)

	// Workflow metrics
	WorkflowExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_workflow_executions_total",
			Help: "Total workflow executions by terminal status",
		},
		[]string{"status"},
	)

	WorkflowSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_workflow_steps_total",
			Help: "Total workflow steps executed",
		},
		[]string{"agent", "status"},
	)

	// Query metrics
	QueriesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minerva_queries_handled_total",
			Help: "Total single queries handled by resolved intent",
		},
		[]string{"intent", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		AgentCalls,
		AgentLatency,
		AgentTokens,
		IntentResolutions,
		WorkflowExecutions,
		WorkflowSteps,
		QueriesHandled,
	)
}

// ObserveAgentCall records one agent invocation: outcome, latency, and
// token consumption.
func ObserveAgentCall(agent string, success bool, duration time.Duration, promptTokens, completionTokens int) {
	status := "success"
	if !success {
		status = "error"
	}
	AgentCalls.WithLabelValues(agent, status).Inc()
	AgentLatency.WithLabelValues(agent).Observe(duration.Seconds())
	if promptTokens > 0 {
		AgentTokens.WithLabelValues(agent, "input").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		AgentTokens.WithLabelValues(agent, "output").Add(float64(completionTokens))
	}
}

// Handler returns the HTTP handler exposing the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
