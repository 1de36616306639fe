package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides a centralized interface for collecting application
// metrics for the three places this single-thread orchestrator spends time:
// LLM calls, tool execution, and checkpoint writes. Built on
// github.com/prometheus/client_golang, the same dependency the teacher's
// metrics package used for a much larger multi-channel-gateway surface
// (message/webhook/session counters this repo has no analog for, trimmed
// below rather than carried unwired).
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	start := time.Now()
//	// ... invoke LLM ...
//	metrics.RecordLLMRequest("anthropic", "claude-3-opus", "success", time.Since(start).Seconds())
type Metrics struct {
	// LLMRequestDuration measures LLM API call latency in seconds.
	// Labels: provider, model
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestCounter counts LLM requests by provider, model, and status.
	// Labels: provider, model, status (success|error)
	LLMRequestCounter *prometheus.CounterVec

	// ToolExecutionCounter counts tool invocations by name, risk class, and
	// outcome (spec §3/§4.2's safe/dangerous risk model).
	// Labels: tool_name, risk (safe|dangerous), status (success|error)
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool execution time in seconds.
	// Labels: tool_name, risk
	ToolExecutionDuration *prometheus.HistogramVec

	// CheckpointWriteDuration measures a Checkpointer.Put/UpdatePartial call
	// in seconds (spec §4.6 durability path).
	// Labels: backend (sqlite|memory)
	CheckpointWriteDuration *prometheus.HistogramVec

	// ErrorCounter tracks errors by component and error type.
	// Labels: component (llm|tool|checkpoint), error_type
	ErrorCounter *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
// This should be called once at application startup.
func NewMetrics() *Metrics {
	return &Metrics{
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvis_llm_request_duration_seconds",
				Help:    "Duration of LLM API requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "model"},
		),

		LLMRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_llm_requests_total",
				Help: "Total number of LLM requests by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),

		ToolExecutionCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_tool_executions_total",
				Help: "Total number of tool executions by tool name, risk class, and status",
			},
			[]string{"tool_name", "risk", "status"},
		),

		ToolExecutionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvis_tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 180, 600},
			},
			[]string{"tool_name", "risk"},
		),

		CheckpointWriteDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvis_checkpoint_write_duration_seconds",
				Help:    "Duration of checkpoint writes (Put/UpdatePartial) in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"backend"},
		),

		ErrorCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_errors_total",
				Help: "Total number of errors by component and error type",
			},
			[]string{"component", "error_type"},
		),
	}
}

// RecordLLMRequest records metrics for an LLM API request.
func (m *Metrics) RecordLLMRequest(provider, model, status string, durationSeconds float64) {
	m.LLMRequestCounter.WithLabelValues(provider, model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider, model).Observe(durationSeconds)
}

// RecordToolExecution records metrics for a tool execution.
func (m *Metrics) RecordToolExecution(toolName, risk, status string, durationSeconds float64) {
	m.ToolExecutionCounter.WithLabelValues(toolName, risk, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName, risk).Observe(durationSeconds)
}

// RecordCheckpointWrite records a checkpoint write's latency.
func (m *Metrics) RecordCheckpointWrite(backend string, durationSeconds float64) {
	m.CheckpointWriteDuration.WithLabelValues(backend).Observe(durationSeconds)
}

// RecordError increments the error counter for a given component and error type.
func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorCounter.WithLabelValues(component, errorType).Inc()
}
