package observability

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newTestMetrics builds a Metrics against an isolated registry instead of
// NewMetrics's default-registry promauto vecs, so tests can run repeatedly
// without a duplicate-registration panic.
func newTestMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		LLMRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "test_llm_request_duration_seconds", Buckets: []float64{0.1, 1, 10}},
			[]string{"provider", "model"},
		),
		LLMRequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_llm_requests_total"},
			[]string{"provider", "model", "status"},
		),
		ToolExecutionCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_tool_executions_total"},
			[]string{"tool_name", "risk", "status"},
		),
		ToolExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "test_tool_execution_duration_seconds", Buckets: []float64{0.1, 1, 10}},
			[]string{"tool_name", "risk"},
		),
		CheckpointWriteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "test_checkpoint_write_duration_seconds", Buckets: []float64{0.01, 0.1, 1}},
			[]string{"backend"},
		),
		ErrorCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_errors_total"},
			[]string{"component", "error_type"},
		),
	}
	reg.MustRegister(m.LLMRequestDuration, m.LLMRequestCounter, m.ToolExecutionCounter,
		m.ToolExecutionDuration, m.CheckpointWriteDuration, m.ErrorCounter)
	return m
}

func TestRecordLLMRequest(t *testing.T) {
	m := newTestMetrics(prometheus.NewRegistry())

	m.RecordLLMRequest("anthropic", "claude-3-opus", "success", 1.5)
	m.RecordLLMRequest("anthropic", "claude-3-opus", "error", 0.2)

	if count := testutil.CollectAndCount(m.LLMRequestCounter); count != 2 {
		t.Errorf("label combinations = %d, want 2", count)
	}
	expected := `
		# HELP test_llm_requests_total
		# TYPE test_llm_requests_total counter
		test_llm_requests_total{model="claude-3-opus",provider="anthropic",status="error"} 1
		test_llm_requests_total{model="claude-3-opus",provider="anthropic",status="success"} 1
	`
	if err := testutil.CollectAndCompare(m.LLMRequestCounter, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected counter value: %v", err)
	}
}

func TestRecordToolExecution(t *testing.T) {
	m := newTestMetrics(prometheus.NewRegistry())

	m.RecordToolExecution("file_operation", "dangerous", "success", 0.05)
	m.RecordToolExecution("memory_operation", "safe", "success", 0.01)
	m.RecordToolExecution("file_operation", "dangerous", "error", 0.02)

	expected := `
		# HELP test_tool_executions_total
		# TYPE test_tool_executions_total counter
		test_tool_executions_total{risk="dangerous",status="error",tool_name="file_operation"} 1
		test_tool_executions_total{risk="dangerous",status="success",tool_name="file_operation"} 1
		test_tool_executions_total{risk="safe",status="success",tool_name="memory_operation"} 1
	`
	if err := testutil.CollectAndCompare(m.ToolExecutionCounter, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected counter value: %v", err)
	}
}

func TestRecordCheckpointWrite(t *testing.T) {
	m := newTestMetrics(prometheus.NewRegistry())

	m.RecordCheckpointWrite("sqlite", 0.003)
	m.RecordCheckpointWrite("sqlite", 0.004)

	if count := testutil.CollectAndCount(m.CheckpointWriteDuration); count != 1 {
		t.Errorf("label combinations = %d, want 1", count)
	}
}

func TestRecordError(t *testing.T) {
	m := newTestMetrics(prometheus.NewRegistry())

	m.RecordError("llm", "timeout")
	m.RecordError("llm", "timeout")
	m.RecordError("tool", "execution_failed")

	expected := `
		# HELP test_errors_total
		# TYPE test_errors_total counter
		test_errors_total{component="llm",error_type="timeout"} 2
		test_errors_total{component="tool",error_type="execution_failed"} 1
	`
	if err := testutil.CollectAndCompare(m.ErrorCounter, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected counter value: %v", err)
	}
}
