// Package observability provides structured logging and Prometheus metrics
// for the Jarvis orchestrator.
//
// # Overview
//
//  1. Metrics - LLM call latency, tool execution by risk class, and
//     checkpoint write latency, via github.com/prometheus/client_golang
//  2. Logging - Structured logs with sensitive data redaction, built on
//     log/slog
//
// Distributed tracing and the multi-channel event-timeline/diagnostic
// subsystems the teacher carried (go.opentelemetry.io, webhook/queue-lane
// event types) have no analog in this single-thread, single-user spec and
// were dropped rather than kept unwired - see DESIGN.md.
//
// # Metrics
//
// Metrics track:
//   - LLM API request latency by provider/model (RecordLLMRequest)
//   - Tool execution count and latency by tool name and risk class
//     (RecordToolExecution)
//   - Checkpoint write latency by backend (RecordCheckpointWrite)
//   - Error rates by component and type (RecordError)
//
// Example usage:
//
//	metrics := observability.NewMetrics()
//
//	start := time.Now()
//	// ... invoke LLM ...
//	metrics.RecordLLMRequest("anthropic", "claude-3-opus", "success", time.Since(start).Seconds())
//
//	start = time.Now()
//	// ... execute tool ...
//	metrics.RecordToolExecution("file_operation", "dangerous", "success", time.Since(start).Seconds())
//
// # Logging
//
// Logging is built on Go's slog package with enhancements for:
//   - Automatic request/session/user/channel ID correlation from context
//   - Sensitive data redaction (API keys, passwords, tokens)
//   - JSON output for production, text for development
//   - Configurable log levels
//
// Example usage:
//
//	logger := observability.NewLogger(observability.LogConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    AddSource: true,
//	})
//
//	ctx := observability.AddRequestID(ctx, requestID)
//	logger.Info(ctx, "processing turn", "thread_id", threadID)
//
//	logger.Error(ctx, "llm request failed",
//	    "error", err,
//	    "api_key", apiKey, // automatically redacted
//	)
//
// # Security Considerations
//
// The logging component automatically redacts:
//   - API keys (Anthropic, OpenAI, generic)
//   - Passwords and secrets
//   - JWT tokens
//   - Bearer tokens
//   - Custom patterns via configuration
//
// Sensitive fields in maps are also redacted:
//   - password, passwd, pwd
//   - secret, api_key, apikey
//   - token, auth, authorization
//   - private_key, privatekey
package observability
