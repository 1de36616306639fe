package models

// ToolResult is the raw outcome of invoking a tool, as produced by the
// registry/executor before it is folded into a Tool message. It is distinct
// from the Message Tool variant: a ToolResult is the executor's return value,
// a Tool message is the persisted log entry built from it.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}
