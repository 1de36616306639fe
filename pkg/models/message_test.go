package models

import (
	"encoding/json"
	"testing"
)

func TestMessage_IsTerminal(t *testing.T) {
	assistantNoTools := NewAssistantMessage("m1", "hi", nil)
	if !assistantNoTools.IsTerminal() {
		t.Error("assistant message with no tool calls should be terminal")
	}

	assistantWithTools := NewAssistantMessage("m2", "", []ToolCall{{ID: "tc1", Name: "switch_role"}})
	if assistantWithTools.IsTerminal() {
		t.Error("assistant message with tool calls should not be terminal")
	}

	user := NewUserMessage("m3", "hello")
	if user.IsTerminal() {
		t.Error("non-assistant message is never terminal")
	}
}

func TestMessage_HasToolCalls(t *testing.T) {
	withCalls := NewAssistantMessage("m1", "", []ToolCall{{ID: "tc1", Name: "file_operation"}})
	if !withCalls.HasToolCalls() {
		t.Error("expected HasToolCalls true")
	}

	tool := NewToolMessage("m2", "tc1", "file_operation", "ok", false)
	if tool.HasToolCalls() {
		t.Error("tool messages never carry tool calls")
	}
}

func TestMessage_Clone_IsIndependent(t *testing.T) {
	original := NewAssistantMessage("m1", "text", []ToolCall{{ID: "tc1", Name: "x", Input: json.RawMessage(`{"a":1}`)}})
	clone := original.Clone()

	clone.Content = "mutated"
	clone.ToolCalls[0].Name = "mutated"

	if original.Content == "mutated" {
		t.Error("mutating clone.Content affected original")
	}
	if original.ToolCalls[0].Name == "mutated" {
		t.Error("mutating clone.ToolCalls affected original")
	}
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	original := NewToolMessage("m1", "tc1", "shell_execute", "done", false)
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded.ID != original.ID || decoded.ToolCallID != original.ToolCallID || decoded.Content != original.Content {
		t.Errorf("decoded = %+v, want %+v", decoded, *original)
	}
}

func TestIsValidAgentRole(t *testing.T) {
	for _, valid := range []string{"default", "smart", "coder", "fast", "vision"} {
		if !IsValidAgentRole(valid) {
			t.Errorf("expected %q to be valid", valid)
		}
	}
	if IsValidAgentRole("nonexistent") {
		t.Error("expected unknown role to be invalid")
	}
}
