package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type registryTestTool struct {
	name   string
	schema json.RawMessage
}

func (t *registryTestTool) Name() string        { return t.name }
func (t *registryTestTool) Description() string  { return "a test tool" }
func (t *registryTestTool) Schema() json.RawMessage { return t.schema }
func (t *registryTestTool) Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error) {
	return &ToolResult{Content: string(params)}, nil
}

func TestToolRegistry_RegisterAndGet(t *testing.T) {
	r := NewToolRegistry()
	r.RegisterWithRisk(&registryTestTool{name: "file_operation"}, RiskDangerous)

	d, ok := r.Get("file_operation")
	if !ok {
		t.Fatal("expected file_operation to be registered")
	}
	if d.Risk != RiskDangerous {
		t.Errorf("Risk = %v, want dangerous", d.Risk)
	}
}

func TestToolRegistry_UnknownTool(t *testing.T) {
	r := NewToolRegistry()
	result, err := r.Execute(context.Background(), "does_not_exist", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Execute should not return a Go error for an unknown tool, got %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError true for unknown tool")
	}
}

func TestToolRegistry_InvalidArguments(t *testing.T) {
	r := NewToolRegistry()
	r.RegisterWithRisk(&registryTestTool{
		name:   "memory_operation",
		schema: json.RawMessage(`{"type":"object","properties":{"action":{"type":"string"}},"required":["action"]}`),
	}, RiskSafe)

	result, err := r.Execute(context.Background(), "memory_operation", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("validation failure should not be a Go error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError true for missing required field")
	}
}

func TestToolRegistry_ValidArgumentsInvoke(t *testing.T) {
	r := NewToolRegistry()
	r.RegisterWithRisk(&registryTestTool{
		name:   "memory_operation",
		schema: json.RawMessage(`{"type":"object","properties":{"action":{"type":"string"}},"required":["action"]}`),
	}, RiskSafe)

	result, err := r.Execute(context.Background(), "memory_operation", json.RawMessage(`{"action":"add_note"}`))
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.IsError {
		t.Errorf("unexpected error result: %s", result.Content)
	}
}

func TestToolRegistry_DuplicateNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate tool name")
		}
	}()
	r := NewToolRegistry()
	r.Register(&registryTestTool{name: "dup"})
	r.Register(&registryTestTool{name: "dup"})
}

func TestToolRegistry_SchemaBundleStripsTitle(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&registryTestTool{
		name:   "switch_role",
		schema: json.RawMessage(`{"title":"SwitchRole","type":"object"}`),
	})

	bundle := r.SchemaBundle()
	if len(bundle) != 1 {
		t.Fatalf("len(bundle) = %d, want 1", len(bundle))
	}
	var decoded map[string]any
	if err := json.Unmarshal(bundle[0].Parameters, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if _, hasTitle := decoded["title"]; hasTitle {
		t.Error("title should have been stripped from schema bundle")
	}
}

func TestToolRegistry_ListIsSortedByName(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&registryTestTool{name: "zzz_tool"})
	r.Register(&registryTestTool{name: "aaa_tool"})

	list := r.List()
	if len(list) != 2 || list[0].Name != "aaa_tool" || list[1].Name != "zzz_tool" {
		t.Errorf("List() not sorted: %v", list)
	}
}

func TestToolRegistry_SetTimeout(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&registryTestTool{name: "shell_execute"})

	d, _ := r.Get("shell_execute")
	if d.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (registry default) before SetTimeout", d.Timeout)
	}

	r.SetTimeout("shell_execute", 180*time.Second)
	d, _ = r.Get("shell_execute")
	if d.Timeout != 180*time.Second {
		t.Errorf("Timeout = %v, want 180s", d.Timeout)
	}
}

func TestToolRegistry_SetTimeout_ClampsToMax(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&registryTestTool{name: "shell_execute"})

	r.SetTimeout("shell_execute", 900*time.Second)
	d, _ := r.Get("shell_execute")
	if d.Timeout != maxToolTimeout {
		t.Errorf("Timeout = %v, want clamped to %v", d.Timeout, maxToolTimeout)
	}
}

func TestToolRegistry_SetTimeout_UnregisteredToolIsNoop(t *testing.T) {
	r := NewToolRegistry()
	r.SetTimeout("does_not_exist", 180*time.Second)
	if _, ok := r.Get("does_not_exist"); ok {
		t.Fatal("SetTimeout should not register a new tool")
	}
}
