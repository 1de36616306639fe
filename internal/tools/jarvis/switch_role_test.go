package jarvis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jarvisai/jarvis/internal/agent"
)

func TestSwitchRoleTool_EmitsSentinel(t *testing.T) {
	tool := NewSwitchRoleTool()
	params, _ := json.Marshal(map[string]string{"role": "vision"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil || result.IsError {
		t.Fatalf("err=%v result=%+v", err, result)
	}
	if !strings.HasPrefix(result.Content, agent.SwitchRoleSentinelPrefix+"vision") {
		t.Errorf("Content = %q, want it to start with the vision sentinel", result.Content)
	}
}

func TestSwitchRoleTool_RejectsUnknownRole(t *testing.T) {
	tool := NewSwitchRoleTool()
	params, _ := json.Marshal(map[string]string{"role": "admin"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError true for an unknown role")
	}
}
