package jarvis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/pkg/models"
)

// SwitchRoleTool is the safe `switch_role` tool spec §6 names. Its result
// content begins with agent.SwitchRoleSentinelPrefix so state_updater picks
// it up (spec §4.4/§6); Execute itself makes no state change - it only
// validates the requested role and emits the sentinel the graph's
// state_updater node reads back out.
type SwitchRoleTool struct{}

// NewSwitchRoleTool builds the tool. It carries no dependencies.
func NewSwitchRoleTool() *SwitchRoleTool { return &SwitchRoleTool{} }

func (SwitchRoleTool) Name() string { return "switch_role" }

func (SwitchRoleTool) Description() string {
	return "Switch the assistant's active role (default, smart, coder, fast, vision)."
}

func (SwitchRoleTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"role": map[string]interface{}{
				"type": "string",
				"enum": []string{"default", "smart", "coder", "fast", "vision"},
			},
		},
		"required": []string{"role"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (SwitchRoleTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if !models.IsValidAgentRole(input.Role) {
		return errResult(fmt.Sprintf("unknown role %q", input.Role)), nil
	}
	return &agent.ToolResult{Content: fmt.Sprintf("%s%s\nswitched active role to %s", agent.SwitchRoleSentinelPrefix, input.Role, input.Role)}, nil
}
