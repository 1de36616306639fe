package jarvis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jarvisai/jarvis/internal/agent"
)

// SystemControlBackend performs the actual OS action for a system_control
// call. Volume/brightness/app-launch surfaces are not portable across
// platforms (same reasoning as screen capture, spec.md §1), so this is a
// pluggable seam; NoopSystemControlBackend below reports the action without
// touching the host.
type SystemControlBackend interface {
	SetVolume(ctx context.Context, percent int) error
	SetBrightness(ctx context.Context, percent int) error
	LaunchApp(ctx context.Context, name string) error
}

// NoopSystemControlBackend accepts every call and does nothing, so
// system_control has a safe, testable default before a real OS backend is
// wired in.
type NoopSystemControlBackend struct{}

func (NoopSystemControlBackend) SetVolume(ctx context.Context, percent int) error     { return nil }
func (NoopSystemControlBackend) SetBrightness(ctx context.Context, percent int) error { return nil }
func (NoopSystemControlBackend) LaunchApp(ctx context.Context, name string) error     { return nil }

// SystemControlTool is the safe `system_control` tool spec §6 names.
// Grounded on original_source/agents/system_agent.py's action enum.
type SystemControlTool struct {
	backend SystemControlBackend
}

// NewSystemControlTool builds the tool against backend, defaulting to the
// no-op backend when nil.
func NewSystemControlTool(backend SystemControlBackend) *SystemControlTool {
	if backend == nil {
		backend = NoopSystemControlBackend{}
	}
	return &SystemControlTool{backend: backend}
}

func (t *SystemControlTool) Name() string { return "system_control" }

func (t *SystemControlTool) Description() string {
	return "Adjust system volume or brightness, or launch an application."
}

func (t *SystemControlTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type": "string",
				"enum": []string{"set_volume", "set_brightness", "launch_app"},
			},
			"percent": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 100},
			"app":     map[string]interface{}{"type": "string"},
		},
		"required": []string{"action"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *SystemControlTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Action  string `json:"action"`
		Percent int    `json:"percent"`
		App     string `json:"app"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	var err error
	switch input.Action {
	case "set_volume":
		err = t.backend.SetVolume(ctx, input.Percent)
	case "set_brightness":
		err = t.backend.SetBrightness(ctx, input.Percent)
	case "launch_app":
		if input.App == "" {
			return errResult("app is required"), nil
		}
		err = t.backend.LaunchApp(ctx, input.App)
	default:
		return errResult(fmt.Sprintf("unknown action %q", input.Action)), nil
	}
	if err != nil {
		return errResult(err.Error()), nil
	}

	payload, _ := json.Marshal(map[string]string{"action": input.Action, "status": "ok"})
	return &agent.ToolResult{Content: string(payload)}, nil
}
