package jarvis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/memory/profile"
)

// MemoryOperationTool is the safe `memory_operation` tool spec §6 names: a
// local user-profile store (spec.md:200 - "Reads/writes local user-profile
// store"). Grounded on original_source/tools/memory_tool.py's exact action
// set (add_note, update_profile) and original_source/services/
// memory_service.py's name/preferences/notes profile shape, persisted via
// the shared internal/memory/profile.Store (modernc.org/sqlite) in place
// of that file's JSON-file-on-disk equivalent - durable across process
// restarts either way. Spec.md's own worked scenario 2
// (memory_operation(action="add_note", value="...")) exercises add_note
// directly.
type MemoryOperationTool struct {
	store *profile.Store
}

// NewMemoryOperationTool builds the tool against a shared profile store.
func NewMemoryOperationTool(store *profile.Store) *MemoryOperationTool {
	return &MemoryOperationTool{store: store}
}

func (t *MemoryOperationTool) Name() string { return "memory_operation" }

func (t *MemoryOperationTool) Description() string {
	return "Add a note to the user's memory (add_note), update a profile field or preference (update_profile), or read the stored profile (get_profile)."
}

func (t *MemoryOperationTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type": "string",
				"enum": []string{"add_note", "update_profile", "get_profile"},
			},
			"key":   map[string]interface{}{"type": "string"},
			"value": map[string]interface{}{"type": "string"},
		},
		"required": []string{"action"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *MemoryOperationTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Action string `json:"action"`
		Key    string `json:"key"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	switch input.Action {
	case "add_note":
		return t.addNote(ctx, input.Value)
	case "update_profile":
		return t.updateProfile(ctx, input.Key, input.Value)
	case "get_profile":
		return t.getProfile(ctx)
	default:
		return errResult(fmt.Sprintf("unknown action %q", input.Action)), nil
	}
}

func (t *MemoryOperationTool) addNote(ctx context.Context, value string) (*agent.ToolResult, error) {
	content := strings.TrimSpace(value)
	if content == "" {
		return errResult("note content is required"), nil
	}
	inserted, err := t.store.AddNote(ctx, content)
	if err != nil {
		return errResult(fmt.Sprintf("add note: %v", err)), nil
	}
	payload, _ := json.Marshal(map[string]any{
		"action":  "add_note",
		"content": content,
		"added":   inserted,
	})
	return &agent.ToolResult{Content: string(payload)}, nil
}

func (t *MemoryOperationTool) updateProfile(ctx context.Context, key, value string) (*agent.ToolResult, error) {
	if key == "" {
		return errResult("key is required for update_profile"), nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return errResult("value is required for update_profile"), nil
	}
	if err := t.store.UpdateField(ctx, key, value); err != nil {
		return errResult(fmt.Sprintf("update profile: %v", err)), nil
	}
	location := "preferences"
	if profile.IsRootField(key) {
		location = "root field"
	}
	payload, _ := json.Marshal(map[string]any{
		"action":   "update_profile",
		"key":      key,
		"value":    value,
		"location": location,
	})
	return &agent.ToolResult{Content: string(payload)}, nil
}

func (t *MemoryOperationTool) getProfile(ctx context.Context) (*agent.ToolResult, error) {
	snap, err := t.store.Snapshot(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("read profile: %v", err)), nil
	}
	payload, _ := json.Marshal(map[string]any{
		"name":        snap.Name,
		"preferences": snap.Preferences,
		"notes":       snap.Notes,
	})
	return &agent.ToolResult{Content: string(payload)}, nil
}
