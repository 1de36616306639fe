package jarvis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jarvisai/jarvis/internal/memory/profile"
)

func newTestMemoryTool(t *testing.T) *MemoryOperationTool {
	t.Helper()
	store, err := profile.New(":memory:")
	if err != nil {
		t.Fatalf("open profile store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewMemoryOperationTool(store)
}

// Spec.md's worked "safe tool auto-run" scenario (spec.md:251) calls
// memory_operation(action="add_note", value="用户喜欢咖啡") and expects it to
// succeed without error.
func TestMemoryOperationTool_AddNote(t *testing.T) {
	tool := newTestMemoryTool(t)
	ctx := context.Background()

	params, _ := json.Marshal(map[string]string{"action": "add_note", "value": "用户喜欢咖啡"})
	result, err := tool.Execute(ctx, params)
	if err != nil || result.IsError {
		t.Fatalf("add_note: err=%v result=%+v", err, result)
	}
	if !strings.Contains(result.Content, "用户喜欢咖啡") {
		t.Errorf("Content = %q, want it to echo the note", result.Content)
	}

	get, _ := json.Marshal(map[string]string{"action": "get_profile"})
	result, err = tool.Execute(ctx, get)
	if err != nil || result.IsError {
		t.Fatalf("get_profile: err=%v result=%+v", err, result)
	}
	if !strings.Contains(result.Content, "用户喜欢咖啡") {
		t.Errorf("get_profile Content = %q, want the added note", result.Content)
	}
}

func TestMemoryOperationTool_AddNote_DedupesIdenticalContent(t *testing.T) {
	tool := newTestMemoryTool(t)
	ctx := context.Background()

	params, _ := json.Marshal(map[string]string{"action": "add_note", "value": "remember the meeting"})
	if result, err := tool.Execute(ctx, params); err != nil || result.IsError {
		t.Fatalf("first add_note: err=%v result=%+v", err, result)
	}

	result, err := tool.Execute(ctx, params)
	if err != nil || result.IsError {
		t.Fatalf("second add_note: err=%v result=%+v", err, result)
	}
	if !strings.Contains(result.Content, `"added":false`) {
		t.Errorf("Content = %q, want added=false on the duplicate insert", result.Content)
	}
}

func TestMemoryOperationTool_AddNote_RejectsEmptyContent(t *testing.T) {
	tool := newTestMemoryTool(t)
	params, _ := json.Marshal(map[string]string{"action": "add_note", "value": "  "})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected blank note content to be rejected")
	}
}

func TestMemoryOperationTool_UpdateProfile_NameIsRootField(t *testing.T) {
	tool := newTestMemoryTool(t)
	ctx := context.Background()

	params, _ := json.Marshal(map[string]string{"action": "update_profile", "key": "name", "value": "Tony"})
	result, err := tool.Execute(ctx, params)
	if err != nil || result.IsError {
		t.Fatalf("update_profile: err=%v result=%+v", err, result)
	}
	if !strings.Contains(result.Content, "root field") {
		t.Errorf("Content = %q, want location=root field for key=name", result.Content)
	}

	get, _ := json.Marshal(map[string]string{"action": "get_profile"})
	result, err = tool.Execute(ctx, get)
	if err != nil || result.IsError {
		t.Fatalf("get_profile: err=%v result=%+v", err, result)
	}
	if !strings.Contains(result.Content, `"name":"Tony"`) {
		t.Errorf("Content = %q, want name=Tony", result.Content)
	}
}

func TestMemoryOperationTool_UpdateProfile_OtherKeysArePreferences(t *testing.T) {
	tool := newTestMemoryTool(t)
	ctx := context.Background()

	params, _ := json.Marshal(map[string]string{"action": "update_profile", "key": "favorite_color", "value": "blue"})
	result, err := tool.Execute(ctx, params)
	if err != nil || result.IsError {
		t.Fatalf("update_profile: err=%v result=%+v", err, result)
	}
	if !strings.Contains(result.Content, "preferences") {
		t.Errorf("Content = %q, want location=preferences for a non-name key", result.Content)
	}

	get, _ := json.Marshal(map[string]string{"action": "get_profile"})
	result, err = tool.Execute(ctx, get)
	if err != nil || result.IsError {
		t.Fatalf("get_profile: err=%v result=%+v", err, result)
	}
	if !strings.Contains(result.Content, `"favorite_color":"blue"`) {
		t.Errorf("Content = %q, want favorite_color in preferences", result.Content)
	}
}

func TestMemoryOperationTool_UpdateProfile_RequiresKeyAndValue(t *testing.T) {
	tool := newTestMemoryTool(t)
	ctx := context.Background()

	noKey, _ := json.Marshal(map[string]string{"action": "update_profile", "value": "blue"})
	if result, err := tool.Execute(ctx, noKey); err != nil || !result.IsError {
		t.Fatalf("expected missing key to be rejected: err=%v result=%+v", err, result)
	}

	noValue, _ := json.Marshal(map[string]string{"action": "update_profile", "key": "favorite_color"})
	if result, err := tool.Execute(ctx, noValue); err != nil || !result.IsError {
		t.Fatalf("expected missing value to be rejected: err=%v result=%+v", err, result)
	}
}

func TestMemoryOperationTool_UnknownAction(t *testing.T) {
	tool := newTestMemoryTool(t)
	params, _ := json.Marshal(map[string]string{"action": "delete_everything"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected unknown action to be rejected")
	}
}
