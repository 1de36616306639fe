package jarvis

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFileOperationTool_WriteReadListDelete(t *testing.T) {
	root := t.TempDir()
	tool := NewFileOperationTool(root)
	ctx := context.Background()

	writeParams, _ := json.Marshal(map[string]any{"action": "write", "path": "note.txt", "content": "hello"})
	result, err := tool.Execute(ctx, writeParams)
	if err != nil || result.IsError {
		t.Fatalf("write: err=%v result=%+v", err, result)
	}

	readParams, _ := json.Marshal(map[string]any{"action": "read", "path": "note.txt"})
	result, err = tool.Execute(ctx, readParams)
	if err != nil || result.IsError {
		t.Fatalf("read: err=%v result=%+v", err, result)
	}

	listParams, _ := json.Marshal(map[string]any{"action": "list", "path": "."})
	result, err = tool.Execute(ctx, listParams)
	if err != nil || result.IsError {
		t.Fatalf("list: err=%v result=%+v", err, result)
	}

	deleteParams, _ := json.Marshal(map[string]any{"action": "delete", "path": "note.txt"})
	result, err = tool.Execute(ctx, deleteParams)
	if err != nil || result.IsError {
		t.Fatalf("delete: err=%v result=%+v", err, result)
	}
	if _, statErr := os.Stat(filepath.Join(root, "note.txt")); !os.IsNotExist(statErr) {
		t.Error("expected note.txt to be removed")
	}
}

func TestFileOperationTool_UnknownAction(t *testing.T) {
	tool := NewFileOperationTool(t.TempDir())
	params, _ := json.Marshal(map[string]any{"action": "teleport"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError true for unknown action")
	}
}

func TestFileOperationTool_RefusesToDeleteWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	tool := NewFileOperationTool(root)
	params, _ := json.Marshal(map[string]any{"action": "delete", "path": "."})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected deleting the workspace root to be rejected")
	}
}
