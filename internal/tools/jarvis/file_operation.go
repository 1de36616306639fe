package jarvis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/tools/files"
)

// FileOperationTool is the dangerous `file_operation` tool spec §6 names:
// read/write/edit/list/delete scoped under a workspace root. Grounded on
// teacher's internal/tools/files, whose ReadTool/WriteTool/EditTool/
// ApplyPatchTool already each satisfy agent.Tool on their own; this wraps
// them behind a single action-dispatched name since the spec's risk table
// fixes one tool name per risk class rather than one per file verb.
type FileOperationTool struct {
	resolver files.Resolver
	read     *files.ReadTool
	write    *files.WriteTool
	edit     *files.EditTool
	patch    *files.ApplyPatchTool
}

// NewFileOperationTool builds the dispatcher scoped to workspace.
func NewFileOperationTool(workspace string) *FileOperationTool {
	cfg := files.Config{Workspace: workspace}
	return &FileOperationTool{
		resolver: files.Resolver{Root: workspace},
		read:     files.NewReadTool(cfg),
		write:    files.NewWriteTool(cfg),
		edit:     files.NewEditTool(cfg),
		patch:    files.NewApplyPatchTool(cfg),
	}
}

func (t *FileOperationTool) Name() string { return "file_operation" }

func (t *FileOperationTool) Description() string {
	return "Read, write, edit, patch, list, or delete a file scoped under the workspace root."
}

func (t *FileOperationTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"read", "write", "edit", "patch", "list", "delete"},
				"description": "Which file operation to perform.",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path relative to the workspace root (read/write/edit/delete), or directory to list.",
			},
			"content":     map[string]interface{}{"type": "string", "description": "Content for write."},
			"append":      map[string]interface{}{"type": "boolean", "description": "Append instead of overwrite (write)."},
			"edits":       map[string]interface{}{"type": "array", "description": "Find/replace edits (edit)."},
			"patch":       map[string]interface{}{"type": "string", "description": "Unified diff text (patch)."},
			"offset":      map[string]interface{}{"type": "integer", "description": "Byte offset (read)."},
			"max_bytes":   map[string]interface{}{"type": "integer", "description": "Max bytes to read (read)."},
		},
		"required": []string{"action"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *FileOperationTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var action struct {
		Action string `json:"action"`
		Path   string `json:"path"`
	}
	if err := json.Unmarshal(params, &action); err != nil {
		return errResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	switch action.Action {
	case "read":
		return t.read.Execute(ctx, params)
	case "write":
		return t.write.Execute(ctx, params)
	case "edit":
		return t.edit.Execute(ctx, params)
	case "patch":
		return t.patch.Execute(ctx, params)
	case "list":
		return t.list(action.Path)
	case "delete":
		return t.delete(action.Path)
	default:
		return errResult(fmt.Sprintf("unknown action %q", action.Action)), nil
	}
}

func (t *FileOperationTool) list(path string) (*agent.ToolResult, error) {
	if path == "" {
		path = "."
	}
	resolved, err := t.resolver.Resolve(path)
	if err != nil {
		return errResult(err.Error()), nil
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return errResult(fmt.Sprintf("list directory: %v", err)), nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	payload, _ := json.Marshal(map[string]any{"path": path, "entries": names})
	return &agent.ToolResult{Content: string(payload)}, nil
}

func (t *FileOperationTool) delete(path string) (*agent.ToolResult, error) {
	if path == "" {
		return errResult("path is required"), nil
	}
	resolved, err := t.resolver.Resolve(path)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if filepath.Clean(resolved) == filepath.Clean(t.resolver.Root) {
		return errResult("refusing to delete the workspace root"), nil
	}
	if err := os.Remove(resolved); err != nil {
		return errResult(fmt.Sprintf("delete: %v", err)), nil
	}
	payload, _ := json.Marshal(map[string]string{"path": path, "status": "deleted"})
	return &agent.ToolResult{Content: string(payload)}, nil
}

func errResult(message string) *agent.ToolResult {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return &agent.ToolResult{Content: message, IsError: true}
	}
	return &agent.ToolResult{Content: string(payload), IsError: true}
}
