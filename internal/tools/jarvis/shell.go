package jarvis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/tools/exec"
)

// NewShellExecuteTool builds the dangerous `shell_execute` tool spec §6
// names, grounded on teacher's internal/tools/exec (manager.go) process
// lifecycle pattern - the tool itself is exec.ExecTool, named per the spec's
// table instead of teacher's generic "exec".
func NewShellExecuteTool(manager *exec.Manager) *exec.ExecTool {
	return exec.NewExecTool("shell_execute", manager)
}

// PythonInterpreterTool is `shell_execute` with the subprocess pinned to a
// python3 interpreter binary (spec §6). Wraps the same Manager rather than
// exec.ExecTool, since the command string handed to the shell must be
// synthesised from a `code` argument instead of passed through verbatim.
type PythonInterpreterTool struct {
	manager *exec.Manager
	shim    *exec.ExecTool
}

// NewPythonInterpreterTool builds the tool scoped to manager's workspace.
func NewPythonInterpreterTool(manager *exec.Manager) *PythonInterpreterTool {
	return &PythonInterpreterTool{manager: manager, shim: exec.NewExecTool("python_interpreter", manager)}
}

func (t *PythonInterpreterTool) Name() string { return "python_interpreter" }

func (t *PythonInterpreterTool) Description() string {
	return "Run Python code in a python3 subprocess within the workspace."
}

func (t *PythonInterpreterTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Python source to execute with python3 -c.",
			},
			"cwd": map[string]interface{}{
				"type":        "string",
				"description": "Working directory (relative to workspace).",
			},
			"timeout_seconds": map[string]interface{}{
				"type":        "integer",
				"description": "Timeout in seconds (0 = no timeout).",
				"minimum":     0,
			},
		},
		"required": []string{"code"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *PythonInterpreterTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Code           string `json:"code"`
		Cwd            string `json:"cwd"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Code == "" {
		return errResult("code is required"), nil
	}

	shimParams, err := json.Marshal(map[string]any{
		"command":         "python3 -c " + shellQuote(input.Code),
		"cwd":             input.Cwd,
		"timeout_seconds": input.TimeoutSeconds,
	})
	if err != nil {
		return errResult(fmt.Sprintf("build command: %v", err)), nil
	}
	return t.shim.Execute(ctx, shimParams)
}

// shellQuote wraps s in single quotes, escaping any embedded single quote
// the POSIX-shell way ('"'"').
func shellQuote(s string) string {
	escaped := ""
	for _, r := range s {
		if r == '\'' {
			escaped += `'"'"'`
		} else {
			escaped += string(r)
		}
	}
	return "'" + escaped + "'"
}
