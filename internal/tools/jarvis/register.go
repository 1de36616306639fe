package jarvis

import (
	"time"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/memory/backend/sqlitevec"
	"github.com/jarvisai/jarvis/internal/memory/profile"
	"github.com/jarvisai/jarvis/internal/tools/browser"
	"github.com/jarvisai/jarvis/internal/tools/exec"
)

// Per-tool timeout overrides (spec §5: "up to 600s") for tools whose normal
// runtime exceeds the registry's 60s default. Everything not listed here
// keeps that default.
const (
	shellExecuteTimeout      = 180 * time.Second
	pythonInterpreterTimeout = 180 * time.Second
	browserNavigateTimeout   = 120 * time.Second
	knowledgeIngestTimeout   = 120 * time.Second
)

// Dependencies collects everything RegisterAll needs to construct the ten
// tools spec §6 names. Fields left nil fall back to a safe/no-op
// implementation where one exists (vision capture, system control);
// BrowserPool nil disables browser_navigate entirely, since there is no
// meaningful no-op browser. ProfileStore is expected non-nil (callers
// should fall back to an in-memory profile.Store rather than leave this
// nil - memory_operation is always registered, unlike the optional
// knowledge/browser tools).
type Dependencies struct {
	Workspace      string
	ExecManager    *exec.Manager
	BrowserPool    *browser.Pool
	KnowledgeStore *sqlitevec.Backend
	ProfileStore   *profile.Store
	Factory        *agent.LLMFactory
	ScreenCapturer ScreenCapturer
	SystemBackend  SystemControlBackend
}

// RegisterAll builds and registers the fixed ten-tool table spec §6 names,
// risk-classified exactly as the table specifies: switch_role,
// memory_operation, knowledge_query, vision_analyze, system_control are
// safe; file_operation, shell_execute, python_interpreter, browser_navigate,
// knowledge_ingest are dangerous.
func RegisterAll(registry *agent.ToolRegistry, deps Dependencies) {
	registry.RegisterWithRisk(NewSwitchRoleTool(), agent.RiskSafe)
	registry.RegisterWithRisk(NewMemoryOperationTool(deps.ProfileStore), agent.RiskSafe)
	registry.RegisterWithRisk(NewSystemControlTool(deps.SystemBackend), agent.RiskSafe)
	registry.RegisterWithRisk(NewVisionAnalyzeTool(deps.ScreenCapturer, deps.Factory), agent.RiskSafe)

	registry.RegisterWithRisk(NewFileOperationTool(deps.Workspace), agent.RiskDangerous)

	if deps.ExecManager != nil {
		registry.RegisterWithRisk(NewShellExecuteTool(deps.ExecManager), agent.RiskDangerous)
		registry.SetTimeout("shell_execute", shellExecuteTimeout)
		registry.RegisterWithRisk(NewPythonInterpreterTool(deps.ExecManager), agent.RiskDangerous)
		registry.SetTimeout("python_interpreter", pythonInterpreterTimeout)
	}
	if deps.BrowserPool != nil {
		registry.RegisterWithRisk(NewBrowserNavigateTool(deps.BrowserPool), agent.RiskDangerous)
		registry.SetTimeout("browser_navigate", browserNavigateTimeout)
	}
	if deps.KnowledgeStore != nil {
		registry.RegisterWithRisk(NewKnowledgeQueryTool(deps.KnowledgeStore), agent.RiskSafe)
		registry.RegisterWithRisk(NewKnowledgeIngestTool(deps.KnowledgeStore), agent.RiskDangerous)
		registry.SetTimeout("knowledge_ingest", knowledgeIngestTimeout)
	}
}
