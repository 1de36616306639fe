package jarvis

import (
	"context"
	"encoding/json"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/tools/browser"
)

// BrowserNavigateTool is the dangerous `browser_navigate` tool spec §6
// names, grounded on teacher's internal/tools/browser (pool.go instance
// pooling, browser.go action dispatch), renamed from teacher's generic
// "browser" since the risk table fixes this exact tool name.
type BrowserNavigateTool struct {
	inner *browser.BrowserTool
}

// NewBrowserNavigateTool wraps a pool-backed browser.BrowserTool.
func NewBrowserNavigateTool(pool *browser.Pool) *BrowserNavigateTool {
	return &BrowserNavigateTool{inner: browser.NewBrowserTool(pool)}
}

func (t *BrowserNavigateTool) Name() string           { return "browser_navigate" }
func (t *BrowserNavigateTool) Description() string    { return t.inner.Description() }
func (t *BrowserNavigateTool) Schema() json.RawMessage { return t.inner.Schema() }
func (t *BrowserNavigateTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	return t.inner.Execute(ctx, params)
}
