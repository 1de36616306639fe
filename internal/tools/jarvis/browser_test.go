package jarvis

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBrowserNavigateTool_NameIsSpecName(t *testing.T) {
	tool := NewBrowserNavigateTool(nil)
	if tool.Name() != "browser_navigate" {
		t.Errorf("Name() = %q, want browser_navigate", tool.Name())
	}
}

func TestBrowserNavigateTool_DelegatesSchemaAndDescription(t *testing.T) {
	tool := NewBrowserNavigateTool(nil)
	if tool.Description() == "" {
		t.Error("expected a non-empty description delegated from the inner browser tool")
	}

	var schema map[string]interface{}
	if err := json.Unmarshal(tool.Schema(), &schema); err != nil {
		t.Fatalf("schema should be valid JSON: %v", err)
	}
	if !strings.Contains(string(tool.Schema()), "navigate") {
		t.Error("expected the delegated schema to list the navigate action")
	}
}
