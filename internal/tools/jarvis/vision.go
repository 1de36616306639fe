package jarvis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/media"
	"github.com/jarvisai/jarvis/pkg/models"
)

// ScreenCapturer captures the current screen as encoded image bytes plus a
// MIME type. Screen capture is named peripheral to the core (spec.md §1),
// so this is a thin seam: NoopScreenCapturer below is the only
// implementation shipped here, and a real OS-specific capturer can satisfy
// the same interface without touching the tool.
type ScreenCapturer interface {
	Capture(ctx context.Context) (data []byte, mimeType string, err error)
}

// NoopScreenCapturer always fails with a descriptive error, standing in for
// the OS-specific capture surface the spec marks out of scope.
type NoopScreenCapturer struct{}

func (NoopScreenCapturer) Capture(ctx context.Context) ([]byte, string, error) {
	return nil, "", fmt.Errorf("screen capture is not implemented on this platform")
}

// VisionAnalyzeTool is the safe `vision_analyze` tool spec §6 names:
// capture the screen, then ask the vision-role LLM about it. Grounded on
// original_source/agents/vision_agent.py's "capture then ask vision model"
// shape; delegates the actual analysis to LLMFactory.Create(RoleVision)
// rather than any image-processing logic of its own.
type VisionAnalyzeTool struct {
	capturer ScreenCapturer
	factory  *agent.LLMFactory
}

// NewVisionAnalyzeTool builds the tool against capturer and factory.
func NewVisionAnalyzeTool(capturer ScreenCapturer, factory *agent.LLMFactory) *VisionAnalyzeTool {
	if capturer == nil {
		capturer = NoopScreenCapturer{}
	}
	return &VisionAnalyzeTool{capturer: capturer, factory: factory}
}

func (t *VisionAnalyzeTool) Name() string { return "vision_analyze" }

func (t *VisionAnalyzeTool) Description() string {
	return "Capture the current screen and ask a vision-capable model a question about it."
}

func (t *VisionAnalyzeTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "What to ask about the captured screen.",
			},
		},
		"required": []string{"question"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *VisionAnalyzeTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Question == "" {
		return errResult("question is required"), nil
	}

	raw, mimeType, err := t.capturer.Capture(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("screen capture: %v", err)), nil
	}

	normalized, err := media.NormalizeBrowserScreenshot(raw, nil)
	if err != nil {
		return errResult(fmt.Sprintf("normalize screenshot: %v", err)), nil
	}
	if mimeType == "" {
		mimeType = normalized.ContentType
	}

	bound, err := t.factory.Create(models.AgentRoleVision)
	if err != nil {
		return errResult(fmt.Sprintf("vision model unavailable: %v", err)), nil
	}

	log := []agent.CompletionMessage{{
		Role:    "user",
		Content: input.Question,
		Attachments: []models.Attachment{{
			Type:     "image",
			Data:     normalized.Buffer,
			MimeType: mimeType,
		}},
	}}
	assistant, err := bound.Invoke(ctx, "Describe what you see and answer the question precisely.", log, nil, nil)
	if err != nil {
		return errResult(fmt.Sprintf("vision analysis failed: %v", err)), nil
	}
	return &agent.ToolResult{Content: assistant.Content}, nil
}
