package jarvis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/config"
)

type fakeScreenCapturer struct {
	data     []byte
	mimeType string
	err      error
}

func (f fakeScreenCapturer) Capture(ctx context.Context) ([]byte, string, error) {
	return f.data, f.mimeType, f.err
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// newVisionFactory points the vision role at a fake Ollama-compatible
// server so VisionAnalyzeTool exercises a real LLMFactory/BoundChat/
// provider round trip without a live model backend.
func newVisionFactory(t *testing.T, text string) *agent.LLMFactory {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":true}`+"\n", text)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{Roles: config.RoleTable{
		Default: config.RoleConfig{Provider: "openai", Credential: "sk-test"},
		Vision:  config.RoleConfig{Provider: "ollama", Endpoint: server.URL, Model: "llava"},
	}}
	return agent.NewLLMFactory(cfg, nil)
}

func TestVisionAnalyzeTool_CapturesAndInvokesVisionRole(t *testing.T) {
	factory := newVisionFactory(t, "a blue square")
	capturer := fakeScreenCapturer{data: smallPNG(t), mimeType: "image/png"}
	tool := NewVisionAnalyzeTool(capturer, factory)

	params, _ := json.Marshal(map[string]string{"question": "what color is this?"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil || result.IsError {
		t.Fatalf("err=%v result=%+v", err, result)
	}
	if result.Content != "a blue square" {
		t.Errorf("Content = %q, want the vision model's answer", result.Content)
	}
}

func TestVisionAnalyzeTool_RequiresQuestion(t *testing.T) {
	tool := NewVisionAnalyzeTool(NoopScreenCapturer{}, newVisionFactory(t, "x"))
	params, _ := json.Marshal(map[string]string{"question": ""})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected missing question to be rejected")
	}
}

func TestNoopScreenCapturer_AlwaysErrors(t *testing.T) {
	_, _, err := NoopScreenCapturer{}.Capture(context.Background())
	if err == nil {
		t.Error("expected NoopScreenCapturer to return an error")
	}
}

func TestVisionAnalyzeTool_SurfacesCaptureError(t *testing.T) {
	tool := NewVisionAnalyzeTool(NoopScreenCapturer{}, newVisionFactory(t, "x"))
	params, _ := json.Marshal(map[string]string{"question": "what is this?"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected capture failure to surface as a tool error")
	}
}
