package jarvis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type recordingSystemBackend struct {
	volume     int
	brightness int
	launched   string
	err        error
}

func (b *recordingSystemBackend) SetVolume(ctx context.Context, percent int) error {
	b.volume = percent
	return b.err
}
func (b *recordingSystemBackend) SetBrightness(ctx context.Context, percent int) error {
	b.brightness = percent
	return b.err
}
func (b *recordingSystemBackend) LaunchApp(ctx context.Context, name string) error {
	b.launched = name
	return b.err
}

func TestSystemControlTool_DispatchesToBackend(t *testing.T) {
	backend := &recordingSystemBackend{}
	tool := NewSystemControlTool(backend)
	ctx := context.Background()

	volumeParams, _ := json.Marshal(map[string]any{"action": "set_volume", "percent": 42})
	if result, err := tool.Execute(ctx, volumeParams); err != nil || result.IsError {
		t.Fatalf("set_volume: err=%v result=%+v", err, result)
	}
	if backend.volume != 42 {
		t.Errorf("volume = %d, want 42", backend.volume)
	}

	launchParams, _ := json.Marshal(map[string]any{"action": "launch_app", "app": "Calculator"})
	if result, err := tool.Execute(ctx, launchParams); err != nil || result.IsError {
		t.Fatalf("launch_app: err=%v result=%+v", err, result)
	}
	if backend.launched != "Calculator" {
		t.Errorf("launched = %q, want Calculator", backend.launched)
	}
}

func TestSystemControlTool_BackendErrorSurfacesAsToolError(t *testing.T) {
	backend := &recordingSystemBackend{err: errors.New("denied")}
	tool := NewSystemControlTool(backend)
	params, _ := json.Marshal(map[string]any{"action": "set_brightness", "percent": 10})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError {
		t.Error("expected backend error to surface as a tool error")
	}
}

func TestSystemControlTool_DefaultsToNoopBackend(t *testing.T) {
	tool := NewSystemControlTool(nil)
	params, _ := json.Marshal(map[string]any{"action": "set_volume", "percent": 50})
	result, err := tool.Execute(context.Background(), params)
	if err != nil || result.IsError {
		t.Fatalf("err=%v result=%+v", err, result)
	}
}
