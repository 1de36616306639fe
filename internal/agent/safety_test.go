package agent

import (
	"context"
	"testing"

	"github.com/jarvisai/jarvis/pkg/models"
)

func askWith(response string, err error) ConsentAsker {
	return func(ctx context.Context, calls []models.ToolCall) (string, error) {
		return response, err
	}
}

func TestSafetyInterceptor_AllSafe(t *testing.T) {
	registry := NewToolRegistry()
	registry.RegisterWithRisk(&registryTestTool{name: "switch_role"}, RiskSafe)
	registry.RegisterWithRisk(&registryTestTool{name: "shell_execute"}, RiskDangerous)

	s := NewSafetyInterceptor(registry, nil, true)

	safe := []models.ToolCall{{ID: "1", Name: "switch_role"}}
	if !s.allSafe(safe) {
		t.Error("expected all-safe batch to be classified safe")
	}

	mixed := []models.ToolCall{{ID: "1", Name: "switch_role"}, {ID: "2", Name: "shell_execute"}}
	if s.allSafe(mixed) {
		t.Error("expected a batch containing a dangerous call to be unsafe")
	}

	unknown := []models.ToolCall{{ID: "1", Name: "does_not_exist"}}
	if s.allSafe(unknown) {
		t.Error("expected an unknown tool to be treated as unsafe")
	}
}

func TestSafetyInterceptor_Handle_AutoApprovesSafeBatch(t *testing.T) {
	registry := NewToolRegistry()
	registry.RegisterWithRisk(&registryTestTool{name: "switch_role", schema: nil}, RiskSafe)

	provider := &scriptedLLMProvider{onComplete: func() []*CompletionChunk {
		return []*CompletionChunk{{Text: "ok"}, {Done: true}}
	}}
	engine := newTestEngine(t, provider, registry)

	asker := askWith("", nil)
	called := false
	wrappedAsker := ConsentAsker(func(ctx context.Context, calls []models.ToolCall) (string, error) {
		called = true
		return asker(ctx, calls)
	})
	s := NewSafetyInterceptor(registry, wrappedAsker, true)

	// Seed a suspended thread directly via the checkpointer is awkward here,
	// so this test only exercises the classification/ask-skip branch: with
	// autoApproveSafe true and an all-safe batch, Handle must never invoke ask.
	if !s.allSafe([]models.ToolCall{{ID: "1", Name: "switch_role"}}) {
		t.Fatal("setup: expected switch_role to classify safe")
	}
	handle := s.Handle(context.Background(), engine, "thread-does-not-exist", []models.ToolCall{{ID: "1", Name: "switch_role"}})
	handle.Wait()

	if called {
		t.Error("ask must not be called for an auto-approved safe batch")
	}
}

func TestSafetyInterceptor_Handle_AsksForDangerousBatch(t *testing.T) {
	registry := NewToolRegistry()
	registry.RegisterWithRisk(&registryTestTool{name: "shell_execute"}, RiskDangerous)

	asked := false
	asker := ConsentAsker(func(ctx context.Context, calls []models.ToolCall) (string, error) {
		asked = true
		return "no thanks", nil
	})
	s := NewSafetyInterceptor(registry, asker, true)

	provider := &stubLLMProvider{chunks: []*CompletionChunk{{Text: "noted"}, {Done: true}}}
	engine := newTestEngine(t, provider, registry)

	s.Handle(context.Background(), engine, "thread-does-not-exist", []models.ToolCall{{ID: "1", Name: "shell_execute"}}).Wait()

	if !asked {
		t.Error("expected ask to be called for a dangerous batch")
	}
}

func TestParseConsentResponse(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"yes", true},
		{"yes, go ahead", true},
		{"sure thing", true},
		{"no", false},
		{"no, don't do that", false},
		{"", false},
		{"maybe later", false},
		{"OK", true},
		{"nope", false},
	}
	for _, tt := range tests {
		if got := ParseConsentResponse(tt.text); got != tt.want {
			t.Errorf("ParseConsentResponse(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
