package agent

import (
	"testing"

	"github.com/jarvisai/jarvis/pkg/models"
)

func buildLog(n int) []*models.Message {
	log := make([]*models.Message, n)
	for i := 0; i < n; i++ {
		log[i] = models.NewUserMessage(string(rune('a'+i%26))+string(rune(i)), "x")
	}
	return log
}

func TestTruncateHistory_UnderLimitIsUnchanged(t *testing.T) {
	log := buildLog(5)
	out := TruncateHistory(log, 30)
	if len(out) != 5 {
		t.Fatalf("len(out) = %d, want 5", len(out))
	}
}

func TestTruncateHistory_KeepsLastMax(t *testing.T) {
	log := buildLog(40)
	out := TruncateHistory(log, 30)
	if len(out) != 30 {
		t.Fatalf("len(out) = %d, want 30", len(out))
	}
	if out[0] != log[10] {
		t.Error("expected window to start at log[10]")
	}
	if out[len(out)-1] != log[len(log)-1] {
		t.Error("expected window to end at the last message")
	}
}

func TestTruncateHistory_DropsLeadingOrphanToolMessage(t *testing.T) {
	log := []*models.Message{
		models.NewUserMessage("u1", "hi"),
		models.NewAssistantMessage("a1", "", []models.ToolCall{{ID: "tc1", Name: "file_operation"}}),
		models.NewToolMessage("t1", "tc1", "file_operation", "ok", false),
		models.NewAssistantMessage("a2", "done", nil),
	}
	// max=2 would otherwise window to [t1, a2], starting on an orphaned Tool.
	out := TruncateHistory(log, 2)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (leading Tool orphan dropped)", len(out))
	}
	if out[0].ID != "a2" {
		t.Errorf("out[0].ID = %q, want a2", out[0].ID)
	}
}

func TestTruncateHistory_DefaultWhenNonPositive(t *testing.T) {
	log := buildLog(40)
	out := TruncateHistory(log, 0)
	if len(out) != DefaultMaxHistory {
		t.Fatalf("len(out) = %d, want %d", len(out), DefaultMaxHistory)
	}
}

func TestTruncateHistory_DoesNotMutateInput(t *testing.T) {
	log := buildLog(40)
	cp := make([]*models.Message, len(log))
	copy(cp, log)

	_ = TruncateHistory(log, 30)

	for i := range log {
		if log[i] != cp[i] {
			t.Fatalf("input slice mutated at index %d", i)
		}
	}
}
