package checkpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/jarvisai/jarvis/pkg/models"
)

func newTestSQLiteCheckpointer(t *testing.T) *SQLiteCheckpointer {
	t.Helper()
	c, err := NewSQLiteCheckpointer(SQLiteConfig{Path: ":memory:"}, identityMerge)
	if err != nil {
		t.Fatalf("NewSQLiteCheckpointer error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCheckpointer_RequiresPath(t *testing.T) {
	_, err := NewSQLiteCheckpointer(SQLiteConfig{}, identityMerge)
	if err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSQLiteCheckpointer_GetLatest_NotFound(t *testing.T) {
	c := newTestSQLiteCheckpointer(t)
	_, err := c.GetLatest(context.Background(), "thread-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteCheckpointer_RoundTrip(t *testing.T) {
	c := newTestSQLiteCheckpointer(t)
	state := models.NewAgentState(models.InteractionVoice)
	state.Messages = append(state.Messages,
		models.NewUserMessage("m1", "hi"),
		models.NewAssistantMessage("m2", "", []models.ToolCall{{ID: "tc1", Name: "file_operation"}}),
	)
	state.Metadata["k"] = "v"

	written, err := c.Put(context.Background(), "thread-1", state, []string{"tools"})
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := c.GetLatest(context.Background(), "thread-1")
	if err != nil {
		t.Fatalf("GetLatest error: %v", err)
	}
	if got.Version != written.Version {
		t.Errorf("Version = %d, want %d", got.Version, written.Version)
	}
	if len(got.Next) != 1 || got.Next[0] != "tools" {
		t.Errorf("Next = %v, want [tools]", got.Next)
	}
	if len(got.State.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(got.State.Messages))
	}
	if got.State.Messages[1].ToolCalls[0].ID != "tc1" {
		t.Errorf("round-tripped tool call id = %q, want tc1", got.State.Messages[1].ToolCalls[0].ID)
	}
	if got.State.Metadata["k"] != "v" {
		t.Errorf("round-tripped metadata[k] = %v, want v", got.State.Metadata["k"])
	}
}

func TestSQLiteCheckpointer_PutIsMonotonicAcrossProcesses(t *testing.T) {
	c := newTestSQLiteCheckpointer(t)
	state := models.NewAgentState(models.InteractionText)

	first, err := c.Put(context.Background(), "thread-1", state, nil)
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	second, err := c.Put(context.Background(), "thread-1", state, nil)
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if second.Version <= first.Version {
		t.Errorf("second.Version = %d, want > %d", second.Version, first.Version)
	}
}

func TestSQLiteCheckpointer_UpdatePartial(t *testing.T) {
	c := newTestSQLiteCheckpointer(t)
	state := models.NewAgentState(models.InteractionText)
	state.Messages = append(state.Messages, models.NewUserMessage("m1", "hi"))
	if _, err := c.Put(context.Background(), "thread-1", state, []string{"tools"}); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	delta := StateDelta{
		Messages: []*models.Message{models.NewToolMessage("m2", "tc1", "file_operation", "ok", false)},
	}
	cp, err := c.UpdatePartial(context.Background(), "thread-1", delta, []string{"state_updater"})
	if err != nil {
		t.Fatalf("UpdatePartial error: %v", err)
	}
	if len(cp.State.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(cp.State.Messages))
	}
}

func TestSQLiteCheckpointer_UpdatePartial_NotFound(t *testing.T) {
	c := newTestSQLiteCheckpointer(t)
	_, err := c.UpdatePartial(context.Background(), "missing", StateDelta{}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
