package checkpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/jarvisai/jarvis/pkg/models"
)

func identityMerge(existing, incoming []*models.Message) ([]*models.Message, error) {
	merged := make([]*models.Message, len(existing))
	copy(merged, existing)
	merged = append(merged, incoming...)
	return merged, nil
}

func TestMemoryCheckpointer_GetLatest_NotFound(t *testing.T) {
	c := NewMemoryCheckpointer(identityMerge)
	_, err := c.GetLatest(context.Background(), "thread-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryCheckpointer_PutThenGetLatest(t *testing.T) {
	c := NewMemoryCheckpointer(identityMerge)
	state := models.NewAgentState(models.InteractionText)
	state.Messages = append(state.Messages, models.NewUserMessage("m1", "hi"))

	written, err := c.Put(context.Background(), "thread-1", state, []string{"chatbot"})
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if written.Version != 1 {
		t.Errorf("Version = %d, want 1", written.Version)
	}

	got, err := c.GetLatest(context.Background(), "thread-1")
	if err != nil {
		t.Fatalf("GetLatest error: %v", err)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if len(got.State.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(got.State.Messages))
	}
}

func TestMemoryCheckpointer_PutIsMonotonic(t *testing.T) {
	c := NewMemoryCheckpointer(identityMerge)
	state := models.NewAgentState(models.InteractionText)

	for i := 0; i < 3; i++ {
		cp, err := c.Put(context.Background(), "thread-1", state, nil)
		if err != nil {
			t.Fatalf("Put error: %v", err)
		}
		if cp.Version != int64(i+1) {
			t.Errorf("iteration %d: Version = %d, want %d", i, cp.Version, i+1)
		}
	}
}

func TestMemoryCheckpointer_UpdatePartial_MergesMessagesAndRole(t *testing.T) {
	c := NewMemoryCheckpointer(identityMerge)
	state := models.NewAgentState(models.InteractionText)
	state.Messages = append(state.Messages, models.NewUserMessage("m1", "hi"))
	if _, err := c.Put(context.Background(), "thread-1", state, []string{"tools"}); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	delta := StateDelta{
		Messages:    []*models.Message{models.NewToolMessage("m2", "tc1", "file_operation", "ok", false)},
		CurrentRole: models.AgentRoleVision,
	}
	cp, err := c.UpdatePartial(context.Background(), "thread-1", delta, nil)
	if err != nil {
		t.Fatalf("UpdatePartial error: %v", err)
	}
	if cp.Version != 2 {
		t.Errorf("Version = %d, want 2", cp.Version)
	}
	if len(cp.State.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(cp.State.Messages))
	}
	if cp.State.CurrentRole != models.AgentRoleVision {
		t.Errorf("CurrentRole = %q, want vision", cp.State.CurrentRole)
	}
	if !cp.IsTerminal() {
		t.Error("expected IsTerminal true for nil next")
	}
}

func TestMemoryCheckpointer_UpdatePartial_NotFound(t *testing.T) {
	c := NewMemoryCheckpointer(identityMerge)
	_, err := c.UpdatePartial(context.Background(), "missing-thread", StateDelta{}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryCheckpointer_GetLatest_ReturnsIndependentClone(t *testing.T) {
	c := NewMemoryCheckpointer(identityMerge)
	state := models.NewAgentState(models.InteractionText)
	if _, err := c.Put(context.Background(), "thread-1", state, nil); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, _ := c.GetLatest(context.Background(), "thread-1")
	got.State.CurrentRole = models.AgentRoleCoder

	got2, _ := c.GetLatest(context.Background(), "thread-1")
	if got2.State.CurrentRole == models.AgentRoleCoder {
		t.Error("mutating a fetched checkpoint affected stored state")
	}
}
