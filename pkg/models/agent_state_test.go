package models

import "testing"

func TestNewAgentState_Defaults(t *testing.T) {
	s := NewAgentState(InteractionText)
	if s.CurrentRole != AgentRoleDefault {
		t.Errorf("CurrentRole = %q, want default", s.CurrentRole)
	}
	if s.InteractionMode != InteractionText {
		t.Errorf("InteractionMode = %q, want text", s.InteractionMode)
	}
	if len(s.Messages) != 0 {
		t.Error("expected empty Messages")
	}
	if s.Metadata == nil {
		t.Error("expected non-nil Metadata")
	}
}

func TestAgentState_Clone_IsIndependent(t *testing.T) {
	s := NewAgentState(InteractionVoice)
	s.Messages = append(s.Messages, NewUserMessage("m1", "hi"))
	s.Metadata["k"] = "v"

	clone := s.Clone()
	clone.Messages = append(clone.Messages, NewUserMessage("m2", "bye"))
	clone.Metadata["k"] = "mutated"
	clone.CurrentRole = AgentRoleVision

	if len(s.Messages) != 1 {
		t.Error("mutating clone.Messages affected original")
	}
	if s.Metadata["k"] != "v" {
		t.Error("mutating clone.Metadata affected original")
	}
	if s.CurrentRole != AgentRoleDefault {
		t.Error("mutating clone.CurrentRole affected original")
	}
}
