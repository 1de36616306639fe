package models

// AgentState is the structured record the GraphEngine threads through every
// node (spec §3). It is created once per thread at first user input and
// persists across process restarts via the Checkpointer.
type AgentState struct {
	// Messages is the conversation log, with reducer semantics (append with
	// id-keyed replacement) owned by MergeMessages.
	Messages []*Message `json:"messages"`

	// CurrentRole selects the bound chat model; mutated only by
	// state_updater after observing a role-switch sentinel.
	CurrentRole AgentRole `json:"current_role"`

	// InteractionMode is the driver's I/O channel for this thread.
	InteractionMode InteractionMode `json:"interaction_mode"`

	// Metadata is a free-form key/value bag for tool/driver side-channel
	// data. It is never read by the LLM.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewAgentState returns the initial state for a freshly created thread:
// current_role defaults to "default", interaction_mode is the driver's mode
// at first turn, messages and metadata start empty.
func NewAgentState(mode InteractionMode) *AgentState {
	return &AgentState{
		Messages:        nil,
		CurrentRole:     AgentRoleDefault,
		InteractionMode: mode,
		Metadata:        make(map[string]any),
	}
}

// Clone returns a deep copy of the state: a new Messages slice (message
// pointers are not copied - Message values are immutable after creation per
// message.go) and a new Metadata map.
func (s *AgentState) Clone() *AgentState {
	if s == nil {
		return nil
	}
	clone := &AgentState{
		CurrentRole:     s.CurrentRole,
		InteractionMode: s.InteractionMode,
	}
	if len(s.Messages) > 0 {
		clone.Messages = make([]*Message, len(s.Messages))
		copy(clone.Messages, s.Messages)
	}
	if len(s.Metadata) > 0 {
		clone.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}
