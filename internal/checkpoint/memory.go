package checkpoint

import (
	"context"
	"sync"

	"github.com/jarvisai/jarvis/pkg/models"
)

// MergeFunc is the message-log reducer (agent.MergeMessages) injected by the
// caller. The checkpoint package stays free of a dependency on package agent
// so that agent can in turn depend on checkpoint for the engine's
// interrupt-before-tools persistence - the merge function is the only piece
// of reducer logic a backend needs, so it is passed in rather than imported.
type MergeFunc func(existing, incoming []*models.Message) ([]*models.Message, error)

// MemoryCheckpointer is an in-memory Checkpointer for tests and the
// in-process driver path (spec §4.6: "an in-memory backend is provided for
// tests"). Grounded on the teacher's sessions.MemoryStore: a mutex-guarded
// map, cloning on every read/write so callers can never observe or cause a
// torn write.
type MemoryCheckpointer struct {
	mu    sync.Mutex
	byKey map[string]*Checkpoint
	merge MergeFunc
}

// NewMemoryCheckpointer returns an empty in-memory checkpointer. merge is
// typically agent.MergeMessages.
func NewMemoryCheckpointer(merge MergeFunc) *MemoryCheckpointer {
	return &MemoryCheckpointer{byKey: make(map[string]*Checkpoint), merge: merge}
}

func (m *MemoryCheckpointer) GetLatest(ctx context.Context, threadID string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp, ok := m.byKey[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	return cp.Clone(), nil
}

func (m *MemoryCheckpointer) Put(ctx context.Context, threadID string, state *models.AgentState, next []string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	version := int64(1)
	if existing, ok := m.byKey[threadID]; ok {
		version = existing.Version + 1
	}

	cp := &Checkpoint{
		ThreadID: threadID,
		Version:  version,
		State:    state.Clone(),
		Next:     append([]string(nil), next...),
	}
	m.byKey[threadID] = cp
	return cp.Clone(), nil
}

func (m *MemoryCheckpointer) UpdatePartial(ctx context.Context, threadID string, delta StateDelta, next []string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byKey[threadID]
	if !ok {
		return nil, ErrNotFound
	}

	newState, err := ApplyDelta(existing.State, delta, m.merge)
	if err != nil {
		return nil, err
	}

	cp := &Checkpoint{
		ThreadID: threadID,
		Version:  existing.Version + 1,
		State:    newState,
		Next:     append([]string(nil), next...),
	}
	m.byKey[threadID] = cp
	return cp.Clone(), nil
}

func (m *MemoryCheckpointer) Close() error {
	return nil
}
