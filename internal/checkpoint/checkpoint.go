// Package checkpoint implements the durable key->state store the spec names
// the Checkpointer (spec §4.6): get_latest/put/update_partial over
// (thread_id, monotonic_version) keyed snapshots of AgentState plus the
// engine's pending `next` node list.
package checkpoint

import (
	"context"
	"errors"

	"github.com/jarvisai/jarvis/pkg/models"
)

// ErrNotFound is returned by GetLatest when a thread has never been
// checkpointed.
var ErrNotFound = errors.New("checkpoint: thread not found")

// Checkpoint is a serialisable snapshot of AgentState plus the engine's next
// field (spec §3). next=[] means the graph is terminal for this thread.
type Checkpoint struct {
	ThreadID string             `json:"thread_id"`
	Version  int64              `json:"version"`
	State    *models.AgentState `json:"state"`
	Next     []string           `json:"next"`
}

// Clone returns a deep copy, so callers can mutate a fetched checkpoint
// without risking aliasing into a backend's stored copy.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	clone := &Checkpoint{
		ThreadID: c.ThreadID,
		Version:  c.Version,
		State:    c.State.Clone(),
	}
	if len(c.Next) > 0 {
		clone.Next = append([]string(nil), c.Next...)
	}
	return clone
}

// IsTerminal reports whether the graph has nothing left to run for this
// thread.
func (c *Checkpoint) IsTerminal() bool {
	return c != nil && len(c.Next) == 0
}

// Checkpointer is the minimal interface spec §4.6 requires. Implementations
// must be atomic per write (a partial write is never observable), monotonic
// (GetLatest always returns the highest version written), and portable
// (survive a full process restart).
type Checkpointer interface {
	// GetLatest returns the highest-version checkpoint for threadID, or
	// ErrNotFound if the thread has never been checkpointed.
	GetLatest(ctx context.Context, threadID string) (*Checkpoint, error)

	// Put writes a full checkpoint, assigning it the next monotonic version
	// for threadID and returning the version actually written.
	Put(ctx context.Context, threadID string, state *models.AgentState, next []string) (*Checkpoint, error)

	// UpdatePartial merges delta into the latest checkpoint's state (via the
	// message reducer for Messages, direct overwrite for CurrentRole when
	// non-empty) and stamps Next as having been produced "as if" by
	// asIfFromNode, writing a new version. It fails with ErrNotFound if no
	// checkpoint exists yet for threadID.
	UpdatePartial(ctx context.Context, threadID string, delta StateDelta, next []string) (*Checkpoint, error)

	// Close releases any resources the backend holds open.
	Close() error
}

// StateDelta is a partial AgentState update applied by UpdatePartial. A zero
// value field means "leave unchanged" - CurrentRole empty string means no
// role change, Messages nil means no new messages, Metadata nil means no
// metadata changes.
type StateDelta struct {
	Messages    []*models.Message
	CurrentRole models.AgentRole
	Metadata    map[string]any
}

// ApplyDelta returns a new AgentState with delta folded into base: Messages
// merged via the reducer semantics (id-keyed replace-or-append, callers are
// responsible for passing a delta.Messages with no duplicate ids),
// CurrentRole overwritten when delta.CurrentRole is non-empty, and
// Metadata keys overwritten individually.
func ApplyDelta(base *models.AgentState, delta StateDelta, merge func(existing, incoming []*models.Message) ([]*models.Message, error)) (*models.AgentState, error) {
	next := base.Clone()
	if next == nil {
		next = models.NewAgentState(models.InteractionText)
	}

	if len(delta.Messages) > 0 {
		merged, err := merge(next.Messages, delta.Messages)
		if err != nil {
			return nil, err
		}
		next.Messages = merged
	}

	if delta.CurrentRole != "" {
		next.CurrentRole = delta.CurrentRole
	}

	if len(delta.Metadata) > 0 {
		if next.Metadata == nil {
			next.Metadata = make(map[string]any, len(delta.Metadata))
		}
		for k, v := range delta.Metadata {
			next.Metadata[k] = v
		}
	}

	return next, nil
}
