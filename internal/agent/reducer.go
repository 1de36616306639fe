package agent

import (
	"github.com/jarvisai/jarvis/pkg/models"
)

// MergeMessages implements the message-log reducer (spec §4.1): walk incoming
// in order, replacing an existing message at its current position when the
// id already exists in existing, otherwise appending to the tail. existing is
// never mutated; the returned slice is a new one.
//
// Returns ErrDuplicateIncomingId if incoming itself carries the same id
// twice - that is a caller bug (e.g. a provider that echoed a tool-call id as
// both an assistant and a tool message id), not a normal merge case.
func MergeMessages(existing []*models.Message, incoming []*models.Message) ([]*models.Message, error) {
	seenIncoming := make(map[string]struct{}, len(incoming))
	for _, m := range incoming {
		if _, dup := seenIncoming[m.ID]; dup {
			return nil, ErrDuplicateIncomingId
		}
		seenIncoming[m.ID] = struct{}{}
	}

	merged := make([]*models.Message, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, m := range merged {
		index[m.ID] = i
	}

	for _, m := range incoming {
		if pos, ok := index[m.ID]; ok {
			merged[pos] = m
			continue
		}
		merged = append(merged, m)
		index[m.ID] = len(merged) - 1
	}

	// Message values are never mutated in place (models.Message docs this
	// explicitly) - stamp Position onto a clone rather than writing through
	// the original pointer, which may still be referenced by the caller's
	// existing slice or by incoming.
	for i, m := range merged {
		if m.Position == i {
			continue
		}
		clone := m.Clone()
		clone.Position = i
		merged[i] = clone
	}

	return merged, nil
}
