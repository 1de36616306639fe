package agent

import (
	"github.com/jarvisai/jarvis/pkg/models"
)

// ProviderFlavour selects the pairing strictness sanitiseForProvider applies.
type ProviderFlavour string

const (
	// FlavourStrict is the Anthropic/OpenAI/Google shape: every assistant
	// tool call must be immediately followed by all of its matching tool
	// responses, with no extras and no omissions.
	FlavourStrict ProviderFlavour = "strict"

	// FlavourLenient tolerates partial pairing; sanitiseForProvider is the
	// identity transform for this flavour.
	FlavourLenient ProviderFlavour = "lenient"
)

// SanitiseForProvider produces a new log suitable for a specific LLM
// provider (spec §4.1). It never mutates log; it returns a new slice built
// from the original message pointers (messages themselves are not cloned
// unless rewritten).
//
// For FlavourStrict: walk the log, and for every assistant message with N
// tool calls, require that it is followed by exactly those N tool responses
// (ids matching, no extras, no omissions) before the next assistant message
// or the end of the log. If the pairing doesn't hold, the assistant message
// is replaced with a text-only copy (tool_calls stripped) and any tool
// responses that belonged to it are dropped. Trailing Tool messages at the
// end of the returned log are always dropped.
//
// For FlavourLenient this is the identity function (a shallow copy).
func SanitiseForProvider(log []*models.Message, flavour ProviderFlavour) []*models.Message {
	if flavour == FlavourLenient {
		out := make([]*models.Message, len(log))
		copy(out, log)
		return out
	}

	out := make([]*models.Message, 0, len(log))

	i := 0
	for i < len(log) {
		msg := log[i]

		if msg.Role != models.RoleAssistant || len(msg.ToolCalls) == 0 {
			out = append(out, msg)
			i++
			continue
		}

		// Collect the run of Tool messages immediately following this
		// assistant message.
		want := make(map[string]struct{}, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			want[tc.ID] = struct{}{}
		}

		j := i + 1
		var following []*models.Message
		for j < len(log) && log[j].Role == models.RoleTool {
			following = append(following, log[j])
			j++
		}

		if pairingSatisfied(want, following) {
			out = append(out, msg)
			out = append(out, following...)
		} else {
			// Replace with a text-only copy; drop the partial tool
			// responses entirely rather than re-emitting an orphaned subset.
			textOnly := msg.Clone()
			textOnly.ToolCalls = nil
			out = append(out, textOnly)
		}

		i = j
	}

	// Drop any trailing Tool messages.
	for len(out) > 0 && out[len(out)-1].Role == models.RoleTool {
		out = out[:len(out)-1]
	}

	return out
}

// pairingSatisfied reports whether following is exactly the set of tool
// responses named in want: same size, each id present exactly once, no
// extras.
func pairingSatisfied(want map[string]struct{}, following []*models.Message) bool {
	if len(following) != len(want) {
		return false
	}
	seen := make(map[string]struct{}, len(following))
	for _, m := range following {
		if _, ok := want[m.ToolCallID]; !ok {
			return false
		}
		if _, dup := seen[m.ToolCallID]; dup {
			return false
		}
		seen[m.ToolCallID] = struct{}{}
	}
	return true
}

// StripSystemMessages returns a copy of log with every System-role message
// removed (spec §4.4 step 1 / invariant I5: the stored log should never
// contain one - the engine synthesises a fresh System message on every call).
func StripSystemMessages(log []*models.Message) []*models.Message {
	out := make([]*models.Message, 0, len(log))
	for _, m := range log {
		if m.Role == models.RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
