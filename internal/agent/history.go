package agent

import (
	"github.com/jarvisai/jarvis/pkg/models"
)

// DefaultMaxHistory is the fallback retention window (spec §4.4) when
// MAX_HISTORY_MESSAGES is unset or non-positive.
const DefaultMaxHistory = 30

// TruncateHistory keeps only the last max entries of log (spec §4.4). If the
// first retained message would be an orphaned Tool message - one whose
// matching assistant tool-call fell outside the window - it is dropped too,
// so truncation never hands the sanitiser a log that starts mid tool-call
// pair. A trailing assistant message whose tool responses got truncated away
// is left for SanitiseForProvider to repair (it will strip that message's
// tool_calls), per spec §4.4's explicit division of labor.
//
// log is not mutated; the returned slice shares the original message
// pointers.
func TruncateHistory(log []*models.Message, max int) []*models.Message {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	if len(log) <= max {
		out := make([]*models.Message, len(log))
		copy(out, log)
		return out
	}

	window := log[len(log)-max:]

	start := 0
	if len(window) > 0 && window[0].Role == models.RoleTool {
		start = 1
	}

	out := make([]*models.Message, len(window)-start)
	copy(out, window[start:])
	return out
}
