package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jarvisai/jarvis/pkg/models"
)

// ConsentAsker prompts the host (voice or text) for consent to run a batch
// of tool calls and returns the host's raw response text. Grounded on the
// teacher's ApprovalChecker (internal/agent/approval.go) UI-callback shape,
// simplified to the spec's binary ask/parse contract (spec §4.5 step 4).
type ConsentAsker func(ctx context.Context, calls []models.ToolCall) (string, error)

// SafetyInterceptor is the driver-side gate spec §4.5 names: invoked
// whenever run_until_quiescent returns TurnSuspended at `tools`. It
// classifies the pending batch using the same ToolRegistry the engine was
// built with and calls back into the engine to resume or reject.
type SafetyInterceptor struct {
	registry        *ToolRegistry
	autoApproveSafe bool
	ask             ConsentAsker
}

// NewSafetyInterceptor builds an interceptor. autoApproveSafe defaults to
// true (spec §4.5 step 3: "the default"); pass false to require explicit
// consent even for all-safe batches.
func NewSafetyInterceptor(registry *ToolRegistry, ask ConsentAsker, autoApproveSafe bool) *SafetyInterceptor {
	return &SafetyInterceptor{registry: registry, autoApproveSafe: autoApproveSafe, ask: ask}
}

// Handle implements spec §4.5 steps 2-6 for one suspended batch: classify,
// auto-approve if all-safe, otherwise ask the host and resume or reject
// accordingly. Safety decisions are never cached - every batch calling
// this method is evaluated fresh.
func (s *SafetyInterceptor) Handle(ctx context.Context, engine *GraphEngine, threadID string, pending []models.ToolCall) *TurnHandle {
	if s.allSafe(pending) && s.autoApproveSafe {
		return engine.Resume(ctx, threadID)
	}

	response, err := s.ask(ctx, pending)
	approved := err == nil && ParseConsentResponse(response)
	if approved {
		return engine.Resume(ctx, threadID)
	}

	rejections := make([]*models.Message, 0, len(pending))
	for _, call := range pending {
		content := fmt.Sprintf("tool call rejected by user, tool `%s` was not executed", call.Name)
		rejections = append(rejections, models.NewToolMessage(uuid.NewString(), call.ID, call.Name, content, true))
	}
	return engine.RejectAndResume(ctx, threadID, rejections)
}

// allSafe reports whether every call in the batch resolves to a known,
// RiskSafe descriptor. An unknown tool name is treated as requiring
// confirmation, same as a dangerous one (spec §4.5 step 2).
func (s *SafetyInterceptor) allSafe(calls []models.ToolCall) bool {
	for _, call := range calls {
		descriptor, ok := s.registry.Get(call.Name)
		if !ok || descriptor.Risk != RiskSafe {
			return false
		}
	}
	return true
}

// approveKeywords/rejectKeywords are the fixed keyword sets spec §4.5 step
// 4 requires ("matched against a fixed pair of keyword sets"). Checked as
// substrings of the normalized response so both exact short affirmatives
// ("yes", "no") and full sentences ("yes, go ahead") match.
var (
	approveKeywords = []string{"yes", "yeah", "yep", "yup", "sure", "approve", "approved", "allow", "allowed", "go ahead", "do it", "confirm", "confirmed", "ok", "okay"}
	rejectKeywords  = []string{"no", "nope", "nah", "deny", "denied", "reject", "rejected", "cancel", "stop", "don't", "do not"}
)

// ParseConsentResponse classifies a host response as approval or
// rejection. An ambiguous or empty response is treated as rejection (spec
// §4.5 step 4). Rejection keywords are checked first so a response like
// "no, don't do that" is never misread as approval via a stray "ok".
func ParseConsentResponse(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	for _, kw := range rejectKeywords {
		if strings.Contains(normalized, kw) {
			return false
		}
	}
	for _, kw := range approveKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}
