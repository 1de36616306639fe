package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jarvisai/jarvis/internal/checkpoint"
	"github.com/jarvisai/jarvis/internal/observability"
	"github.com/jarvisai/jarvis/pkg/models"
)

// Node names in the fixed three-node topology (spec §4.4).
const (
	NodeChatbot      = "chatbot"
	NodeTools        = "tools"
	NodeStateUpdater = "state_updater"
)

// roleSwitchLookback bounds how far state_updater scans back into the log
// for a role-switch sentinel (spec §4.4: "bounded look-back of 3").
const roleSwitchLookback = 3

const defaultPersona = "You are Jarvis, a personal AI assistant. Be direct, helpful, and concise."

// EngineConfig wires together everything GraphEngine needs: the
// Checkpointer backend, the populated ToolRegistry, the LLMFactory, and the
// sequential tool Executor built on top of that same registry.
type EngineConfig struct {
	Checkpointer checkpoint.Checkpointer
	Registry     *ToolRegistry
	Factory      *LLMFactory
	Executor     *Executor

	// Persona seeds the system prompt the chatbot node synthesises fresh on
	// every call (spec §4.4 step 4). Defaults to a generic assistant persona.
	Persona string

	// Flavour selects the provider sanitisation strictness applied before
	// every chatbot call (spec §4.1).
	Flavour ProviderFlavour

	// MaxHistory overrides DefaultMaxHistory.
	MaxHistory int

	// DisableSafety removes `tools` from the break-before set (spec §4.4:
	// "unless safety is disabled"). Zero value (false) keeps safety on.
	DisableSafety bool

	// SinkCapacity sizes each turn's TokenSink. Defaults to 64.
	SinkCapacity int

	// ResultGuard redacts secrets and caps size on every tool result before
	// it is folded into a Tool message and persisted to the checkpoint. Zero
	// value is inert (ToolResultGuard.Apply is then a no-op).
	ResultGuard ToolResultGuard

	// Metrics records LLM call duration and tool execution counters/
	// durations by risk class. Nil disables metrics recording entirely.
	Metrics *observability.Metrics
}

// GraphEngine is the three-node chatbot/tools/state_updater orchestrator
// (spec §4.4), durable via Checkpointer and suspending before `tools`
// unless safety is disabled.
type GraphEngine struct {
	checkpointer  checkpoint.Checkpointer
	registry      *ToolRegistry
	factory       *LLMFactory
	executor      *Executor
	persona       string
	flavour       ProviderFlavour
	maxHistory    int
	safetyEnabled bool
	sinkCapacity  int
	resultGuard   ToolResultGuard
	metrics       *observability.Metrics
}

// NewGraphEngine builds an engine from cfg, applying defaults for anything
// left zero.
func NewGraphEngine(cfg EngineConfig) *GraphEngine {
	persona := cfg.Persona
	if persona == "" {
		persona = defaultPersona
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	sinkCapacity := cfg.SinkCapacity
	if sinkCapacity <= 0 {
		sinkCapacity = 64
	}
	return &GraphEngine{
		checkpointer:  cfg.Checkpointer,
		registry:      cfg.Registry,
		factory:       cfg.Factory,
		executor:      cfg.Executor,
		persona:       persona,
		flavour:       cfg.Flavour,
		maxHistory:    maxHistory,
		safetyEnabled: !cfg.DisableSafety,
		sinkCapacity:  sinkCapacity,
		resultGuard:   cfg.ResultGuard,
		metrics:       cfg.Metrics,
	}
}

// TurnOutcomeKind discriminates the three ways a turn can end (spec §4.7).
type TurnOutcomeKind string

const (
	TurnFinished  TurnOutcomeKind = "finished"
	TurnSuspended TurnOutcomeKind = "suspended"
	TurnFailed    TurnOutcomeKind = "failed"
)

// TurnOutcome is the result `handle.wait()` delivers (spec §4.7).
type TurnOutcome struct {
	Kind             TurnOutcomeKind
	AssistantText    string
	PendingToolCalls []models.ToolCall
	Err              error
}

// TurnHandle is returned by StartTurn/Resume/RejectAndResume: a live token
// stream plus a blocking wait for the final outcome.
type TurnHandle struct {
	sink    *TokenSink
	done    chan struct{}
	outcome *TurnOutcome
}

// Stream returns the channel of live tokens produced by the current
// chatbot invocation. Closed once the turn's engine work completes.
func (h *TurnHandle) Stream() <-chan string {
	return h.sink.Tokens()
}

// Wait blocks until the turn completes and returns its outcome.
func (h *TurnHandle) Wait() *TurnOutcome {
	<-h.done
	return h.outcome
}

// StartTurn appends a user message to threadID's state (creating the
// thread on first use) and runs the graph until quiescent (spec §4.7).
func (e *GraphEngine) StartTurn(ctx context.Context, threadID, userText string, mode models.InteractionMode) *TurnHandle {
	handle := e.newHandle()
	go func() {
		defer close(handle.done)
		defer handle.sink.Close()

		if err := e.ensureThread(ctx, threadID, mode); err != nil {
			handle.outcome = &TurnOutcome{Kind: TurnFailed, Err: err}
			return
		}

		userMsg := models.NewUserMessage(uuid.NewString(), userText)
		delta := checkpoint.StateDelta{Messages: []*models.Message{userMsg}}
		if _, err := e.checkpointer.UpdatePartial(ctx, threadID, delta, []string{NodeChatbot}); err != nil {
			handle.outcome = &TurnOutcome{Kind: TurnFailed, Err: fmt.Errorf("%w: %v", ErrCheckpointerWrite, err)}
			return
		}

		handle.outcome = e.runUntilQuiescent(ctx, threadID, handle.sink, false)
	}()
	return handle
}

// Resume advances the engine past a break-before suspension at `tools`,
// having been approved by the SafetyInterceptor (spec §4.7).
func (e *GraphEngine) Resume(ctx context.Context, threadID string) *TurnHandle {
	handle := e.newHandle()
	go func() {
		defer close(handle.done)
		defer handle.sink.Close()
		handle.outcome = e.runUntilQuiescent(ctx, threadID, handle.sink, true)
	}()
	return handle
}

// RejectAndResume writes syntheticToolMessages as if produced by `tools`
// and advances to `state_updater` (spec §4.5 step 6, §4.7).
func (e *GraphEngine) RejectAndResume(ctx context.Context, threadID string, syntheticToolMessages []*models.Message) *TurnHandle {
	handle := e.newHandle()
	go func() {
		defer close(handle.done)
		defer handle.sink.Close()

		delta := checkpoint.StateDelta{Messages: syntheticToolMessages}
		if _, err := e.checkpointer.UpdatePartial(ctx, threadID, delta, []string{NodeStateUpdater}); err != nil {
			handle.outcome = &TurnOutcome{Kind: TurnFailed, Err: fmt.Errorf("%w: %v", ErrCheckpointerWrite, err)}
			return
		}
		handle.outcome = e.runUntilQuiescent(ctx, threadID, handle.sink, false)
	}()
	return handle
}

func (e *GraphEngine) newHandle() *TurnHandle {
	return &TurnHandle{sink: NewTokenSink(e.sinkCapacity), done: make(chan struct{})}
}

func (e *GraphEngine) ensureThread(ctx context.Context, threadID string, mode models.InteractionMode) error {
	_, err := e.checkpointer.GetLatest(ctx, threadID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, checkpoint.ErrNotFound) {
		return err
	}
	_, err = e.checkpointer.Put(ctx, threadID, models.NewAgentState(mode), nil)
	return err
}

// runUntilQuiescent is the driver loop spec §4.4 names `run_until_quiescent`:
// it reads the latest checkpoint, and either suspends (persisting first),
// runs the next node and commits the resulting delta, or returns Finished
// once next == []. skipBreakOnce lets Resume execute exactly one `tools`
// node without re-triggering the break-before check it was called to
// satisfy; every subsequent tools batch is still re-evaluated (spec §4.5:
// "Safety decisions are never cached across turns").
func (e *GraphEngine) runUntilQuiescent(ctx context.Context, threadID string, sink *TokenSink, skipBreakOnce bool) *TurnOutcome {
	first := true
	for {
		cp, err := e.checkpointer.GetLatest(ctx, threadID)
		if err != nil {
			return &TurnOutcome{Kind: TurnFailed, Err: err}
		}
		if cp.IsTerminal() {
			return &TurnOutcome{Kind: TurnFinished, AssistantText: lastAssistantText(cp.State.Messages)}
		}
		if ctx.Err() != nil {
			return &TurnOutcome{Kind: TurnFailed, Err: ErrCancelled}
		}

		node := cp.Next[0]
		if node == NodeTools && e.safetyEnabled && !(first && skipBreakOnce) {
			return &TurnOutcome{Kind: TurnSuspended, PendingToolCalls: pendingCalls(cp.State.Messages)}
		}
		first = false

		delta, next, err := e.runNode(ctx, node, cp.State, sink)
		if err != nil {
			return &TurnOutcome{Kind: TurnFailed, Err: err}
		}
		if _, err := e.checkpointer.UpdatePartial(ctx, threadID, delta, next); err != nil {
			return &TurnOutcome{Kind: TurnFailed, Err: fmt.Errorf("%w: %v", ErrCheckpointerWrite, err)}
		}
	}
}

func (e *GraphEngine) runNode(ctx context.Context, node string, state *models.AgentState, sink *TokenSink) (checkpoint.StateDelta, []string, error) {
	switch node {
	case NodeChatbot:
		return e.runChatbot(ctx, state, sink)
	case NodeTools:
		return e.runTools(ctx, state)
	case NodeStateUpdater:
		return e.runStateUpdater(state)
	default:
		return checkpoint.StateDelta{}, nil, fmt.Errorf("engine: unknown node %q", node)
	}
}

// runChatbot implements spec §4.4's five chatbot steps, never raising to
// the caller: an LLM failure becomes a one-line apologetic assistant
// message instead of a returned error.
func (e *GraphEngine) runChatbot(ctx context.Context, state *models.AgentState, sink *TokenSink) (checkpoint.StateDelta, []string, error) {
	filtered := StripSystemMessages(state.Messages)
	truncated := TruncateHistory(filtered, e.maxHistory)
	sanitised := SanitiseForProvider(truncated, e.flavour)

	bound, err := e.factory.Create(state.CurrentRole)
	if err != nil {
		return chatbotFailureDelta(fmt.Sprintf("I can't reach a usable language model right now (%v).", err)), nil, nil
	}

	system := e.buildSystemPrompt(state)
	completionLog := toCompletionMessages(sanitised)

	start := time.Now()
	assistant, err := bound.Invoke(ctx, system, completionLog, e.toolsForLLM(), sink)
	e.recordLLMRequest(bound, err, time.Since(start))
	if err != nil {
		return chatbotFailureDelta(fmt.Sprintf("I ran into a problem generating a response (%v).", err)), nil, nil
	}
	if assistant == nil || (assistant.Content == "" && len(assistant.ToolCalls) == 0) {
		return chatbotFailureDelta("I didn't get a usable response that time - could you try again?"), nil, nil
	}

	assistant.ID = uuid.NewString()
	next := []string{NodeTools}
	if assistant.IsTerminal() {
		next = nil
	}
	return checkpoint.StateDelta{Messages: []*models.Message{assistant}}, next, nil
}

func chatbotFailureDelta(text string) checkpoint.StateDelta {
	return checkpoint.StateDelta{Messages: []*models.Message{models.NewAssistantMessage(uuid.NewString(), text, nil)}}
}

// recordLLMRequest is a no-op when e.metrics is nil (the default for
// callers that don't want metrics recording).
func (e *GraphEngine) recordLLMRequest(bound *BoundChat, err error, duration time.Duration) {
	if e.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		e.metrics.RecordError("llm", classifyLLMError(err))
	}
	e.metrics.RecordLLMRequest(bound.ProviderName(), bound.Model(), status, duration.Seconds())
}

func classifyLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "invocation_failed"
}

// runTools executes the last assistant message's tool calls sequentially
// and emits one Tool message per call (spec §4.4, §5 "executed sequentially
// in declared order"). Implemented by the engine itself; it never calls
// the LLM.
func (e *GraphEngine) runTools(ctx context.Context, state *models.AgentState) (checkpoint.StateDelta, []string, error) {
	last := lastMessage(state.Messages)
	if last == nil || !last.HasToolCalls() {
		return checkpoint.StateDelta{}, []string{NodeStateUpdater}, nil
	}

	results := e.executor.ExecuteSequential(ctx, last.ToolCalls)
	messages := make([]*models.Message, 0, len(results))
	for _, r := range results {
		content, isError := "", false
		switch {
		case r.Error != nil:
			content, isError = r.Error.Error(), true
		case r.Result != nil:
			content, isError = r.Result.Content, r.Result.IsError
		}
		e.recordToolExecution(r.ToolName, isError, r.Duration)
		guarded := e.resultGuard.Apply(r.ToolName, models.ToolResult{ToolCallID: r.ToolCallID, Content: content, IsError: isError})
		messages = append(messages, models.NewToolMessage(uuid.NewString(), r.ToolCallID, r.ToolName, guarded.Content, guarded.IsError))
	}
	return checkpoint.StateDelta{Messages: messages}, []string{NodeStateUpdater}, nil
}

// recordToolExecution is a no-op when e.metrics is nil.
func (e *GraphEngine) recordToolExecution(toolName string, isError bool, duration time.Duration) {
	if e.metrics == nil {
		return
	}
	risk := "unknown"
	if descriptor, ok := e.registry.Get(toolName); ok {
		risk = string(descriptor.Risk)
	}
	status := "success"
	if isError {
		status = "error"
		e.metrics.RecordError("tool", toolName)
	}
	e.metrics.RecordToolExecution(toolName, risk, status, duration.Seconds())
}

// runStateUpdater scans the last roleSwitchLookback messages for a
// role-switch sentinel and emits a CurrentRole delta when one names a
// different role than the one already active (spec §4.4, §6).
func (e *GraphEngine) runStateUpdater(state *models.AgentState) (checkpoint.StateDelta, []string, error) {
	for _, m := range recentToolMessages(state.Messages, roleSwitchLookback) {
		role, ok := ParseRoleSwitch(m.Content)
		if !ok {
			continue
		}
		if models.AgentRole(role) != state.CurrentRole {
			return checkpoint.StateDelta{CurrentRole: models.AgentRole(role)}, []string{NodeChatbot}, nil
		}
	}
	return checkpoint.StateDelta{}, []string{NodeChatbot}, nil
}

func (e *GraphEngine) buildSystemPrompt(state *models.AgentState) string {
	var b strings.Builder
	b.WriteString(e.persona)
	fmt.Fprintf(&b, "\n\nInteraction mode: %s. Active role: %s.\n", state.InteractionMode, state.CurrentRole)
	if e.registry != nil {
		descriptors := e.registry.List()
		if len(descriptors) > 0 {
			b.WriteString("\nAvailable tools:\n")
			for _, d := range descriptors {
				fmt.Fprintf(&b, "- %s (%s): %s\n", d.Name, d.Risk, d.Description)
			}
		}
	}
	return b.String()
}

func (e *GraphEngine) toolsForLLM() []Tool {
	if e.registry == nil {
		return nil
	}
	descriptors := e.registry.List()
	tools := make([]Tool, 0, len(descriptors))
	for _, d := range descriptors {
		tools = append(tools, d.Tool)
	}
	return tools
}

func toCompletionMessages(log []*models.Message) []CompletionMessage {
	out := make([]CompletionMessage, 0, len(log))
	for _, m := range log {
		switch m.Role {
		case models.RoleUser:
			out = append(out, CompletionMessage{Role: "user", Content: m.Content, Attachments: m.Attachments})
		case models.RoleAssistant:
			out = append(out, CompletionMessage{Role: "assistant", Content: m.Content, ToolCalls: m.ToolCalls})
		case models.RoleTool:
			out = append(out, CompletionMessage{
				Role:        "tool",
				ToolResults: []models.ToolResult{{ToolCallID: m.ToolCallID, Content: m.Content, IsError: m.IsError}},
			})
		}
	}
	return out
}

func pendingCalls(log []*models.Message) []models.ToolCall {
	last := lastMessage(log)
	if last == nil || !last.HasToolCalls() {
		return nil
	}
	return append([]models.ToolCall(nil), last.ToolCalls...)
}

func lastMessage(log []*models.Message) *models.Message {
	if len(log) == 0 {
		return nil
	}
	return log[len(log)-1]
}

func lastAssistantText(log []*models.Message) string {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Role == models.RoleAssistant {
			return log[i].Content
		}
	}
	return ""
}

func recentToolMessages(log []*models.Message, n int) []*models.Message {
	start := len(log) - n
	if start < 0 {
		start = 0
	}
	var out []*models.Message
	for _, m := range log[start:] {
		if m.Role == models.RoleTool {
			out = append(out, m)
		}
	}
	return out
}
