package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// defaultToolTimeout and maxToolTimeout are spec §5's per-tool-call deadline
// bounds: "executed with a per-call deadline supplied by the descriptor
// (default 60s, up to 600s)".
const (
	defaultToolTimeout = 60 * time.Second
	maxToolTimeout     = 600 * time.Second
)

// Risk is the engine's only tool classification (spec §3/§4.2). The engine
// must never infer risk from a tool's name - it is always carried on the
// descriptor.
type Risk string

const (
	RiskSafe      Risk = "safe"
	RiskDangerous Risk = "dangerous"
)

// ToolDescriptor is the registry's unit of registration: a name, prose for
// the LLM, a JSON Schema for argument validation/advertisement, a risk
// class, and the tool implementation itself (spec §3 ToolDescriptor).
type ToolDescriptor struct {
	Name        string
	Description string
	Risk        Risk
	Tool        Tool

	// Timeout is this tool's per-call deadline (spec §5). Zero means the
	// registry default (defaultToolTimeout); set via SetTimeout, clamped to
	// maxToolTimeout.
	Timeout time.Duration
}

// SchemaEntry is one element of a schema_bundle() result: the shape an LLM
// provider expects for a single advertised function (spec §4.2).
type SchemaEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolRegistry holds all tool descriptors, populated once at construction
// and immutable thereafter (spec §4.2). It is the component the Executor
// dispatches tool calls through.
type ToolRegistry struct {
	mu      sync.RWMutex
	tools   map[string]*ToolDescriptor
	schemas map[string]*jsonschema.Schema
}

// NewToolRegistry returns an empty registry. Register each tool before first
// use; the registry is read concurrently by the engine/executor once
// construction is complete.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools:   make(map[string]*ToolDescriptor),
		schemas: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a tool to the registry with risk class RiskSafe. Use
// RegisterWithRisk to register a tool under spec §6's fixed risk table; this
// shorter form exists for call sites (and tests) that only care about
// dispatch, not safety gating.
func (r *ToolRegistry) Register(t Tool) {
	r.RegisterWithRisk(t, RiskSafe)
}

// RegisterWithRisk adds a tool to the registry under the given risk class,
// compiling its declared JSON Schema up front so argument validation never
// pays compilation cost on the hot path. It panics on a schema that fails to
// compile or a duplicate name - both are construction-time programmer
// errors, not runtime conditions (the registry is populated once by
// iterating a static descriptor list per spec §4.2).
func (r *ToolRegistry) RegisterWithRisk(t Tool, risk Risk) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool_registry: duplicate tool name %q", name))
	}

	schema := stripTitle(t.Schema())
	if len(schema) == 0 {
		schema = json.RawMessage(`{"type":"object"}`)
	}
	compiled, err := jsonschema.CompileString(name+".schema.json", string(schema))
	if err != nil {
		panic(fmt.Sprintf("tool_registry: tool %q has invalid schema: %v", name, err))
	}

	r.tools[name] = &ToolDescriptor{
		Name:        name,
		Description: t.Description(),
		Risk:        risk,
		Tool:        t,
	}
	r.schemas[name] = compiled
}

// SetTimeout overrides a registered tool's per-call deadline (spec §5),
// clamped to maxToolTimeout. A no-op if name is not registered. Called from
// RegisterAll for tools whose typical runtime exceeds the 60s default
// (browser navigation, shell/python execution, knowledge ingestion).
func (r *ToolRegistry) SetTimeout(name string, timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.tools[name]
	if !ok {
		return
	}
	if timeout > maxToolTimeout {
		timeout = maxToolTimeout
	}
	d.Timeout = timeout
}

// List returns all descriptors, sorted by name for deterministic iteration
// (schema bundles sent to an LLM provider should not reorder between calls).
func (r *ToolRegistry) List() []*ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ToolDescriptor, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the descriptor for name, or (nil, false) if unregistered.
func (r *ToolRegistry) Get(name string) (*ToolDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// SchemaBundle returns the JSON-Schema fragments the bound chat model needs
// to emit well-formed tool calls (spec §4.2): one {name, description,
// parameters} entry per registered tool, sub-definitions inlined (each
// tool's Schema() is already a single self-contained document - no $ref
// expansion is needed here, only stripping the provider-hostile top-level
// "title" key) and no external $ref.
func (r *ToolRegistry) SchemaBundle() []SchemaEntry {
	descriptors := r.List()
	bundle := make([]SchemaEntry, 0, len(descriptors))
	for _, d := range descriptors {
		bundle = append(bundle, SchemaEntry{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  stripTitle(d.Tool.Schema()),
		})
	}
	return bundle
}

// Execute validates input against the tool's declared schema and, if valid,
// invokes it. Validation failures are returned as a *ToolResult with
// IsError=true rather than as a Go error: per spec §4.2/§7 a
// ToolArgumentInvalid is synthesised as a tool-result message so the LLM can
// self-correct, never raised to the engine. An unknown tool name is the one
// case that does return a Go error-shaped ToolResult as well, for the same
// reason (ToolNotFound, spec §7).
func (r *ToolRegistry) Execute(ctx context.Context, name string, input json.RawMessage) (*ToolResult, error) {
	r.mu.RLock()
	descriptor, ok := r.tools[name]
	schema := r.schemas[name]
	r.mu.RUnlock()

	if !ok {
		return &ToolResult{
			Content: fmt.Sprintf("tool %q is not registered", name),
			IsError: true,
		}, nil
	}

	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	var decoded any
	if err := json.Unmarshal(input, &decoded); err != nil {
		return &ToolResult{
			Content: fmt.Sprintf("invalid arguments for tool %q: not valid JSON: %v", name, err),
			IsError: true,
		}, nil
	}

	if err := schema.Validate(decoded); err != nil {
		return &ToolResult{
			Content: fmt.Sprintf("invalid arguments for tool %q: %v", name, err),
			IsError: true,
		}, nil
	}

	return descriptor.Tool.Execute(ctx, input)
}

// stripTitle removes the top-level "title" key from a JSON Schema document.
// Some provider-side tool-call validators reject or warn on schema
// decorations they don't recognise; "title" is the one the teacher's own
// tool schemas never emit, and spec §4.2 calls it out explicitly.
func stripTitle(schema json.RawMessage) json.RawMessage {
	if len(schema) == 0 {
		return schema
	}
	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(schema, &asMap); err != nil {
		return schema
	}
	if _, ok := asMap["title"]; !ok {
		return schema
	}
	delete(asMap, "title")
	out, err := json.Marshal(asMap)
	if err != nil {
		return schema
	}
	return out
}
