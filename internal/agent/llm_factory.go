package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/jarvisai/jarvis/internal/agent/providers"
	"github.com/jarvisai/jarvis/internal/config"
	"github.com/jarvisai/jarvis/pkg/models"
)

// defaultTemperature is applied when a role's request does not override it
// (spec §4.3: "temperature default 0.7").
const defaultTemperature = 0.7

// LLMFactory is "role name -> bound chat model" (spec §4.3): a pure
// dispatcher over the provider adapters kept from the teacher
// (internal/agent/providers), generalized from teacher's multi-provider
// routing table to the spec's fixed five-role lookup.
type LLMFactory struct {
	cfg *config.Config
	log *slog.Logger

	mu    sync.Mutex
	built map[models.AgentRole]LLMProvider
}

// NewLLMFactory builds a factory bound to cfg. Providers are constructed
// lazily on first Create call for a given role and cached.
func NewLLMFactory(cfg *config.Config, log *slog.Logger) *LLMFactory {
	if log == nil {
		log = slog.Default()
	}
	return &LLMFactory{
		cfg:   cfg,
		log:   log,
		built: make(map[models.AgentRole]LLMProvider),
	}
}

// BoundChat is the opaque "(messages) -> assistant_message" object the
// chatbot node invokes, with tool schemas already attached and a side
// channel for streamed tokens (spec §4.3).
type BoundChat struct {
	role                    models.AgentRole
	provider                LLMProvider
	model                   string
	timeout                 time.Duration
	preferLocalWithFallback bool
	factory                 *LLMFactory
}

// ProviderName returns the bound provider's name (e.g. "anthropic",
// "bedrock"), the metrics label engine.go's LLM-duration instrumentation
// uses.
func (b *BoundChat) ProviderName() string { return b.provider.Name() }

// Model returns the bound chat model's identifier, the metrics label
// paired with ProviderName.
func (b *BoundChat) Model() string { return b.model }

// Create resolves role to a bound chat model, applying the fallback chain
// spec §4.3 requires: unreachable local provider for coder/fast -> default
// (at invoke time, silently); missing credentials -> default (at bind
// time); default itself unusable -> ErrNoLLMAvailable, the only fatal
// configuration error in the core.
func (f *LLMFactory) Create(role models.AgentRole) (*BoundChat, error) {
	if !models.IsValidAgentRole(string(role)) {
		role = models.AgentRoleDefault
	}

	roleCfg := f.cfg.RoleConfig(string(role))
	if !roleCfg.HasCredential() {
		if role == models.AgentRoleDefault {
			return nil, fmt.Errorf("%w: default role provider %q lacks credentials", ErrNoLLMAvailable, roleCfg.Provider)
		}
		f.log.Warn("llm_factory: role provider lacks credentials, falling back to default", "role", role, "provider", roleCfg.Provider)
		return f.Create(models.AgentRoleDefault)
	}

	provider, err := f.providerFor(roleCfg)
	if err != nil {
		if role == models.AgentRoleDefault {
			return nil, fmt.Errorf("%w: %v", ErrNoLLMAvailable, err)
		}
		f.log.Warn("llm_factory: role provider failed to construct, falling back to default", "role", role, "error", err)
		return f.Create(models.AgentRoleDefault)
	}

	preferLocal := role == models.AgentRoleCoder || role == models.AgentRoleFast
	return &BoundChat{
		role:                    role,
		provider:                provider,
		model:                   roleCfg.Model,
		timeout:                 roleCfg.Timeout,
		preferLocalWithFallback: preferLocal,
		factory:                 f,
	}, nil
}

// ModelsFor returns role's available model catalogue, preferring a live
// ModelDiscoverer query (e.g. Bedrock's ListFoundationModels) over the
// provider's static Models() list, and falling back to the static list if
// discovery fails. Used by the CLI's `models` subcommand rather than the
// turn-driving path, since discovery is a network call with no place in
// the chatbot node's hot path.
func (f *LLMFactory) ModelsFor(ctx context.Context, role models.AgentRole) ([]Model, error) {
	if !models.IsValidAgentRole(string(role)) {
		role = models.AgentRoleDefault
	}
	roleCfg := f.cfg.RoleConfig(string(role))
	provider, err := f.providerFor(roleCfg)
	if err != nil {
		return nil, err
	}
	if discoverer, ok := provider.(ModelDiscoverer); ok {
		discovered, derr := discoverer.DiscoveredModels(ctx)
		if derr == nil {
			return discovered, nil
		}
		f.log.Warn("llm_factory: model discovery failed, falling back to static catalogue", "role", role, "error", derr)
	}
	return provider.Models(), nil
}

// providerFor constructs (or returns the cached) provider for a role
// config. Cached per-provider-kind so repeated Create calls for the same
// role reuse one client.
func (f *LLMFactory) providerFor(roleCfg config.RoleConfig) (LLMProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := models.AgentRole(roleCfg.Provider + "|" + roleCfg.Endpoint)
	if p, ok := f.built[key]; ok {
		return p, nil
	}

	var (
		p   LLMProvider
		err error
	)
	switch roleCfg.Provider {
	case "anthropic":
		p, err = providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:  roleCfg.Credential,
			BaseURL: roleCfg.Endpoint,
		})
	case "openai":
		p = providers.NewOpenAIProvider(roleCfg.Credential)
	case "ollama":
		p = providers.NewOllamaProvider(providers.OllamaConfig{
			BaseURL:      roleCfg.Endpoint,
			DefaultModel: roleCfg.Model,
			Timeout:      roleCfg.Timeout,
		})
	case "bedrock":
		p, err = providers.NewBedrockProvider(providers.BedrockConfig{
			Region:       roleCfg.Endpoint,
			DefaultModel: roleCfg.Model,
		})
	default:
		return nil, fmt.Errorf("llm_factory: unknown provider %q", roleCfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	f.built[key] = p
	return p, nil
}

// Invoke sends log (already sanitised and truncated by the chatbot node)
// plus tools to the bound provider, streaming text chunks into sink, and
// returns the assembled assistant Message. On a coder/fast role whose local
// provider is unreachable, it retries once against the default role's
// bound chat, logging but not surfacing the fallback to the LLM (spec
// §4.3: "Fallback is logged but not surfaced to the LLM").
func (b *BoundChat) Invoke(ctx context.Context, system string, log []CompletionMessage, tools []Tool, sink *TokenSink) (*models.Message, error) {
	timeout := b.timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chunks, err := b.provider.Complete(callCtx, &CompletionRequest{
		Model:       b.model,
		System:      system,
		Messages:    log,
		Tools:       tools,
		Temperature: defaultTemperature,
	})
	if err != nil {
		if b.preferLocalWithFallback && isUnreachable(err) && b.role != models.AgentRoleDefault {
			b.factory.log.Warn("llm_factory: local provider unreachable, falling back to default for this call", "role", b.role, "error", err)
			fallback, ferr := b.factory.Create(models.AgentRoleDefault)
			if ferr != nil {
				return nil, &LLMInvocationError{Role: string(b.role), Err: err}
			}
			return fallback.Invoke(ctx, system, log, tools, sink)
		}
		return nil, &LLMInvocationError{Role: string(b.role), Err: err}
	}

	return drainChunks(b.role, chunks, sink)
}

func drainChunks(role models.AgentRole, chunks <-chan *CompletionChunk, sink *TokenSink) (*models.Message, error) {
	var (
		text      string
		toolCalls []models.ToolCall
	)
	for chunk := range chunks {
		if chunk.Error != nil {
			return nil, &LLMInvocationError{Role: string(role), Err: chunk.Error}
		}
		if chunk.Text != "" {
			text += chunk.Text
			sink.Send(chunk.Text)
		}
		if chunk.ToolCall != nil {
			toolCalls = append(toolCalls, *chunk.ToolCall)
		}
	}
	return models.NewAssistantMessage("", text, toolCalls), nil
}

// isUnreachable reports whether err looks like "could not connect", the
// narrow condition spec §4.3 names for the coder/fast local-provider
// fallback (as opposed to an auth/validation failure, which does not
// trigger this fallback path).
func isUnreachable(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
