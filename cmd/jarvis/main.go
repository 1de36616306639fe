// Package main is the CLI entry point for Jarvis, a personal AI assistant
// built on a three-node chatbot/tools/state_updater graph with durable,
// resumable turns and a human-in-the-loop safety gate in front of
// dangerous tool calls.
//
// # Basic usage
//
//	jarvis chat --config jarvis.yaml
//	jarvis chat --role coder --disable-safety
//
// The core engine has no CLI of its own (spec §6: "the core itself has no
// CLI") - everything in this package is driver plumbing: config loading,
// workspace bootstrap, tool wiring, and the stdin/stdout turn loop.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jarvisai/jarvis/internal/agent"
	"github.com/jarvisai/jarvis/internal/checkpoint"
	"github.com/jarvisai/jarvis/internal/config"
	"github.com/jarvisai/jarvis/internal/memory/backend/sqlitevec"
	"github.com/jarvisai/jarvis/internal/memory/profile"
	"github.com/jarvisai/jarvis/internal/observability"
	"github.com/jarvisai/jarvis/internal/tools/browser"
	"github.com/jarvisai/jarvis/internal/tools/exec"
	"github.com/jarvisai/jarvis/internal/tools/jarvis"
	"github.com/jarvisai/jarvis/internal/workspace"
	"github.com/jarvisai/jarvis/pkg/models"
	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Configure structured logging up front, same as the teacher's driver;
	// buildChatCmd's RunE reconfigures the level/format once the config
	// file (which names the desired level) has been loaded.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "jarvis",
		Short:        "Jarvis - a personal AI assistant",
		Long:         "Jarvis runs a chatbot/tools/state_updater agent loop over a durable checkpoint log, gating dangerous tool calls behind a consent prompt.",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.AddCommand(buildChatCmd())
	rootCmd.AddCommand(buildModelsCmd())
	return rootCmd
}

// buildModelsCmd lists the model catalogue available to a role's bound
// provider - the real, account-scoped list for providers that support
// discovery (Bedrock's ListFoundationModels), the static fallback list
// otherwise.
func buildModelsCmd() *cobra.Command {
	var configPath, role string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available models for a role's provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			factory := agent.NewLLMFactory(cfg, slog.Default())
			list, err := factory.ModelsFor(cmd.Context(), roleFromString(role))
			if err != nil {
				return fmt.Errorf("list models for role %q: %w", role, err)
			}
			for _, m := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tcontext=%d\tvision=%t\n", m.ID, m.Name, m.ContextSize, m.SupportsVision)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "jarvis.yaml", "path to the YAML config file")
	cmd.Flags().StringVar(&role, "role", "default", "role whose bound provider to query: default|smart|coder|fast|vision")
	return cmd
}

// chatOptions holds buildChatCmd's flag values.
type chatOptions struct {
	configPath    string
	mode          string
	mute          bool
	disableSafety bool
	startRole     string
	threadID      string
}

// buildChatCmd is the driver's one real subcommand: loads config, bootstraps
// the workspace, wires the ten tools and the graph engine, and drives turns
// from stdin until EOF or SIGINT (spec §6 "CLI surface of the driver").
func buildChatCmd() *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session with Jarvis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "jarvis.yaml", "path to the YAML config file")
	cmd.Flags().StringVar(&opts.mode, "mode", "text", "driver I/O channel: text|voice (voice is an external collaborator per spec §1 - treated as text here)")
	cmd.Flags().BoolVar(&opts.mute, "mute", false, "suppress text-to-speech relay of assistant output (no-op in this text-only driver)")
	cmd.Flags().BoolVar(&opts.disableSafety, "disable-safety", false, "skip the break-before-tools consent gate; dangerous tools run unattended")
	cmd.Flags().StringVar(&opts.startRole, "role", "default", "starting role: default|smart|coder|fast|vision")
	cmd.Flags().StringVar(&opts.threadID, "thread", "cli", "checkpoint thread id to resume or start")
	return cmd
}

func runChat(cmd *cobra.Command, opts *chatOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := buildLogger(cfg.Logging)
	slog.SetDefault(logger)

	mode := models.InteractionText
	if strings.EqualFold(opts.mode, "voice") {
		mode = models.InteractionVoice
	}

	ws, err := bootstrapWorkspace(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap workspace: %w", err)
	}

	registry := agent.NewToolRegistry()
	deps := buildToolDependencies(cfg, logger)
	jarvis.RegisterAll(registry, deps)

	factory := agent.NewLLMFactory(cfg, logger)
	executor := agent.NewExecutor(registry, agent.DefaultExecutorConfig())

	checkpointer, err := buildCheckpointer(cfg.Checkpoint)
	if err != nil {
		return fmt.Errorf("build checkpointer: %w", err)
	}
	if closer, ok := checkpointer.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	metrics := observability.NewMetrics()
	if sqliteCheckpointer, ok := checkpointer.(interface {
		SetMetrics(*observability.Metrics)
	}); ok {
		sqliteCheckpointer.SetMetrics(metrics)
	}

	persona := defaultPersonaFor(ws)
	engine := agent.NewGraphEngine(agent.EngineConfig{
		Checkpointer:  checkpointer,
		Registry:      registry,
		Factory:       factory,
		Executor:      executor,
		Persona:       persona,
		Flavour:       agent.FlavourLenient,
		MaxHistory:    cfg.MaxHistoryMessages,
		DisableSafety: opts.disableSafety,
		ResultGuard:   agent.ToolResultGuard{Enabled: true, SanitizeSecrets: true},
		Metrics:       metrics,
	})

	obsLogger := observability.NewLogger(observability.LogConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	asker := stdinConsentAsker(obsLogger)
	safety := agent.NewSafetyInterceptor(registry, asker, true)

	if err := seedStartingRole(ctx, checkpointer, opts.threadID, mode, opts.startRole); err != nil {
		return fmt.Errorf("seed starting role: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "jarvis ready (role=%s, thread=%s). Type a message, or Ctrl+D to quit.\n", opts.startRole, opts.threadID)
	return chatLoop(ctx, cmd, engine, safety, opts.threadID, mode)
}

// seedStartingRole pre-creates threadID's checkpoint with role as
// CurrentRole, when the thread does not already exist. GraphEngine's own
// ensureThread only ever seeds AgentRoleDefault, so a non-default --role
// flag (spec §6: "preselect a starting role") has to land in the
// checkpoint before the first StartTurn call finds it missing.
func seedStartingRole(ctx context.Context, checkpointer checkpoint.Checkpointer, threadID string, mode models.InteractionMode, role string) error {
	if _, err := checkpointer.GetLatest(ctx, threadID); err == nil {
		return nil
	} else if !errors.Is(err, checkpoint.ErrNotFound) {
		return err
	}

	state := models.NewAgentState(mode)
	state.CurrentRole = roleFromString(role)
	_, err := checkpointer.Put(ctx, threadID, state, nil)
	return err
}

func roleFromString(s string) models.AgentRole {
	switch strings.ToLower(s) {
	case "smart":
		return models.AgentRoleSmart
	case "coder":
		return models.AgentRoleCoder
	case "fast":
		return models.AgentRoleFast
	case "vision":
		return models.AgentRoleVision
	default:
		return models.AgentRoleDefault
	}
}

// chatLoop reads one line of user input at a time, drives it through the
// engine until quiescent, streams tokens to stdout, and lets the
// SafetyInterceptor resolve any suspension before reading the next line
// (spec §4.7: StartTurn/Resume/RejectAndResume driven to completion).
func chatLoop(ctx context.Context, cmd *cobra.Command, engine *agent.GraphEngine, safety *agent.SafetyInterceptor, threadID string, mode models.InteractionMode) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		handle := engine.StartTurn(ctx, threadID, line, mode)
		outcome := relayAndResolve(ctx, out, engine, safety, threadID, handle)
		if outcome == nil {
			continue
		}
		if outcome.Kind == agent.TurnFailed {
			fmt.Fprintf(out, "[error] %v\n", outcome.Err)
		}
	}
}

// relayAndResolve streams one handle's tokens to out, then - if the turn
// suspended at `tools` - hands it to the SafetyInterceptor and repeats until
// the thread reaches Finished or Failed (spec §4.5/§4.7).
func relayAndResolve(ctx context.Context, out interface{ Write([]byte) (int, error) }, engine *agent.GraphEngine, safety *agent.SafetyInterceptor, threadID string, handle *agent.TurnHandle) *agent.TurnOutcome {
	for {
		for tok := range handle.Stream() {
			fmt.Fprint(out, tok)
		}
		outcome := handle.Wait()
		fmt.Fprintln(out)
		if outcome.Kind != agent.TurnSuspended {
			return outcome
		}
		handle = safety.Handle(ctx, engine, threadID, outcome.PendingToolCalls)
	}
}

// stdinConsentAsker builds the ConsentAsker spec §4.5 step 4 requires,
// reading the host's approve/reject response from stdin. Grounded on the
// teacher's terminal-prompt pattern in cmd/nexus's interactive commands.
// Uses observability.Logger rather than the bare *slog.Logger the engine
// takes, so the tool-call arguments named in the prompt pass through its
// secret-redaction before they ever hit a log line.
func stdinConsentAsker(logger *observability.Logger) agent.ConsentAsker {
	reader := bufio.NewReader(os.Stdin)
	return func(ctx context.Context, calls []models.ToolCall) (string, error) {
		names := make([]string, 0, len(calls))
		for _, c := range calls {
			names = append(names, fmt.Sprintf("%s(%s)", c.Name, string(c.Input)))
		}
		logger.Info(ctx, "awaiting consent for pending tool calls", "calls", strings.Join(names, ", "))
		fmt.Printf("\n[safety] about to run: %s - allow? (yes/no) ", strings.Join(names, ", "))
		line, err := reader.ReadString('\n')
		if err != nil {
			logger.Warn(ctx, "consent read failed, treating as rejection", "error", err.Error())
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}

// buildLogger constructs the process-wide slog.Logger from the config's
// LoggingConfig (spec's ambient logging section), matching the teacher's
// JSON-on-stderr default with a plain-text fallback for local/dev use.
func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	level := new(slog.LevelVar)
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// bootstrapWorkspace ensures the persona/profile files the spec's
// workspace-backed tools and system prompt expect exist, then loads them.
func bootstrapWorkspace(cfg *config.Config) (*workspace.WorkspaceContext, error) {
	if _, err := workspace.EnsureWorkspaceFiles(cfg.Workspace.Path, workspace.BootstrapFilesForConfig(cfg), false); err != nil {
		return nil, err
	}
	return workspace.LoadWorkspace(workspace.LoaderConfigFromConfig(cfg))
}

// defaultPersonaFor renders the system prompt seed from the loaded
// workspace context, falling back to the engine's own generic persona if
// the workspace carries nothing meaningful yet (fresh install).
func defaultPersonaFor(ws *workspace.WorkspaceContext) string {
	ctx := ws.SystemPromptContext()
	if strings.TrimSpace(ctx) == "" {
		return ""
	}
	return ctx
}

// buildToolDependencies wires the peripheral, non-portable seams
// (screen capture, system control) to their no-op defaults and constructs
// the exec manager / browser pool / knowledge store from config, leaving
// BrowserPool nil (so browser_navigate is skipped) when pool construction
// fails - same "best-effort optional tool" shape as RegisterAll already
// assumes for nil ExecManager/KnowledgeStore.
func buildToolDependencies(cfg *config.Config, logger *slog.Logger) jarvis.Dependencies {
	deps := jarvis.Dependencies{
		Workspace:      cfg.Workspace.Path,
		ExecManager:    exec.NewManager(cfg.Workspace.Path),
		ProfileStore:   buildProfileStore(cfg, logger),
		ScreenCapturer: jarvis.NoopScreenCapturer{},
		SystemBackend:  jarvis.NoopSystemControlBackend{},
	}

	pool, err := browser.NewPool(browser.PoolConfig{Timeout: cfg.BrowserTaskTimeout})
	if err != nil {
		logger.Warn("browser pool unavailable, browser_navigate disabled", "error", err)
	} else {
		deps.BrowserPool = pool
	}

	store, err := sqlitevec.New(sqlitevec.Config{Path: cfg.Workspace.Path + "/knowledge.db", Dimension: jarvis.KnowledgeEmbeddingDim})
	if err != nil {
		logger.Warn("knowledge store unavailable, knowledge_query/knowledge_ingest disabled", "error", err)
	} else {
		deps.KnowledgeStore = store
	}

	return deps
}

// buildProfileStore opens memory_operation's durable profile database under
// the workspace root. Unlike the browser pool and knowledge store,
// memory_operation is one of the fixed five safe tools RegisterAll always
// registers, so this falls back to an in-memory store (which modernc.org/
// sqlite's driver cannot fail to open) rather than leaving the tool
// unregistered on a file-open error.
func buildProfileStore(cfg *config.Config, logger *slog.Logger) *profile.Store {
	store, err := profile.New(cfg.Workspace.Path + "/profile.db")
	if err != nil {
		logger.Warn("profile database unavailable, falling back to an in-memory profile store", "error", err)
		store, err = profile.New(":memory:")
		if err != nil {
			panic(fmt.Sprintf("profile: in-memory store open failed: %v", err))
		}
	}
	return store
}

// buildCheckpointer selects the durable backend per cfg.Checkpoint.Backend
// (spec §4.6): "memory" or "sqlite".
func buildCheckpointer(cfg config.CheckpointConfig) (checkpoint.Checkpointer, error) {
	switch strings.ToLower(cfg.Backend) {
	case "sqlite":
		return checkpoint.NewSQLiteCheckpointer(checkpoint.SQLiteConfig{Path: cfg.Path}, agent.MergeMessages)
	default:
		return checkpoint.NewMemoryCheckpointer(agent.MergeMessages), nil
	}
}
