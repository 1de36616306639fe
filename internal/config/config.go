package config

import "time"

// Config is the root configuration for the core (spec §6/§4.3): a table of
// role -> (provider, model, endpoint_config) triples plus the handful of
// other settings the engine and checkpointer read directly. Everything else
// the spec marks driver-only (VAD_*, audio I/O, terminal rendering) lives
// outside this struct entirely - the core reads only the role entries and
// MaxHistoryMessages.
type Config struct {
	Roles RoleTable `yaml:"roles"`

	// MaxHistoryMessages is the MAX_HISTORY_MESSAGES environment entry (spec
	// §4.4): the chatbot node truncates the filtered log to this many
	// entries before each LLM call. Default 30.
	MaxHistoryMessages int `yaml:"max_history_messages"`

	// BrowserTaskTimeout bounds the browser_navigate tool's per-call
	// deadline (spec §6 tool table).
	BrowserTaskTimeout time.Duration `yaml:"browser_task_timeout"`

	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Logging    LoggingConfig    `yaml:"logging"`
	Workspace  WorkspaceConfig  `yaml:"workspace"`
}

// WorkspaceConfig points at the assistant's working directory and the
// persona/profile files `internal/workspace` loads from it (AGENTS.md,
// SOUL.md, USER.md, IDENTITY.md, TOOLS.md, MEMORY.md). Empty file names
// fall back to those defaults.
type WorkspaceConfig struct {
	Path         string `yaml:"path"`
	AgentsFile   string `yaml:"agents_file"`
	SoulFile     string `yaml:"soul_file"`
	UserFile     string `yaml:"user_file"`
	IdentityFile string `yaml:"identity_file"`
	ToolsFile    string `yaml:"tools_file"`
	MemoryFile   string `yaml:"memory_file"`
}

// RoleTable is one entry per role in the fixed five-role enum (spec §3).
type RoleTable struct {
	Default RoleConfig `yaml:"default"`
	Smart   RoleConfig `yaml:"smart"`
	Coder   RoleConfig `yaml:"coder"`
	Fast    RoleConfig `yaml:"fast"`
	Vision  RoleConfig `yaml:"vision"`
}

// RoleConfig is the "(provider, model, endpoint_config) triple" spec §4.3
// requires per role, plus the credential and timeout the LLMFactory needs to
// bind a provider without consulting anything else.
type RoleConfig struct {
	// Provider selects the provider adapter: "anthropic", "openai",
	// "ollama", or "bedrock".
	Provider string `yaml:"provider"`

	Model      string        `yaml:"model"`
	Endpoint   string        `yaml:"endpoint"`
	Credential string        `yaml:"credential"`
	Timeout    time.Duration `yaml:"timeout"`
}

// HasCredential reports whether this role's provider has enough to
// authenticate. Ollama endpoints are typically unauthenticated, so an empty
// credential there is not a missing-credential condition (spec §4.3: "a role
// whose configured provider lacks credentials falls back to default").
func (r RoleConfig) HasCredential() bool {
	if r.Provider == "ollama" {
		return true
	}
	return r.Credential != ""
}

// CheckpointConfig selects the durable Checkpointer backend (spec §4.6).
type CheckpointConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the SQLite database file path; ignored for the memory backend.
	Path string `yaml:"path"`
}

// LoggingConfig configures the slog handler (spec §ambient logging).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RoleConfig looks up the configured triple for role, falling back to the
// zero value (empty Provider) for any string outside the enum.
func (c *Config) RoleConfig(role string) RoleConfig {
	switch role {
	case "smart":
		return c.Roles.Smart
	case "coder":
		return c.Roles.Coder
	case "fast":
		return c.Roles.Fast
	case "vision":
		return c.Roles.Vision
	default:
		return c.Roles.Default
	}
}

func (c *Config) applyDefaults() {
	if c.MaxHistoryMessages <= 0 {
		c.MaxHistoryMessages = 30
	}
	if c.BrowserTaskTimeout <= 0 {
		c.BrowserTaskTimeout = 120 * time.Second
	}
	if c.Checkpoint.Backend == "" {
		c.Checkpoint.Backend = "memory"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	roles := []*RoleConfig{&c.Roles.Default, &c.Roles.Smart, &c.Roles.Coder, &c.Roles.Fast, &c.Roles.Vision}
	for _, r := range roles {
		if r.Timeout <= 0 {
			r.Timeout = 120 * time.Second
		}
	}
	if c.Roles.Default.Provider == "" {
		c.Roles.Default.Provider = "anthropic"
	}
	if c.Workspace.Path == "" {
		c.Workspace.Path = "."
	}
}
