package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
roles:
  default:
    provider: anthropic
    model: claude-sonnet-4
    credential: ${TEST_ANTHROPIC_KEY}
`)
	os.Setenv("TEST_ANTHROPIC_KEY", "sk-ant-test")
	defer os.Unsetenv("TEST_ANTHROPIC_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MaxHistoryMessages != 30 {
		t.Errorf("MaxHistoryMessages = %d, want 30", cfg.MaxHistoryMessages)
	}
	if cfg.BrowserTaskTimeout != 120*time.Second {
		t.Errorf("BrowserTaskTimeout = %v, want 120s", cfg.BrowserTaskTimeout)
	}
	if cfg.Checkpoint.Backend != "memory" {
		t.Errorf("Checkpoint.Backend = %q, want memory", cfg.Checkpoint.Backend)
	}
	if cfg.Roles.Default.Credential != "sk-ant-test" {
		t.Errorf("Roles.Default.Credential = %q, want expanded env var", cfg.Roles.Default.Credential)
	}
	if cfg.Roles.Default.Timeout != 120*time.Second {
		t.Errorf("Roles.Default.Timeout = %v, want 120s", cfg.Roles.Default.Timeout)
	}
}

func TestLoad_ExplicitValuesSurvive(t *testing.T) {
	path := writeTempConfig(t, `
max_history_messages: 12
browser_task_timeout: 45s
checkpoint:
  backend: sqlite
  path: /tmp/jarvis.db
logging:
  level: debug
  format: json
roles:
  default:
    provider: anthropic
    model: claude-sonnet-4
  coder:
    provider: ollama
    model: qwen2.5-coder
    endpoint: http://localhost:11434
    timeout: 30s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MaxHistoryMessages != 12 {
		t.Errorf("MaxHistoryMessages = %d, want 12", cfg.MaxHistoryMessages)
	}
	if cfg.BrowserTaskTimeout != 45*time.Second {
		t.Errorf("BrowserTaskTimeout = %v, want 45s", cfg.BrowserTaskTimeout)
	}
	if cfg.Checkpoint.Backend != "sqlite" || cfg.Checkpoint.Path != "/tmp/jarvis.db" {
		t.Errorf("Checkpoint = %+v, want sqlite at /tmp/jarvis.db", cfg.Checkpoint)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if cfg.Roles.Coder.Timeout != 30*time.Second {
		t.Errorf("Roles.Coder.Timeout = %v, want 30s", cfg.Roles.Coder.Timeout)
	}
}

func TestLoad_UnknownFieldIsRejected(t *testing.T) {
	path := writeTempConfig(t, `
roles:
  default:
    provider: anthropic
bogus_top_level_key: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown top-level field")
	}
}

func TestLoad_MissingPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConfig_RoleConfig_FallsBackToDefaultForUnknownRole(t *testing.T) {
	cfg := &Config{Roles: RoleTable{
		Default: RoleConfig{Provider: "anthropic", Model: "claude-sonnet-4"},
		Vision:  RoleConfig{Provider: "anthropic", Model: "claude-sonnet-4-vision"},
	}}
	if got := cfg.RoleConfig("vision"); got.Model != "claude-sonnet-4-vision" {
		t.Errorf("RoleConfig(vision).Model = %q, want claude-sonnet-4-vision", got.Model)
	}
	if got := cfg.RoleConfig("not-a-real-role"); got.Model != "claude-sonnet-4" {
		t.Errorf("RoleConfig(unknown).Model = %q, want default fallback", got.Model)
	}
}

func TestRoleConfig_HasCredential(t *testing.T) {
	tests := []struct {
		name string
		cfg  RoleConfig
		want bool
	}{
		{"anthropic with key", RoleConfig{Provider: "anthropic", Credential: "sk-ant-x"}, true},
		{"anthropic without key", RoleConfig{Provider: "anthropic"}, false},
		{"ollama without key", RoleConfig{Provider: "ollama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HasCredential(); got != tt.want {
				t.Errorf("HasCredential() = %v, want %v", got, tt.want)
			}
		})
	}
}
