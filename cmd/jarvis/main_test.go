package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jarvisai/jarvis/internal/config"
	"github.com/jarvisai/jarvis/pkg/models"
)

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{"chat", "models"}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestBuildChatCmd_FlagDefaults(t *testing.T) {
	cmd := buildChatCmd()

	defaults := map[string]string{
		"config":         "jarvis.yaml",
		"mode":           "text",
		"role":           "default",
		"thread":         "cli",
		"mute":           "false",
		"disable-safety": "false",
	}
	for name, want := range defaults {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Fatalf("flag %q not registered", name)
		}
		if f.DefValue != want {
			t.Errorf("flag %q default = %q, want %q", name, f.DefValue, want)
		}
	}
}

func TestRoleFromString(t *testing.T) {
	cases := map[string]models.AgentRole{
		"smart":  models.AgentRoleSmart,
		"Coder":  models.AgentRoleCoder,
		"FAST":   models.AgentRoleFast,
		"vision": models.AgentRoleVision,
		"":       models.AgentRoleDefault,
		"bogus":  models.AgentRoleDefault,
	}
	for in, want := range cases {
		if got := roleFromString(in); got != want {
			t.Errorf("roleFromString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildLogger_LevelAndFormat(t *testing.T) {
	logger := buildLogger(config.LoggingConfig{Level: "debug", Format: "text"})
	if logger == nil {
		t.Fatal("buildLogger returned nil")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug level to be enabled")
	}

	warnLogger := buildLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	if warnLogger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info level to be disabled under a warn logger")
	}
}
