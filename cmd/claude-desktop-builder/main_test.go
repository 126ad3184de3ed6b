package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude-linux/claude-desktop-builder/internal/pipeline"
)

func resetFlagState(t *testing.T) {
	t.Helper()
	origConfig, origLevel, origWork := configPath, logLevel, workDir
	origKeep, origArchive, origSign := keepWorkDir, archiveWorkDir, signKeyPath
	t.Cleanup(func() {
		configPath, logLevel, workDir = origConfig, origLevel, origWork
		keepWorkDir, archiveWorkDir, signKeyPath = origKeep, origArchive, origSign
	})
	configPath, logLevel, workDir = "", "", ""
	keepWorkDir, archiveWorkDir, signKeyPath = false, false, ""
}

func TestResolveRequestedLogLevel(t *testing.T) {
	resetFlagState(t)

	root := createRootCommand()
	// Cobra merges persistent flags into Flags() only when parsing; force
	// the merge so --verbose is visible without executing the command.
	root.LocalFlags()
	if got := resolveRequestedLogLevel(root); got != "" {
		t.Errorf("default level = %q, want empty", got)
	}

	if err := root.Flags().Set("verbose", "true"); err != nil {
		t.Fatal(err)
	}
	if got := resolveRequestedLogLevel(root); got != "debug" {
		t.Errorf("verbose level = %q, want debug", got)
	}

	logLevel = "warn"
	if got := resolveRequestedLogLevel(root); got != "warn" {
		t.Errorf("explicit flag should win over verbose, got %q", got)
	}
}

func TestVersionCommand(t *testing.T) {
	resetFlagState(t)

	root := createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	want := "claude-desktop " + pipeline.Version + "\n"
	if out.String() != want {
		t.Errorf("version output = %q, want %q", out.String(), want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	resetFlagState(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.WorkDir != "build" {
		t.Errorf("workDir = %s, want build", cfg.WorkDir)
	}
	if cfg.KeepWorkDir || cfg.ArchiveWorkDir || cfg.SignKeyPath != "" {
		t.Error("flag-only knobs should default to off")
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	resetFlagState(t)

	path := filepath.Join(t.TempDir(), "builder.yaml")
	if err := os.WriteFile(path, []byte("workDir: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	configPath = path
	workDir = "from-flag"
	keepWorkDir = true
	signKeyPath = "/etc/keys/packager.asc"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.WorkDir != "from-flag" {
		t.Errorf("--work-dir should override the config file, got %s", cfg.WorkDir)
	}
	if !cfg.KeepWorkDir {
		t.Error("--keep-workdir not propagated")
	}
	if cfg.SignKeyPath != "/etc/keys/packager.asc" {
		t.Errorf("--sign-key not propagated, got %s", cfg.SignKeyPath)
	}
}

func TestLoadConfigInvalidFile(t *testing.T) {
	resetFlagState(t)

	path := filepath.Join(t.TempDir(), "builder.yaml")
	if err := os.WriteFile(path, []byte("unknownField: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	configPath = path

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for invalid config file")
	} else if !strings.Contains(err.Error(), "validation") {
		t.Errorf("expected a validation error, got: %v", err)
	}
}
