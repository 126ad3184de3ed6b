package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

func TestInstallerInvokes7z(t *testing.T) {
	var recorded []string
	original := shell.ExecCmd
	shell.ExecCmd = func(cmdStr string, workDir string, envVal []string) (string, error) {
		recorded = append(recorded, cmdStr)
		return "", nil
	}
	t.Cleanup(func() { shell.ExecCmd = original })

	workDir := t.TempDir()
	if err := Installer(filepath.Join(workDir, "Claude-Setup-x64.exe"), workDir); err != nil {
		t.Fatalf("Installer failed: %v", err)
	}
	if len(recorded) != 1 || !strings.HasPrefix(recorded[0], "7z x -y ") {
		t.Errorf("unexpected extraction command: %v", recorded)
	}
}

func TestInstallerToolFailure(t *testing.T) {
	original := shell.ExecCmd
	shell.ExecCmd = func(cmdStr string, workDir string, envVal []string) (string, error) {
		return "corrupt archive", fmt.Errorf("exit status 2")
	}
	t.Cleanup(func() { shell.ExecCmd = original })

	err := Installer("/tmp/installer.exe", t.TempDir())
	if !errors.Is(err, ErrInstallerExtractionFailed) {
		t.Fatalf("expected ErrInstallerExtractionFailed, got %v", err)
	}
}

func TestNupkgName(t *testing.T) {
	if got := NupkgName("0.8.0"); got != "AnthropicClaude-0.8.0-full.nupkg" {
		t.Errorf("NupkgName returned %s", got)
	}
}

func TestNupkgMissingArchive(t *testing.T) {
	original := shell.ExecCmd
	shell.ExecCmd = func(cmdStr string, workDir string, envVal []string) (string, error) {
		t.Fatalf("7z should not run when the nupkg is absent, got: %s", cmdStr)
		return "", nil
	}
	t.Cleanup(func() { shell.ExecCmd = original })

	err := Nupkg(t.TempDir(), "0.8.0")
	if !errors.Is(err, ErrNupkgExtractionFailed) {
		t.Fatalf("expected ErrNupkgExtractionFailed, got %v", err)
	}
}

func TestNupkgExtraction(t *testing.T) {
	workDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workDir, NupkgName("0.8.0")), []byte("zip"), 0644); err != nil {
		t.Fatal(err)
	}

	original := shell.ExecCmd
	shell.ExecCmd = func(cmdStr string, dir string, envVal []string) (string, error) {
		if !strings.HasPrefix(cmdStr, "7z x -y ") {
			t.Fatalf("unexpected command: %s", cmdStr)
		}
		// Simulate the vendor layout appearing after extraction.
		if err := os.MkdirAll(filepath.Join(dir, "lib", "net45"), 0755); err != nil {
			t.Fatal(err)
		}
		return "", nil
	}
	t.Cleanup(func() { shell.ExecCmd = original })

	if err := Nupkg(workDir, "0.8.0"); err != nil {
		t.Fatalf("Nupkg failed: %v", err)
	}
}

func TestNupkgMissingVendorLayout(t *testing.T) {
	workDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workDir, NupkgName("0.8.0")), []byte("zip"), 0644); err != nil {
		t.Fatal(err)
	}

	original := shell.ExecCmd
	shell.ExecCmd = func(cmdStr string, dir string, envVal []string) (string, error) {
		return "", nil
	}
	t.Cleanup(func() { shell.ExecCmd = original })

	err := Nupkg(workDir, "0.8.0")
	if !errors.Is(err, ErrNupkgExtractionFailed) {
		t.Fatalf("expected ErrNupkgExtractionFailed for missing lib/net45, got %v", err)
	}
}
