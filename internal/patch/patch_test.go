package patch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

func writeVendorTree(t *testing.T) string {
	t.Helper()
	net45 := t.TempDir()
	resources := filepath.Join(net45, "resources")

	files := map[string]string{
		"app.asar":                        "original-archive",
		"app.asar.unpacked/native/lib.so": "binary",
		"TrayIconTemplate.png":            "tray",
		"TrayIconTemplate@2x.png":         "tray2x",
		"en-US.json":                      `{"hello": "world"}`,
		"de-DE.json":                      `{"hallo": "welt"}`,
		"bad-locale.json":                 `{not json`,
	}
	for rel, content := range files {
		path := filepath.Join(resources, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return net45
}

func fakeAsar(t *testing.T) *[]string {
	t.Helper()
	var recorded []string
	original := shell.ExecCmd
	shell.ExecCmd = func(cmdStr string, workDir string, envVal []string) (string, error) {
		recorded = append(recorded, cmdStr)
		switch {
		case strings.HasPrefix(cmdStr, "npx asar extract "):
			if err := os.MkdirAll(filepath.Join(workDir, asarContentsDir), 0755); err != nil {
				t.Fatal(err)
			}
			return "", nil
		case strings.HasPrefix(cmdStr, "npx asar pack "):
			if err := os.WriteFile(filepath.Join(workDir, "app.asar"), []byte("patched-archive"), 0644); err != nil {
				t.Fatal(err)
			}
			return "", nil
		default:
			t.Fatalf("unexpected command: %s", cmdStr)
			return "", nil
		}
	}
	t.Cleanup(func() { shell.ExecCmd = original })
	return &recorded
}

func TestRepack(t *testing.T) {
	net45 := writeVendorTree(t)
	electronDir := filepath.Join(t.TempDir(), "electron-app")
	recorded := fakeAsar(t)

	if err := Repack(net45, electronDir); err != nil {
		t.Fatalf("Repack failed: %v", err)
	}

	if len(*recorded) != 2 {
		t.Fatalf("expected extract and pack invocations, got %v", *recorded)
	}

	// Stub must be byte-identical in both install locations.
	locations := StubLocations(electronDir)
	first, err := os.ReadFile(locations[0])
	if err != nil {
		t.Fatalf("stub missing inside archive contents: %v", err)
	}
	second, err := os.ReadFile(locations[1])
	if err != nil {
		t.Fatalf("stub missing in unpacked tree: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("stub copies differ between install locations")
	}

	contents := filepath.Join(electronDir, asarContentsDir)
	for _, tray := range []string{"TrayIconTemplate.png", "TrayIconTemplate@2x.png"} {
		if _, err := os.Stat(filepath.Join(contents, "resources", tray)); err != nil {
			t.Errorf("tray asset %s not injected: %v", tray, err)
		}
	}
	for _, locale := range []string{"en-US.json", "de-DE.json"} {
		if _, err := os.Stat(filepath.Join(contents, "resources", "i18n", locale)); err != nil {
			t.Errorf("locale %s not injected: %v", locale, err)
		}
	}
	if _, err := os.Stat(filepath.Join(contents, "resources", "i18n", "bad-locale.json")); err == nil {
		t.Error("malformed locale resource should have been skipped")
	}

	if got, _ := os.ReadFile(filepath.Join(electronDir, "app.asar")); string(got) != "patched-archive" {
		t.Error("app.asar was not repacked")
	}
}

func TestRepackExtractFailure(t *testing.T) {
	net45 := writeVendorTree(t)

	original := shell.ExecCmd
	shell.ExecCmd = func(cmdStr string, workDir string, envVal []string) (string, error) {
		return "asar: not found", fmt.Errorf("exit status 127")
	}
	t.Cleanup(func() { shell.ExecCmd = original })

	err := Repack(net45, filepath.Join(t.TempDir(), "electron-app"))
	if !errors.Is(err, ErrRepackFailed) {
		t.Fatalf("expected ErrRepackFailed, got %v", err)
	}
}

func TestRepackMissingVendorArchive(t *testing.T) {
	err := Repack(t.TempDir(), filepath.Join(t.TempDir(), "electron-app"))
	if !errors.Is(err, ErrRepackFailed) {
		t.Fatalf("expected ErrRepackFailed for missing app.asar, got %v", err)
	}
}

func TestStubModuleDeterministic(t *testing.T) {
	if !bytes.Equal(StubModule(), StubModule()) {
		t.Fatal("StubModule output is not deterministic")
	}
}

func TestStubModuleContents(t *testing.T) {
	stub := string(StubModule())

	for _, want := range []string{
		"KeyboardKey = Object.freeze({",
		"Backspace: 43,",
		"Meta: 187,",
		`getWindowsVersion: () => "10.0.22621",`,
		"getIsMaximized: () => false,",
		"setProgressBar: () => {},",
		"showNotification: () => {},",
	} {
		if !strings.Contains(stub, want) {
			t.Errorf("stub missing %q", want)
		}
	}
}
