package report

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"
)

func TestAddHashesArtifact(t *testing.T) {
	payload := []byte("rpm-bytes")
	path := filepath.Join(t.TempDir(), "claude-desktop-0.8.0-1.x86_64.rpm")
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatal(err)
	}

	r := New("test-build", "0.8.0", "x86_64", "fedora")
	if err := r.Add(path); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if len(r.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(r.Artifacts))
	}
	a := r.Artifacts[0]
	if a.Size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", a.Size, len(payload))
	}
	sum := sha256.Sum256(payload)
	if a.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("sha256 mismatch: %s", a.SHA256)
	}
}

func TestAddMissingArtifact(t *testing.T) {
	r := New("test-build", "0.8.0", "x86_64", "fedora")
	if err := r.Add(filepath.Join(t.TempDir(), "absent.rpm")); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "recipe")
	if err := os.WriteFile(artifact, []byte("PKGBUILD"), 0644); err != nil {
		t.Fatal(err)
	}

	r := New("abc123", "0.8.0", "aarch64", "asahi")
	if err := r.Add(artifact); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path, err := r.Write(dir)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "report-abc123.yaml" {
		t.Errorf("unexpected report name %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if got.BuildID != "abc123" || got.Arch != "aarch64" || got.Family != "asahi" {
		t.Errorf("report identity mismatch: %+v", got)
	}
	if len(got.Artifacts) != 1 || got.Artifacts[0].Path != artifact {
		t.Errorf("report artifacts mismatch: %+v", got.Artifacts)
	}
}

func TestArchiveWorkDirSkipsLargeFiles(t *testing.T) {
	workDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(workDir, "rpmbuild", "SPECS"), 0755); err != nil {
		t.Fatal(err)
	}
	small := map[string]string{
		"rpmbuild/SPECS/claude-desktop.spec": "Name: claude-desktop",
		"claude-desktop.desktop":             "[Desktop Entry]",
	}
	for rel, content := range small {
		if err := os.WriteFile(filepath.Join(workDir, filepath.FromSlash(rel)), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	big := bytes.Repeat([]byte{0xAA}, maxArchivedFileSize+1)
	if err := os.WriteFile(filepath.Join(workDir, "Claude-Setup-x64.exe"), big, 0644); err != nil {
		t.Fatal(err)
	}

	path, err := ArchiveWorkDir(workDir, t.TempDir(), "abc123")
	if err != nil {
		t.Fatalf("ArchiveWorkDir failed: %v", err)
	}
	if filepath.Base(path) != "workdir-abc123.tar.xz" {
		t.Errorf("unexpected archive name %s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	xzr, err := xz.NewReader(f)
	if err != nil {
		t.Fatalf("archive is not valid xz: %v", err)
	}

	names := map[string]bool{}
	tr := tar.NewReader(xzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		names[hdr.Name] = true
	}

	for rel := range small {
		if !names[filepath.FromSlash(rel)] {
			t.Errorf("archive missing %s (got %v)", rel, names)
		}
	}
	if names["Claude-Setup-x64.exe"] {
		t.Error("oversized installer should not be archived")
	}
}
