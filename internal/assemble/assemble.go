package assemble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude-linux/claude-desktop-builder/internal/hostenv"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/fsutil"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
)

// ErrPackageBuildFailed marks a native package builder failure or a staged
// tree that fails validation.
var ErrPackageBuildFailed = errors.New("package build failed")

// Metadata carries the identity every generated artifact must agree on:
// spec/PKGBUILD, desktop entry location and launcher invocation path.
type Metadata struct {
	Name       string
	Version    string
	Release    string
	Arch       hostenv.Arch
	Maintainer string
	LibDir     string
}

// NewMetadata derives the package descriptor from the build context.
func NewMetadata(version string, arch hostenv.Arch, maintainer string) Metadata {
	return Metadata{
		Name:       "claude-desktop",
		Version:    version,
		Release:    "1",
		Arch:       arch,
		Maintainer: maintainer,
		LibDir:     LibDirFor(arch),
	}
}

// LibDirFor returns the library directory convention for the architecture:
// lib64 on x86_64, lib everywhere else.
func LibDirFor(arch hostenv.Arch) string {
	if arch == hostenv.ArchX8664 {
		return "lib64"
	}
	return "lib"
}

// AppDir is the application payload path inside the install tree.
func (m Metadata) AppDir() string {
	return filepath.Join("usr", m.LibDir, m.Name)
}

// StageInstallRoot builds the final install tree under root: the patched
// application payload, the launcher script and the desktop entry. Icons are
// installed separately by the icon transformer.
func StageInstallRoot(root, electronDir string, m Metadata) error {
	log := logger.Logger()
	log.Infof("Staging install tree under %s", root)

	appDir := filepath.Join(root, m.AppDir())
	if err := fsutil.CopyFile(filepath.Join(electronDir, "app.asar"),
		filepath.Join(appDir, "app.asar"), 0644); err != nil {
		return fmt.Errorf("%w: staging app.asar: %v", ErrPackageBuildFailed, err)
	}
	if err := fsutil.CopyTree(filepath.Join(electronDir, "app.asar.unpacked"),
		filepath.Join(appDir, "app.asar.unpacked")); err != nil {
		return fmt.Errorf("%w: staging app.asar.unpacked: %v", ErrPackageBuildFailed, err)
	}

	launcher, err := renderTemplate("launcher", launcherTemplate, m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}
	launcherPath := filepath.Join(root, "usr", "bin", m.Name)
	if err := fsutil.EnsureDir(filepath.Dir(launcherPath)); err != nil {
		return fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}
	if err := os.WriteFile(launcherPath, launcher, 0755); err != nil {
		return fmt.Errorf("%w: writing launcher: %v", ErrPackageBuildFailed, err)
	}

	desktop, err := renderTemplate("desktop", desktopTemplate, m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}
	desktopPath := filepath.Join(root, "usr", "share", "applications", m.Name+".desktop")
	if err := fsutil.EnsureDir(filepath.Dir(desktopPath)); err != nil {
		return fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}
	if err := os.WriteFile(desktopPath, desktop, 0644); err != nil {
		return fmt.Errorf("%w: writing desktop entry: %v", ErrPackageBuildFailed, err)
	}

	return nil
}

// ValidateInstallRoot checks the staged tree before any package tool runs:
// every expected path exists with the correct permissions. Package assembly
// only copies pre-validated trees.
func ValidateInstallRoot(root string, m Metadata) error {
	checks := []struct {
		path string
		mode os.FileMode
	}{
		{filepath.Join(root, "usr", "bin", m.Name), 0755},
		{filepath.Join(root, "usr", "share", "applications", m.Name+".desktop"), 0644},
		{filepath.Join(root, m.AppDir(), "app.asar"), 0644},
	}

	for _, c := range checks {
		info, err := os.Stat(c.path)
		if err != nil {
			return fmt.Errorf("%w: staged tree missing %s", ErrPackageBuildFailed, c.path)
		}
		if info.Mode().Perm() != c.mode {
			return fmt.Errorf("%w: %s has mode %o, want %o",
				ErrPackageBuildFailed, c.path, info.Mode().Perm(), c.mode)
		}
	}

	// Installed icons carry strict read permissions.
	iconGlob := filepath.Join(root, "usr", "share", "icons", "hicolor", "*", "apps", m.Name+".png")
	icons, err := filepath.Glob(iconGlob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}
	for _, icon := range icons {
		info, err := os.Stat(icon)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
		}
		if info.Mode().Perm() != 0644 {
			return fmt.Errorf("%w: icon %s has mode %o, want 644",
				ErrPackageBuildFailed, icon, info.Mode().Perm())
		}
	}

	return nil
}
