package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/fsutil"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
)

// WritePKGBUILD renders the Arch-style recipe and copies the staged tree
// next to it. It never invokes makepkg: Arch packaging conventionally
// expects the operator to run the builder, so instructions are printed
// instead.
func WritePKGBUILD(installRoot, outDir string, m Metadata) (string, error) {
	log := logger.Logger()

	recipeDir := filepath.Join(outDir, m.Name+"-pkgbuild")
	if err := os.RemoveAll(recipeDir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}
	if err := fsutil.EnsureDir(recipeDir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}

	pkgbuild, err := renderPackaging("pkgbuild", pkgbuildTemplate, m, installRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}
	if err := os.WriteFile(filepath.Join(recipeDir, "PKGBUILD"), pkgbuild, 0644); err != nil {
		return "", fmt.Errorf("%w: writing PKGBUILD: %v", ErrPackageBuildFailed, err)
	}

	if err := fsutil.CopyTree(installRoot, filepath.Join(recipeDir, "root")); err != nil {
		return "", fmt.Errorf("%w: copying install tree: %v", ErrPackageBuildFailed, err)
	}

	log.Infof("PKGBUILD written to %s", recipeDir)
	log.Infof("To build and install the package, run:")
	log.Infof("  cd %s && makepkg -si", recipeDir)
	return recipeDir, nil
}
