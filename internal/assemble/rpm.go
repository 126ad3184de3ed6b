package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/fsutil"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

// BuildRPM renders the spec, runs rpmbuild against a scratch topdir and
// copies the resulting package into outDir. Returns the final rpm path.
func BuildRPM(installRoot, workDir, outDir string, m Metadata) (string, error) {
	log := logger.Logger()

	absRoot, err := filepath.Abs(installRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}

	topdir := filepath.Join(workDir, fmt.Sprintf("rpmbuild-%s", uuid.NewString()))
	for _, sub := range []string{"SPECS", "RPMS", "BUILD", "BUILDROOT"} {
		if err := fsutil.EnsureDir(filepath.Join(topdir, sub)); err != nil {
			return "", fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
		}
	}

	spec, err := renderPackaging("rpmspec", rpmSpecTemplate, m, absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPackageBuildFailed, err)
	}
	specPath := filepath.Join(topdir, "SPECS", m.Name+".spec")
	if err := os.WriteFile(specPath, spec, 0644); err != nil {
		return "", fmt.Errorf("%w: writing spec: %v", ErrPackageBuildFailed, err)
	}

	log.Infof("Building RPM with scratch topdir %s", topdir)
	cmd := fmt.Sprintf("rpmbuild -bb --define %s --target %s %s",
		shell.Quote("_topdir "+topdir), m.Arch, shell.Quote(specPath))
	if _, err := shell.ExecCmdWithStream(cmd, "", nil); err != nil {
		return "", fmt.Errorf("%w: rpmbuild: %v", ErrPackageBuildFailed, err)
	}

	rpmName := fmt.Sprintf("%s-%s-%s.%s.rpm", m.Name, m.Version, m.Release, m.Arch)
	built := filepath.Join(topdir, "RPMS", string(m.Arch), rpmName)
	if _, err := os.Stat(built); err != nil {
		return "", fmt.Errorf("%w: expected package %s not produced", ErrPackageBuildFailed, built)
	}

	final := filepath.Join(outDir, rpmName)
	if err := fsutil.CopyFile(built, final, 0644); err != nil {
		return "", fmt.Errorf("%w: copying package: %v", ErrPackageBuildFailed, err)
	}

	log.Infof("Built %s", final)
	return final, nil
}
