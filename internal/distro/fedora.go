package distro

import (
	"fmt"
	"strings"

	"github.com/claude-linux/claude-desktop-builder/internal/hostenv"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

func init() {
	Register(&fedoraFamily{})
}

type fedoraFamily struct{}

func (f *fedoraFamily) Name() hostenv.Family { return hostenv.FamilyFedora }

func (f *fedoraFamily) Installer() PackageInstaller { return &dnfInstaller{} }

func (f *fedoraFamily) RequiredTools() map[string]string {
	return map[string]string{
		"7z":       "p7zip-plugins",
		"wrestool": "icoutils",
		"icotool":  "icoutils",
		"convert":  "ImageMagick",
		"npx":      "nodejs-npm",
		"rpmbuild": "rpm-build",
	}
}

type dnfInstaller struct{}

func (i *dnfInstaller) Name() string { return "dnf" }

func (i *dnfInstaller) Install(pkgs []string) error {
	cmd := fmt.Sprintf("dnf install -y %s", strings.Join(pkgs, " "))
	if _, err := shell.ExecCmdWithStream(cmd, "", nil); err != nil {
		return fmt.Errorf("dnf install failed: %w", err)
	}
	return nil
}
