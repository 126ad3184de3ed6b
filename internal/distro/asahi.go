package distro

import (
	"fmt"
	"strings"

	"github.com/claude-linux/claude-desktop-builder/internal/hostenv"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

func init() {
	Register(&asahiFamily{})
}

// asahiFamily targets Asahi Linux installs that follow the Arch packaging
// convention (pacman + PKGBUILD).
type asahiFamily struct{}

func (f *asahiFamily) Name() hostenv.Family { return hostenv.FamilyAsahi }

func (f *asahiFamily) Installer() PackageInstaller { return &pacmanInstaller{} }

func (f *asahiFamily) RequiredTools() map[string]string {
	return map[string]string{
		"7z":       "p7zip",
		"wrestool": "icoutils",
		"icotool":  "icoutils",
		"convert":  "imagemagick",
		"npx":      "npm",
		"makepkg":  "base-devel",
	}
}

type pacmanInstaller struct{}

func (i *pacmanInstaller) Name() string { return "pacman" }

func (i *pacmanInstaller) Install(pkgs []string) error {
	cmd := fmt.Sprintf("pacman -S --noconfirm --needed %s", strings.Join(pkgs, " "))
	if _, err := shell.ExecCmdWithStream(cmd, "", nil); err != nil {
		return fmt.Errorf("pacman install failed: %w", err)
	}
	return nil
}
