package distro

import (
	"github.com/claude-linux/claude-desktop-builder/internal/hostenv"
)

// PackageInstaller abstracts the host package manager so the one
// state-mutating operation in the pipeline can be faked in tests.
type PackageInstaller interface {
	// Name is the package manager command, e.g. "dnf" or "pacman".
	Name() string

	// Install installs the given native packages in a single invocation.
	Install(pkgs []string) error
}

// Family is a distribution-family plugin: it knows its package manager and
// which native packages provide the tools the pipeline shells out to.
type Family interface {
	// Name is the family tag, e.g. hostenv.FamilyFedora.
	Name() hostenv.Family

	// Installer returns the package manager capability for this family.
	Installer() PackageInstaller

	// RequiredTools maps each required command to the native package
	// that provides it.
	RequiredTools() map[string]string
}

var families = make(map[hostenv.Family]Family)

// Register makes a Family available under its Name().
func Register(f Family) {
	families[f.Name()] = f
}

// Get returns the Family for the given tag.
func Get(name hostenv.Family) (Family, bool) {
	f, ok := families[name]
	return f, ok
}
