package deps

import (
	"errors"
	"fmt"
	"sort"

	"github.com/claude-linux/claude-desktop-builder/internal/distro"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

// ErrDependencyInstallFailed marks a failed native or npm package install.
var ErrDependencyInstallFailed = errors.New("dependency installation failed")

// npmTools are installed through the npm ecosystem rather than the native
// package manager: the application-container runtime and the resource
// archive repacker.
var npmTools = []string{"electron", "asar"}

// Resolver probes for required external tools and installs whatever is
// missing. This is the one non-idempotent, non-sandboxed operation in the
// pipeline: it mutates host package state.
type Resolver struct {
	family distro.Family
}

func NewResolver(family distro.Family) *Resolver {
	return &Resolver{family: family}
}

// EnsureTools checks every required command and installs the providing
// native packages in a single package-manager invocation. A second run on
// an unchanged host installs nothing.
func (r *Resolver) EnsureTools() error {
	log := logger.Logger()

	missing := make(map[string]bool)
	for tool, pkg := range r.family.RequiredTools() {
		if shell.IsCommandExist(tool) {
			log.Debugf("Tool %s already present", tool)
			continue
		}
		log.Infof("Missing tool %s (provided by %s)", tool, pkg)
		missing[pkg] = true
	}

	if len(missing) == 0 {
		log.Infof("All required tools are present")
		return nil
	}

	pkgs := make([]string, 0, len(missing))
	for pkg := range missing {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	installer := r.family.Installer()
	log.Infof("Installing %d packages with %s: %v", len(pkgs), installer.Name(), pkgs)
	if err := installer.Install(pkgs); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyInstallFailed, err)
	}
	return nil
}

// EnsureNpmTools installs electron and asar globally, each idempotently.
func (r *Resolver) EnsureNpmTools() error {
	log := logger.Logger()

	for _, tool := range npmTools {
		if shell.IsCommandExist(tool) {
			log.Infof("%s is already installed", tool)
			continue
		}
		log.Infof("Installing %s via npm", tool)
		if _, err := shell.ExecCmdWithStream("npm install -g "+tool, "", nil); err != nil {
			return fmt.Errorf("%w: npm install -g %s: %v", ErrDependencyInstallFailed, tool, err)
		}
	}
	return nil
}
