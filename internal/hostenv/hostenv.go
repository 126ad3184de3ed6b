package hostenv

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

// Arch is the CPU architecture tag used in download URLs and package
// metadata.
type Arch string

const (
	ArchX8664   Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
)

// Family is the Linux packaging convention the build targets.
type Family string

const (
	FamilyFedora Family = "fedora"
	FamilyAsahi  Family = "asahi"
)

var (
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
	ErrUnsupportedDistribution = errors.New("unsupported distribution")
	ErrInsufficientPrivilege   = errors.New("insufficient privilege")
)

// Marker files consulted for distribution detection. Variables so tests can
// point them at fixtures.
var (
	FedoraReleaseFile = "/etc/fedora-release"
	ArchReleaseFile   = "/etc/arch-release"
	OsReleaseFile     = "/etc/os-release"
)

// Geteuid is swappable for privilege-check tests.
var Geteuid = os.Geteuid

// HostInfo describes the machine the build runs on.
type HostInfo struct {
	Arch   Arch
	Family Family
}

// Probe detects the CPU architecture and distribution family, failing fast
// when either is outside the supported matrix.
func Probe() (*HostInfo, error) {
	log := logger.Logger()

	arch, err := detectArch()
	if err != nil {
		return nil, err
	}

	family, err := detectFamily()
	if err != nil {
		return nil, err
	}

	log.Infof("Detected host: arch=%s family=%s", arch, family)
	return &HostInfo{Arch: arch, Family: family}, nil
}

// RequireRoot fails unless the process runs with elevated privileges.
// Dependency installation mutates host package state and needs root.
func RequireRoot() error {
	if Geteuid() != 0 {
		return fmt.Errorf("%w: must run as root (dependency installation requires it)", ErrInsufficientPrivilege)
	}
	return nil
}

func detectArch() (Arch, error) {
	output, err := shell.ExecCmd("uname -m", "", nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to query machine architecture: %v", ErrUnsupportedArchitecture, err)
	}

	machine := strings.TrimSpace(output)
	switch machine {
	case "x86_64", "amd64":
		return ArchX8664, nil
	case "aarch64", "arm64":
		return ArchAarch64, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: x86_64, aarch64)", ErrUnsupportedArchitecture, machine)
	}
}

func detectFamily() (Family, error) {
	if _, err := os.Stat(FedoraReleaseFile); err == nil {
		return FamilyFedora, nil
	}
	if _, err := os.Stat(ArchReleaseFile); err == nil {
		return FamilyAsahi, nil
	}

	// Fall back to /etc/os-release identifiers for hosts without the
	// classic marker files.
	if id, like := readOsRelease(); id != "" {
		switch {
		case id == "fedora" || contains(like, "fedora"):
			return FamilyFedora, nil
		case id == "arch" || contains(like, "arch"):
			return FamilyAsahi, nil
		}
	}

	return "", fmt.Errorf("%w: neither a Fedora release marker nor an Asahi marker was found", ErrUnsupportedDistribution)
}

// readOsRelease returns the ID and ID_LIKE fields from /etc/os-release.
func readOsRelease() (string, []string) {
	file, err := os.Open(OsReleaseFile)
	if err != nil {
		return "", nil
	}
	defer file.Close()

	var id string
	var idLike []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.ToLower(strings.Trim(strings.TrimSpace(parts[1]), "\""))
		switch key {
		case "ID":
			id = value
		case "ID_LIKE":
			idLike = strings.Fields(value)
		}
	}
	return id, idLike
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
