package assemble

import (
	"fmt"
	"os"

	"github.com/sassoftware/go-rpmutils"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
)

// VerifyRPM opens the built package and confirms its header identity
// matches the metadata every other artifact was rendered from. A mismatch
// means the spec rendering and the build context disagreed.
func VerifyRPM(path string, m Metadata) error {
	log := logger.Logger()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrPackageBuildFailed, path, err)
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return fmt.Errorf("%w: reading rpm header: %v", ErrPackageBuildFailed, err)
	}

	nevra, err := rpm.Header.GetNEVRA()
	if err != nil {
		return fmt.Errorf("%w: reading NEVRA: %v", ErrPackageBuildFailed, err)
	}

	if nevra.Name != m.Name || nevra.Version != m.Version ||
		nevra.Release != m.Release || nevra.Arch != string(m.Arch) {
		return fmt.Errorf("%w: package identity %s-%s-%s.%s does not match build context %s-%s-%s.%s",
			ErrPackageBuildFailed,
			nevra.Name, nevra.Version, nevra.Release, nevra.Arch,
			m.Name, m.Version, m.Release, m.Arch)
	}

	log.Infof("Verified package header: %s-%s-%s.%s",
		nevra.Name, nevra.Version, nevra.Release, nevra.Arch)
	return nil
}
