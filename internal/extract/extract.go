package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

// Distinct errors for the two extraction stages so a failure report names
// which archive broke.
var (
	ErrInstallerExtractionFailed = errors.New("installer extraction failed")
	ErrNupkgExtractionFailed     = errors.New("nupkg extraction failed")
)

// Installer unpacks the self-extracting Windows installer in place inside
// workDir, exposing the nested nupkg.
func Installer(installerPath, workDir string) error {
	log := logger.Logger()
	log.Infof("Extracting installer %s", filepath.Base(installerPath))

	cmd := fmt.Sprintf("7z x -y %s", shell.Quote(installerPath))
	if out, err := shell.ExecCmd(cmd, workDir, nil); err != nil {
		return fmt.Errorf("%w: %v\n%s", ErrInstallerExtractionFailed, err, out)
	}
	return nil
}

// NupkgName returns the nested package archive name for a given version.
// The vendor embeds the version string in the filename.
func NupkgName(version string) string {
	return fmt.Sprintf("AnthropicClaude-%s-full.nupkg", version)
}

// Nupkg locates the nested package archive produced by the installer stage
// and unpacks it, exposing the vendor's lib/net45 layout. Later stages rely
// on that layout; it is a contract on the vendor artifact, not something
// this tool controls.
func Nupkg(workDir, version string) error {
	log := logger.Logger()

	nupkg := filepath.Join(workDir, NupkgName(version))
	if _, err := os.Stat(nupkg); err != nil {
		return fmt.Errorf("%w: expected archive %s not found", ErrNupkgExtractionFailed, nupkg)
	}

	log.Infof("Extracting nested package %s", filepath.Base(nupkg))
	cmd := fmt.Sprintf("7z x -y %s", shell.Quote(nupkg))
	if out, err := shell.ExecCmd(cmd, workDir, nil); err != nil {
		return fmt.Errorf("%w: %v\n%s", ErrNupkgExtractionFailed, err, out)
	}

	net45 := filepath.Join(workDir, "lib", "net45")
	if _, err := os.Stat(net45); err != nil {
		return fmt.Errorf("%w: vendor layout %s missing after extraction", ErrNupkgExtractionFailed, net45)
	}
	return nil
}
