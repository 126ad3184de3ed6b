package fetch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"

	"github.com/claude-linux/claude-desktop-builder/internal/hostenv"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/network"
)

// ErrDownloadFailed marks a transport error or a non-success HTTP status
// while fetching the installer.
var ErrDownloadFailed = errors.New("download failed")

// Upstream ships a single Windows installer; both architecture entries
// currently point at it. Kept as a table so the aarch64 artifact can diverge
// without touching call sites.
var installerURLs = map[hostenv.Arch]string{
	hostenv.ArchX8664:   "https://storage.googleapis.com/osprey-downloads-c02f6035-33fd-45ea-971f-63a8b47e28e5/nest-win-x64/Claude-Setup-x64.exe",
	hostenv.ArchAarch64: "https://storage.googleapis.com/osprey-downloads-c02f6035-33fd-45ea-971f-63a8b47e28e5/nest-win-x64/Claude-Setup-x64.exe",
}

// httpClient is package-level so tests can substitute a client pointed at a
// local server.
var httpClient = network.NewSecureHTTPClient()

// minFreeBytes is the work-dir free-space threshold below which a warning
// is logged before downloading (1 GiB).
const minFreeBytes = 1 << 30

// URLFor returns the installer URL for the given architecture, preferring
// an operator override when present.
func URLFor(arch hostenv.Arch, overrides map[string]string) (string, error) {
	if url, ok := overrides[string(arch)]; ok && url != "" {
		return url, nil
	}
	url, ok := installerURLs[arch]
	if !ok {
		return "", fmt.Errorf("%w: no installer URL for architecture %s", ErrDownloadFailed, arch)
	}
	return url, nil
}

// Download retrieves url into destPath with a single attempt. Any transport
// error or non-2xx status is fatal.
func Download(url, destPath string) error {
	log := logger.Logger()

	checkFreeSpace(filepath.Dir(destPath))

	log.Infof("Downloading %s", url)
	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %s", ErrDownloadFailed, url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrDownloadFailed, filepath.Dir(destPath), err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrDownloadFailed, destPath, err)
	}
	defer out.Close()

	bar := progressbar.DefaultBytes(resp.ContentLength,
		fmt.Sprintf("downloading %s", filepath.Base(destPath)))

	if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrDownloadFailed, destPath, err)
	}

	log.Infof("Downloaded installer to %s", destPath)
	return nil
}

// checkFreeSpace warns when the filesystem holding dir is low on space.
// Advisory only: the build proceeds either way.
func checkFreeSpace(dir string) {
	log := logger.Logger()

	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		log.Debugf("statfs %s: %v", dir, err)
		return
	}

	free := st.Bavail * uint64(st.Bsize)
	if free < minFreeBytes {
		log.Warnf("Low disk space in %s: %d MiB free", dir, free/(1<<20))
	}
}
