package icons

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/fsutil"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

// ErrIconExtractionFailed marks a failure of the resource-extraction or
// ico-conversion tools themselves. Individual missing sizes only warn.
var ErrIconExtractionFailed = errors.New("icon extraction failed")

// groupIconResource is the Windows RT_GROUP_ICON resource type identifier.
const groupIconResource = 14

// Manifest maps each required icon size to the filename icotool emits for
// it. The index and bit depth in the names are vendor-determined.
var Manifest = map[int]string{
	16:  "claude_13_16x16x32.png",
	24:  "claude_11_24x24x32.png",
	32:  "claude_10_32x32x32.png",
	48:  "claude_8_48x48x32.png",
	64:  "claude_7_64x64x32.png",
	256: "claude_6_256x256x32.png",
}

// Extract pulls the multi-resolution icon resource out of the vendor
// executable and splits it into individual PNGs inside outDir.
func Extract(exePath, outDir string) (string, error) {
	log := logger.Logger()

	if err := fsutil.EnsureDir(outDir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIconExtractionFailed, err)
	}

	icoPath := filepath.Join(outDir, "claude.ico")
	log.Infof("Extracting icon resource from %s", filepath.Base(exePath))

	cmd := fmt.Sprintf("wrestool -x -t %d %s -o %s",
		groupIconResource, shell.Quote(exePath), shell.Quote(icoPath))
	if out, err := shell.ExecCmd(cmd, "", nil); err != nil {
		return "", fmt.Errorf("%w: wrestool: %v\n%s", ErrIconExtractionFailed, err, out)
	}

	cmd = fmt.Sprintf("icotool -x -o %s %s", shell.Quote(outDir), shell.Quote(icoPath))
	if out, err := shell.ExecCmd(cmd, "", nil); err != nil {
		return "", fmt.Errorf("%w: icotool: %v\n%s", ErrIconExtractionFailed, err, out)
	}

	return icoPath, nil
}

// Install places each required size into the hicolor theme tree under
// installRoot with mode 0644. A size whose source PNG is missing is
// regenerated from the ico container with ImageMagick; if that also fails
// the size is skipped with a warning and the build carries on with an
// incomplete icon set.
func Install(srcDir, icoPath, installRoot, themeRoot string) ([]int, error) {
	log := logger.Logger()

	sizes := make([]int, 0, len(Manifest))
	for size := range Manifest {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	var installed []int
	for _, size := range sizes {
		src := filepath.Join(srcDir, Manifest[size])
		if _, err := os.Stat(src); err != nil {
			log.Warnf("Icon source %s missing, converting from ico container", Manifest[size])
			src = filepath.Join(srcDir, fmt.Sprintf("claude_%d.png", size))
			if err := convertFallback(icoPath, src, size); err != nil {
				log.Warnf("Skipping %dx%d icon: %v", size, size, err)
				continue
			}
		}

		dst := filepath.Join(installRoot, themeRoot,
			fmt.Sprintf("%dx%d", size, size), "apps", "claude-desktop.png")
		if err := fsutil.CopyFile(src, dst, 0644); err != nil {
			return installed, fmt.Errorf("%w: installing %dx%d icon: %v", ErrIconExtractionFailed, size, size, err)
		}
		installed = append(installed, size)
		log.Infof("Installed %dx%d icon", size, size)
	}

	return installed, nil
}

// convertFallback resizes the best frame of the ico container to the
// requested square size.
func convertFallback(icoPath, dst string, size int) error {
	cmd := fmt.Sprintf("convert %s -resize %dx%d %s",
		shell.Quote(icoPath+"[0]"), size, size, shell.Quote(dst))
	if out, err := shell.ExecCmd(cmd, "", nil); err != nil {
		return fmt.Errorf("convert: %v\n%s", err, out)
	}
	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("convert produced no output for %dx%d", size, size)
	}
	return nil
}
