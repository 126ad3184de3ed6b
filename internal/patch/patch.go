package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/fsutil"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/shell"
)

// ErrRepackFailed marks a failure while unpacking or re-creating the
// application resource archive.
var ErrRepackFailed = errors.New("resource archive repack failed")

const (
	asarContentsDir = "app.asar.contents"
	stubRelPath     = "node_modules/claude-native/index.js"
)

// Repack rebuilds the vendor's packed resource archive with the
// native-integration module replaced by the stub and the tray/localization
// assets injected. net45Dir is the extracted vendor tree; electronDir is
// the staging directory that ends up holding the patched app.asar and its
// unpacked sibling.
func Repack(net45Dir, electronDir string) error {
	log := logger.Logger()

	if err := fsutil.EnsureDir(electronDir); err != nil {
		return fmt.Errorf("%w: %v", ErrRepackFailed, err)
	}

	resourcesDir := filepath.Join(net45Dir, "resources")
	if err := fsutil.CopyFile(filepath.Join(resourcesDir, "app.asar"),
		filepath.Join(electronDir, "app.asar"), 0644); err != nil {
		return fmt.Errorf("%w: copying app.asar: %v", ErrRepackFailed, err)
	}
	if err := fsutil.CopyTree(filepath.Join(resourcesDir, "app.asar.unpacked"),
		filepath.Join(electronDir, "app.asar.unpacked")); err != nil {
		return fmt.Errorf("%w: copying app.asar.unpacked: %v", ErrRepackFailed, err)
	}

	log.Infof("Unpacking application resource archive")
	cmd := fmt.Sprintf("npx asar extract app.asar %s", asarContentsDir)
	if out, err := shell.ExecCmd(cmd, electronDir, nil); err != nil {
		return fmt.Errorf("%w: asar extract: %v\n%s", ErrRepackFailed, err, out)
	}

	contentsDir := filepath.Join(electronDir, asarContentsDir)

	// The stub goes both inside the archive contents and into the
	// unpacked tree; the two copies must be byte-identical.
	stub := StubModule()
	for _, dst := range []string{
		filepath.Join(contentsDir, stubRelPath),
		filepath.Join(electronDir, "app.asar.unpacked", stubRelPath),
	} {
		if err := fsutil.EnsureDir(filepath.Dir(dst)); err != nil {
			return fmt.Errorf("%w: %v", ErrRepackFailed, err)
		}
		if err := os.WriteFile(dst, stub, 0644); err != nil {
			return fmt.Errorf("%w: writing stub %s: %v", ErrRepackFailed, dst, err)
		}
	}
	log.Infof("Replaced native-integration module with stub")

	if err := injectTrayIcons(resourcesDir, contentsDir); err != nil {
		return err
	}
	if err := injectLocales(resourcesDir, contentsDir); err != nil {
		return err
	}

	log.Infof("Repacking application resource archive")
	cmd = fmt.Sprintf("npx asar pack %s app.asar", asarContentsDir)
	if out, err := shell.ExecCmd(cmd, electronDir, nil); err != nil {
		return fmt.Errorf("%w: asar pack: %v\n%s", ErrRepackFailed, err, out)
	}

	return nil
}

// injectTrayIcons copies the vendor tray icon assets into the archive
// contents under resources/.
func injectTrayIcons(resourcesDir, contentsDir string) error {
	log := logger.Logger()

	matches, err := filepath.Glob(filepath.Join(resourcesDir, "Tray*"))
	if err != nil {
		return fmt.Errorf("%w: globbing tray icons: %v", ErrRepackFailed, err)
	}
	if len(matches) == 0 {
		log.Warnf("No tray icon assets found under %s", resourcesDir)
		return nil
	}

	for _, src := range matches {
		dst := filepath.Join(contentsDir, "resources", filepath.Base(src))
		if err := fsutil.CopyFile(src, dst, 0644); err != nil {
			return fmt.Errorf("%w: copying %s: %v", ErrRepackFailed, src, err)
		}
	}
	log.Infof("Injected %d tray icon assets", len(matches))
	return nil
}

// injectLocales copies the vendor localization JSON resources into the
// archive contents under resources/i18n/. Files that are not well-formed
// JSON are skipped with a warning.
func injectLocales(resourcesDir, contentsDir string) error {
	log := logger.Logger()

	matches, err := filepath.Glob(filepath.Join(resourcesDir, "*-*.json"))
	if err != nil {
		return fmt.Errorf("%w: globbing locale resources: %v", ErrRepackFailed, err)
	}

	copied := 0
	for _, src := range matches {
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", ErrRepackFailed, src, err)
		}
		if !json.Valid(data) {
			log.Warnf("Skipping malformed locale resource %s", filepath.Base(src))
			continue
		}
		dst := filepath.Join(contentsDir, "resources", "i18n", filepath.Base(src))
		if err := fsutil.CopyFile(src, dst, 0644); err != nil {
			return fmt.Errorf("%w: copying %s: %v", ErrRepackFailed, src, err)
		}
		copied++
	}

	if copied == 0 {
		log.Warnf("No localization resources found under %s", resourcesDir)
	} else {
		log.Infof("Injected %d localization resources", copied)
	}
	return nil
}

// StubLocations returns the two paths the stub module occupies after a
// successful repack, for post-conditions and tests.
func StubLocations(electronDir string) []string {
	return []string{
		filepath.Join(electronDir, asarContentsDir, filepath.FromSlash(stubRelPath)),
		filepath.Join(electronDir, "app.asar.unpacked", filepath.FromSlash(stubRelPath)),
	}
}
