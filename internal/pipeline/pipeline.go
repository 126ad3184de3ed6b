package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/claude-linux/claude-desktop-builder/internal/assemble"
	"github.com/claude-linux/claude-desktop-builder/internal/config"
	"github.com/claude-linux/claude-desktop-builder/internal/deps"
	"github.com/claude-linux/claude-desktop-builder/internal/distro"
	"github.com/claude-linux/claude-desktop-builder/internal/extract"
	"github.com/claude-linux/claude-desktop-builder/internal/fetch"
	"github.com/claude-linux/claude-desktop-builder/internal/hostenv"
	"github.com/claude-linux/claude-desktop-builder/internal/icons"
	"github.com/claude-linux/claude-desktop-builder/internal/patch"
	"github.com/claude-linux/claude-desktop-builder/internal/report"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
)

// Version is the upstream installer release the pipeline repackages.
// TODO: derive this from the nupkg filename the installer actually contains.
const Version = "0.8.0"

// Context carries everything the stages share. Created once per run; the
// work dir it owns is recreated fresh and no state survives across runs.
type Context struct {
	BuildID string
	Host    *hostenv.HostInfo
	Family  distro.Family
	Version string
	WorkDir string
	OutDir  string
	Config  *config.BuildConfig
	Report  *report.Report

	installerPath string
	net45Dir      string
	electronDir   string
	installRoot   string
	iconsDir      string
}

// Stage is one step of the strictly sequential, fail-fast pipeline.
type Stage struct {
	Name string
	Run  func(*Context) error
}

// Stages returns the pipeline in dependency order. Each stage's output is
// the next stage's required input; the only non-fatal condition anywhere is
// a missing individual icon size inside transform-icons.
func Stages() []Stage {
	return []Stage{
		{"resolve-dependencies", resolveDependencies},
		{"fetch-installer", fetchInstaller},
		{"extract-artifacts", extractArtifacts},
		{"transform-icons", transformIcons},
		{"patch-resources", patchResources},
		{"assemble-package", assemblePackage},
	}
}

// Run executes the full pipeline. Concurrent runs sharing a work dir are
// unsupported; the work dir is owned exclusively by this run.
func Run(cfg *config.BuildConfig) error {
	log := logger.Logger()

	if err := hostenv.RequireRoot(); err != nil {
		return err
	}

	host, err := hostenv.Probe()
	if err != nil {
		return err
	}

	family, ok := distro.Get(host.Family)
	if !ok {
		return fmt.Errorf("%w: no packaging support registered for %s",
			hostenv.ErrUnsupportedDistribution, host.Family)
	}

	workDir, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return fmt.Errorf("resolving work dir: %w", err)
	}
	outDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving invocation dir: %w", err)
	}

	// Each run starts from a clean work dir.
	if err := os.RemoveAll(workDir); err != nil {
		return fmt.Errorf("cleaning work dir %s: %w", workDir, err)
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("creating work dir %s: %w", workDir, err)
	}

	buildID := uuid.NewString()
	ctx := &Context{
		BuildID:     buildID,
		Host:        host,
		Family:      family,
		Version:     Version,
		WorkDir:     workDir,
		OutDir:      outDir,
		Config:      cfg,
		Report:      report.New(buildID, Version, string(host.Arch), string(host.Family)),
		net45Dir:    filepath.Join(workDir, "lib", "net45"),
		electronDir: filepath.Join(workDir, "electron-app"),
		installRoot: filepath.Join(workDir, "install-root"),
		iconsDir:    filepath.Join(workDir, "icons"),
	}

	log.Infof("Starting build %s: claude-desktop %s for %s", ctx.BuildID, Version, host.Family)

	for _, stage := range Stages() {
		log.Infof("==> %s", stage.Name)
		if err := stage.Run(ctx); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
	}

	return finish(ctx)
}

func resolveDependencies(ctx *Context) error {
	resolver := deps.NewResolver(ctx.Family)
	if err := resolver.EnsureTools(); err != nil {
		return err
	}
	return resolver.EnsureNpmTools()
}

func fetchInstaller(ctx *Context) error {
	url, err := fetch.URLFor(ctx.Host.Arch, ctx.Config.DownloadURLs)
	if err != nil {
		return err
	}
	ctx.installerPath = filepath.Join(ctx.WorkDir, filepath.Base(url))
	return fetch.Download(url, ctx.installerPath)
}

func extractArtifacts(ctx *Context) error {
	if err := extract.Installer(ctx.installerPath, ctx.WorkDir); err != nil {
		return err
	}
	return extract.Nupkg(ctx.WorkDir, ctx.Version)
}

func transformIcons(ctx *Context) error {
	log := logger.Logger()

	exePath := filepath.Join(ctx.net45Dir, "claude.exe")
	icoPath, err := icons.Extract(exePath, ctx.iconsDir)
	if err != nil {
		return err
	}

	installed, err := icons.Install(ctx.iconsDir, icoPath, ctx.installRoot, ctx.Config.IconThemeRoot)
	if err != nil {
		return err
	}
	if len(installed) < len(icons.Manifest) {
		log.Warnf("Icon set incomplete: %d of %d sizes installed", len(installed), len(icons.Manifest))
	}
	return nil
}

func patchResources(ctx *Context) error {
	return patch.Repack(ctx.net45Dir, ctx.electronDir)
}

func assemblePackage(ctx *Context) error {
	m := assemble.NewMetadata(ctx.Version, ctx.Host.Arch, ctx.Config.Maintainer)

	if err := assemble.StageInstallRoot(ctx.installRoot, ctx.electronDir, m); err != nil {
		return err
	}
	if err := assemble.ValidateInstallRoot(ctx.installRoot, m); err != nil {
		return err
	}

	switch ctx.Host.Family {
	case hostenv.FamilyFedora:
		rpmPath, err := assemble.BuildRPM(ctx.installRoot, ctx.WorkDir, ctx.OutDir, m)
		if err != nil {
			return err
		}
		if err := assemble.VerifyRPM(rpmPath, m); err != nil {
			return err
		}
		if ctx.Config.SignKeyPath != "" {
			if err := assemble.SignRPM(rpmPath, ctx.Config.SignKeyPath); err != nil {
				return err
			}
		}
		return ctx.Report.Add(rpmPath)

	case hostenv.FamilyAsahi:
		recipeDir, err := assemble.WritePKGBUILD(ctx.installRoot, ctx.OutDir, m)
		if err != nil {
			return err
		}
		return ctx.Report.Add(filepath.Join(recipeDir, "PKGBUILD"))

	default:
		return fmt.Errorf("%w: %s", hostenv.ErrUnsupportedDistribution, ctx.Host.Family)
	}
}

// finish writes the build report and disposes of the work dir according to
// the configured policy.
func finish(ctx *Context) error {
	log := logger.Logger()

	reportDir := ctx.Config.ReportDir
	if reportDir == "" {
		reportDir = "builds"
	}

	reportPath, err := ctx.Report.Write(reportDir)
	if err != nil {
		log.Warnf("Failed to write build report: %v", err)
	} else {
		log.Infof("Build report written to %s", reportPath)
	}

	if ctx.Config.ArchiveWorkDir {
		archivePath, err := report.ArchiveWorkDir(ctx.WorkDir, reportDir, ctx.BuildID)
		if err != nil {
			log.Warnf("Failed to archive work dir: %v", err)
		} else {
			log.Infof("Work dir artifacts archived to %s", archivePath)
		}
	}

	if ctx.Config.KeepWorkDir {
		log.Infof("Keeping work dir %s for inspection", ctx.WorkDir)
		return nil
	}
	if err := os.RemoveAll(ctx.WorkDir); err != nil {
		log.Warnf("Failed to remove work dir %s: %v", ctx.WorkDir, err)
	}
	return nil
}
