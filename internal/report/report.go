package report

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/fsutil"
)

// maxArchivedFileSize caps which work-dir files go into the debug bundle;
// the multi-hundred-megabyte installer and archives stay out.
const maxArchivedFileSize = 1 << 20

// Artifact is one file the build produced, with enough identity to audit it
// later.
type Artifact struct {
	Path   string `yaml:"path"`
	Size   int64  `yaml:"size"`
	SHA256 string `yaml:"sha256"`
}

// Report records what a single pipeline run produced.
type Report struct {
	BuildID   string     `yaml:"buildId"`
	Version   string     `yaml:"version"`
	Arch      string     `yaml:"arch"`
	Family    string     `yaml:"family"`
	CreatedAt time.Time  `yaml:"createdAt"`
	Artifacts []Artifact `yaml:"artifacts"`
}

// New starts a report for the given run identity.
func New(buildID, version, arch, family string) *Report {
	return &Report{
		BuildID:   buildID,
		Version:   version,
		Arch:      arch,
		Family:    family,
		CreatedAt: time.Now().UTC(),
	}
}

// Add records a produced artifact, hashing it on the way in.
func (r *Report) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}

	r.Artifacts = append(r.Artifacts, Artifact{
		Path:   path,
		Size:   info.Size(),
		SHA256: hex.EncodeToString(h.Sum(nil)),
	})
	return nil
}

// Write emits the report as YAML under dir and returns the report path.
func (r *Report) Write(dir string) (string, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("report-%s.yaml", r.BuildID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// ArchiveWorkDir bundles the small text artifacts of the work dir (rendered
// specs, desktop entries, logs) into a .tar.xz beside the report so the work
// dir can still be deleted after a successful run.
func ArchiveWorkDir(workDir, dir, buildID string) (string, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("workdir-%s.tar.xz", buildID))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}
	defer out.Close()

	xzw, err := xz.NewWriter(out)
	if err != nil {
		return "", fmt.Errorf("creating xz writer: %w", err)
	}
	tw := tar.NewWriter(xzw)

	err = filepath.Walk(workDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() || info.Size() > maxArchivedFileSize {
			return nil
		}

		rel, err := filepath.Rel(workDir, p)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("archiving work dir: %w", err)
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("closing tar stream: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return "", fmt.Errorf("closing xz stream: %w", err)
	}
	return path, nil
}
