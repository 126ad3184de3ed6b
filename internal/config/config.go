package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

//go:embed schema.json
var schemaJSON string

// BuildConfig is the optional operator-supplied configuration. Every field
// has a default; a run with no config file behaves exactly like the stock
// build.
type BuildConfig struct {
	// WorkDir owns all intermediate artifacts. Recreated fresh on each run.
	WorkDir string `yaml:"workDir" json:"workDir,omitempty"`

	// DownloadURLs maps an architecture tag to the installer URL,
	// overriding the built-in table.
	DownloadURLs map[string]string `yaml:"downloadUrls" json:"downloadUrls,omitempty"`

	// Maintainer appears in the RPM spec and PKGBUILD metadata.
	Maintainer string `yaml:"maintainer" json:"maintainer,omitempty"`

	// IconThemeRoot is the hicolor theme root inside the install tree.
	IconThemeRoot string `yaml:"iconThemeRoot" json:"iconThemeRoot,omitempty"`

	// Flag-only knobs, not part of the YAML surface.
	KeepWorkDir    bool   `yaml:"-" json:"-"`
	ArchiveWorkDir bool   `yaml:"-" json:"-"`
	SignKeyPath    string `yaml:"-" json:"-"`
	ReportDir      string `yaml:"-" json:"-"`
}

// Default returns the configuration used when no config file is given.
func Default() *BuildConfig {
	return &BuildConfig{
		WorkDir:       "build",
		Maintainer:    "Claude Linux Packagers <packages@claude-linux.dev>",
		IconThemeRoot: "usr/share/icons/hicolor",
		ReportDir:     "builds",
	}
}

// Load reads a YAML config file, validates it against the embedded schema
// and merges it over the defaults.
func Load(path string) (*BuildConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// validateSchema converts the YAML document to JSON and checks it against
// the builder schema, so malformed configs fail before any stage runs.
func validateSchema(data []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting config to JSON: %w", err)
	}

	sch, err := jsonschema.CompileString("builder.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("decoding config document: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
