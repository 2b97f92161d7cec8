package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"

	"github.com/flarebyte/gendoc/internal/failure"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "gendoc.json"

// CurrentConfigVersion is assumed when a gendoc config omits configVersion.
const CurrentConfigVersion = "1"

// supportedConfigVersions lists every configVersion Load accepts.
var supportedConfigVersions = []string{CurrentConfigVersion}

// Job describes one pipeline: which files to read, which template to render
// them through and where to write the result. Exactly one of OutputFile and
// OutputDir is set.
type Job struct {
	SourceFiles string `json:"sourceFiles"`
	Template    string `json:"template"`
	OutputFile  string `json:"outputFile,omitempty"`
	OutputDir   string `json:"outputDir,omitempty"`
	Extension   string `json:"extension,omitempty"`
	Filter      string `json:"filter,omitempty"`
	Gitignore   bool   `json:"gitignore,omitempty"`
}

// SingleOutput reports whether the job aggregates every match into one file.
func (j Job) SingleOutput() bool { return j.OutputFile != "" }

// Config is the loaded job list. It is never mutated after Load.
type Config struct {
	ConfigVersion string
	Lua           LuaSandbox
	Jobs          []Job
	// Dir is the directory relative job paths were resolved against.
	Dir string
}

// Load reads, validates and resolves a config file. Any problem is reported
// as a failure.ErrConfig and no job is returned.
func Load(path string) (Config, error) {
	v, err := compileConfig(path)
	if err != nil {
		return Config{}, failure.New(failure.ErrConfig, "config", path, err)
	}
	cfg, err := decode(v)
	if err != nil {
		return Config{}, failure.New(failure.ErrConfig, "config", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, failure.New(failure.ErrConfig, "config", path, err)
	}
	cfg.Dir = filepath.Dir(abs)
	for i := range cfg.Jobs {
		cfg.Jobs[i] = resolveJob(cfg.Dir, cfg.Jobs[i])
	}
	return cfg, nil
}

func decode(v cue.Value) (Config, error) {
	var cfg Config
	if err := parseConfigVersion(v, &cfg.ConfigVersion); err != nil {
		return Config{}, err
	}
	cfg.Lua = parseLuaSandboxSection(v)
	if err := v.LookupPath(cue.ParsePath("jobs")).Decode(&cfg.Jobs); err != nil {
		return Config{}, fmt.Errorf("invalid value for jobs: %v", err)
	}
	for i, j := range cfg.Jobs {
		if err := validateJob(j); err != nil {
			return Config{}, fmt.Errorf("jobs[%d]: %w", i, err)
		}
	}
	return cfg, nil
}

func validateJob(j Job) error {
	switch {
	case j.OutputFile != "" && j.OutputDir != "":
		return errors.New("outputFile and outputDir are mutually exclusive")
	case j.OutputFile == "" && j.OutputDir == "":
		return errors.New("one of outputFile or outputDir is required")
	}
	return nil
}

func parseConfigVersion(v cue.Value, dst *string) error {
	cv := v.LookupPath(cue.ParsePath("configVersion"))
	if !cv.Exists() {
		*dst = CurrentConfigVersion
		return nil
	}
	if err := cv.Decode(dst); err != nil {
		return fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if !slices.Contains(supportedConfigVersions, *dst) {
		return fmt.Errorf("unsupported configVersion: %q (supported: %s)", *dst, strings.Join(supportedConfigVersions, ", "))
	}
	return nil
}

// resolveJob anchors relative paths at the config directory.
func resolveJob(dir string, j Job) Job {
	j.SourceFiles = resolve(dir, j.SourceFiles)
	j.Template = resolve(dir, j.Template)
	j.OutputFile = resolve(dir, j.OutputFile)
	j.OutputDir = resolve(dir, j.OutputDir)
	return j
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}
