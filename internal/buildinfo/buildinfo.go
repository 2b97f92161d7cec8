// Package buildinfo exposes version metadata for the gendoc CLI. Values are
// set at build time via -ldflags; cli.Version and cli.Date are honored as
// fallbacks for release scripts that target the cli package.
package buildinfo

import (
	"runtime"
	"strings"

	"github.com/flarebyte/gendoc/cli"
)

var (
	// Version is the semantic version or custom string.
	Version = "dev"
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time (optional).
	Date = ""
	// BuiltBy identifies the builder (optional).
	BuiltBy = ""
)

func version() string {
	if Version != "" {
		return Version
	}
	if cli.Version != "" {
		return cli.Version
	}
	return "dev"
}

func date() string {
	if Date != "" {
		return Date
	}
	return cli.Date
}

// Summary returns a concise single-line version string.
func Summary() string {
	v := version()
	parts := make([]string, 0, 2)
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if d := date(); d != "" {
		parts = append(parts, "date="+d)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}

// Info returns the metadata as a flat map for machine-readable output.
func Info() map[string]any {
	return map[string]any{
		"version":  version(),
		"commit":   Commit,
		"date":     date(),
		"built_by": BuiltBy,
		"go":       runtime.Version(),
		"go_os":    runtime.GOOS,
		"go_arch":  runtime.GOARCH,
	}
}
