// Package engine assembles a job's stages into a streaming pipeline and runs
// jobs side by side.
package engine

import (
	"path/filepath"
	"strings"

	"github.com/flarebyte/gendoc/internal/config"
	"github.com/flarebyte/gendoc/internal/extract"
	"github.com/flarebyte/gendoc/internal/stage"
)

// Plan returns the ordered stage names run between the source and the sink
// of job.
func Plan(job config.Job) []string {
	var names []string
	if _, _, ok := extract.ForPattern(job.SourceFiles); ok {
		names = append(names, stage.NameExtract)
	}
	if job.Filter != "" {
		names = append(names, stage.NameLuaFilter)
	}
	if job.SingleOutput() {
		names = append(names, stage.NameAggregate)
	}
	return append(names, stage.NameRender, stage.NameExtname)
}

// OutputExtension is the extension given to rendered records: the job's
// override with a leading ".", else the inner extension of the template name
// ("page.md.tmpl" gives ".md"), else ".html".
func OutputExtension(job config.Job) string {
	if job.Extension != "" {
		if !strings.HasPrefix(job.Extension, ".") {
			return "." + job.Extension
		}
		return job.Extension
	}
	base := filepath.Base(job.Template)
	inner := filepath.Ext(strings.TrimSuffix(base, filepath.Ext(base)))
	if inner != "" {
		return inner
	}
	return ".html"
}
