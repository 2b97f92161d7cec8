package engine

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/flarebyte/gendoc/internal/config"
	"github.com/flarebyte/gendoc/internal/extract"
	"github.com/flarebyte/gendoc/internal/failure"
	"github.com/flarebyte/gendoc/internal/sink"
	"github.com/flarebyte/gendoc/internal/stage"
	"github.com/flarebyte/gendoc/internal/tmpl"
)

// Env holds what every pipeline of a run shares. Nothing in it is mutated by
// a pipeline.
type Env struct {
	Options stage.Options
	Engine  tmpl.Engine
	Sandbox stage.LuaSandbox
	Log     zerolog.Logger
}

// Assemble builds the pipeline of one job. The template is read here, so a
// missing template fails the job before any source file is touched.
func Assemble(job config.Job, env Env) (*Pipeline, error) {
	tpl, err := os.ReadFile(job.Template)
	if err != nil {
		return nil, failure.New(failure.ErrIO, "template", job.Template, err)
	}
	engine := env.Engine
	if engine == nil {
		engine = tmpl.NewText()
	}
	ex, _, _ := extract.ForPattern(job.SourceFiles)
	deps := stage.Deps{
		Options:   env.Options,
		Extractor: ex,
		Filter:    job.Filter,
		Sandbox:   env.Sandbox,
		Template:  string(tpl),
		Engine:    engine,
		Extension: OutputExtension(job),
	}
	names := Plan(job)
	stages := make([]stage.Stage, 0, len(names))
	for _, name := range names {
		s, err := stage.Build(name, deps)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	var out sink.Sink
	if job.SingleOutput() {
		out = sink.NewFile(job.OutputFile)
	} else {
		out = sink.NewDir(job.OutputDir)
	}
	return &Pipeline{
		job:    job,
		opts:   env.Options,
		stages: stages,
		sink:   out,
		log:    env.Log,
	}, nil
}
