package engine

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/flarebyte/gendoc/internal/config"
	"github.com/flarebyte/gendoc/internal/failure"
	"github.com/flarebyte/gendoc/internal/stage"
	"github.com/flarebyte/gendoc/internal/tmpl"
)

// Result is the outcome of one job, paired with its descriptor.
type Result struct {
	Index    int
	Job      config.Job
	Err      error
	Duration time.Duration
}

// Runner runs jobs independently: a failing job never stops its siblings.
type Runner struct {
	// Workers bounds how many jobs run at once; zero means runtime.NumCPU().
	Workers int
	Options stage.Options
	Engine  tmpl.Engine
	Sandbox stage.LuaSandbox
	Log     zerolog.Logger
}

// NewRunner returns a Runner with default options and the text engine.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{
		Options: stage.DefaultOptions(),
		Engine:  tmpl.NewText(),
		Sandbox: stage.DefaultLuaSandbox(),
		Log:     log,
	}
}

// Run executes every job and reports results in config order.
func (r *Runner) Run(ctx context.Context, jobs []config.Job) []Result {
	workers := r.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return runIndexedParallel(len(jobs), workers, func(i int) Result {
		return r.RunJob(ctx, i, jobs[i])
	})
}

// RunJob assembles and runs a single job.
func (r *Runner) RunJob(ctx context.Context, index int, job config.Job) Result {
	log := r.Log.With().Int("job", index).Str("source", job.SourceFiles).Logger()
	start := time.Now()
	res := Result{Index: index, Job: job}
	log.Info().Msg("job started")

	p, err := Assemble(job, Env{Options: r.Options, Engine: r.Engine, Sandbox: r.Sandbox, Log: log})
	if err == nil {
		log.Debug().Strs("stages", p.Stages()).Msg("pipeline assembled")
		err = p.Run(ctx)
	}
	res.Err = err
	res.Duration = time.Since(start)
	if err != nil {
		ev := log.Error().Err(err)
		if kind := failure.KindOf(err); kind != nil {
			ev = ev.Str("kind", kind.Error())
		}
		ev.Dur("elapsed", res.Duration).Msg("job failed")
		return res
	}
	log.Info().Dur("elapsed", res.Duration).Msg("job finished")
	return res
}

// SandboxFrom overlays the configured limits on the default sandbox.
func SandboxFrom(c config.LuaSandbox) stage.LuaSandbox {
	s := stage.DefaultLuaSandbox()
	if c.HasTimeoutMs {
		s.TimeoutMs = c.TimeoutMs
	}
	if c.HasInstructionLimit {
		s.InstructionLimit = c.InstructionLimit
	}
	if c.HasMemoryLimitBytes {
		s.MemoryLimitBytes = c.MemoryLimitBytes
	}
	return s
}

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
