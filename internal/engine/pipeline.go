package engine

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/flarebyte/gendoc/internal/config"
	"github.com/flarebyte/gendoc/internal/sink"
	"github.com/flarebyte/gendoc/internal/source"
	"github.com/flarebyte/gendoc/internal/stage"
)

// Pipeline is one job's source, stages and sink.
type Pipeline struct {
	job    config.Job
	opts   stage.Options
	stages []stage.Stage
	sink   sink.Sink
	log    zerolog.Logger
}

// Stages returns the assembled stage names in order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run streams every source record through the stages into the sink. Each
// part runs in its own goroutine joined by bounded channels; the first error
// cancels the rest and is returned. Output is committed only on success.
func (p *Pipeline) Run(ctx context.Context) error {
	buf := p.opts.Buffer
	if buf < 1 {
		buf = 1
	}
	g, gctx := errgroup.WithContext(ctx)

	src := make(chan *stage.Record, buf)
	g.Go(func() error {
		err := source.Walk(gctx, p.job.SourceFiles, source.Options{Gitignore: p.job.Gitignore}, func(rec *stage.Record) error {
			p.log.Debug().Str("path", rec.Path).Msg("source record")
			return send(gctx, src, rec)
		})
		if err != nil {
			return err
		}
		close(src)
		return nil
	})

	var in <-chan *stage.Record = src
	for _, s := range p.stages {
		stageIn, out := in, make(chan *stage.Record, buf)
		g.Go(func() error { return p.runStage(gctx, s, stageIn, out) })
		in = out
	}

	last := in
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case rec, ok := <-last:
				if !ok {
					return nil
				}
				if err := p.sink.Write(gctx, rec); err != nil {
					return err
				}
				p.log.Debug().Str("path", rec.Path).Msg("record staged")
			}
		}
	})

	if err := g.Wait(); err != nil {
		p.sink.Abort()
		return err
	}
	return p.sink.Commit()
}

// runStage closes out only after in ended cleanly, so downstream never
// mistakes an upstream failure for end of input.
func (p *Pipeline) runStage(ctx context.Context, s stage.Stage, in <-chan *stage.Record, out chan<- *stage.Record) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-in:
			if !ok {
				if f, ok := s.(stage.Finalizer); ok {
					last, err := f.Finalize(ctx)
					if err != nil {
						return err
					}
					if last != nil {
						p.log.Debug().Str("stage", s.Name()).Str("path", last.Path).Msg("finalized")
						if err := send(ctx, out, last); err != nil {
							return err
						}
					}
				}
				close(out)
				return nil
			}
			recs, err := s.Process(ctx, rec)
			if err != nil {
				return err
			}
			for _, r := range recs {
				if err := send(ctx, out, r); err != nil {
					return err
				}
			}
		}
	}
}

func send(ctx context.Context, ch chan<- *stage.Record, rec *stage.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ch <- rec:
		return nil
	}
}
