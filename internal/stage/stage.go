// Package stage holds the record model and the pipeline stages of a job.
package stage

import "context"

// Registered stage names.
const (
	NameExtract   = "extract"
	NameLuaFilter = "lua-filter"
	NameAggregate = "aggregate"
	NameRender    = "render"
	NameExtname   = "extname"
)

// Stage transforms one record into zero or more records.
type Stage interface {
	Name() string
	Process(ctx context.Context, rec *Record) ([]*Record, error)
}

// Finalizer is implemented by barrier stages that emit once their input is
// exhausted. A nil record means nothing to emit.
type Finalizer interface {
	Finalize(ctx context.Context) (*Record, error)
}

// Options configures stage construction and the channels joining stages.
type Options struct {
	// Buffer is the capacity of the channel feeding each stage.
	Buffer int
	// FlattenDepth is how far aggregation flattens nested sequences.
	FlattenDepth int
}

// DefaultOptions returns the options used when a job does not override them.
func DefaultOptions() Options {
	return Options{Buffer: 1, FlattenDepth: 1}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Buffer < 1 {
		o.Buffer = d.Buffer
	}
	if o.FlattenDepth < 0 {
		o.FlattenDepth = d.FlattenDepth
	}
	return o
}
