package stage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/flarebyte/gendoc/internal/doc"
	"github.com/flarebyte/gendoc/internal/failure"
)

// Aggregate is the barrier stage of single-output jobs: it buffers the doc
// data of every record and emits one "concat" record once input ends.
type Aggregate struct {
	depth int
	first *Record
	parts []json.RawMessage
}

// NewAggregate returns an empty aggregation.
func NewAggregate(opts Options) *Aggregate {
	return &Aggregate{depth: opts.normalized().FlattenDepth}
}

func (s *Aggregate) Name() string { return NameAggregate }

// Process accumulates rec and emits nothing.
func (s *Aggregate) Process(_ context.Context, rec *Record) ([]*Record, error) {
	if !json.Valid(rec.Contents) {
		return nil, failure.New(failure.ErrInvalidDoc, NameAggregate, rec.Path, errors.New("malformed JSON"))
	}
	if s.first == nil {
		s.first = rec.Clone()
		s.first.SetStem("concat")
	}
	s.parts = append(s.parts, json.RawMessage(rec.Contents))
	return nil, nil
}

// Finalize flattens the buffered data, keeps the valid docs and emits them as
// one record. Without input it emits nothing.
func (s *Aggregate) Finalize(_ context.Context) (*Record, error) {
	if s.first == nil {
		return nil, nil
	}
	docs := []doc.Doc{}
	for _, v := range doc.Flatten(s.parts, s.depth) {
		if d, ok := doc.Valid(v); ok {
			docs = append(docs, d)
		}
	}
	b, err := doc.Marshal(docs)
	if err != nil {
		return nil, failure.New(failure.ErrInvalidDoc, NameAggregate, s.first.Path, err)
	}
	out := s.first
	out.Contents = b
	s.first, s.parts = nil, nil
	return out, nil
}

func init() {
	Register(NameAggregate, func(d Deps) (Stage, error) { return NewAggregate(d.Options), nil })
}
