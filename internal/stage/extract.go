package stage

import (
	"context"
	"errors"

	"github.com/flarebyte/gendoc/internal/doc"
	"github.com/flarebyte/gendoc/internal/extract"
	"github.com/flarebyte/gendoc/internal/failure"
)

// Extract replaces raw source contents with the serialized docs found in them.
type Extract struct {
	extractor extract.Extractor
}

// NewExtract returns an Extract stage using e.
func NewExtract(e extract.Extractor) *Extract { return &Extract{extractor: e} }

func (s *Extract) Name() string { return NameExtract }

func (s *Extract) Process(_ context.Context, rec *Record) ([]*Record, error) {
	docs, err := s.extractor.Extract(rec.Contents)
	if err != nil {
		return nil, failure.New(failure.ErrParse, NameExtract, rec.Path, err)
	}
	if docs == nil {
		docs = []doc.Doc{}
	}
	b, err := doc.Marshal(docs)
	if err != nil {
		return nil, failure.New(failure.ErrInvalidDoc, NameExtract, rec.Path, err)
	}
	rec.Contents = b
	return []*Record{rec}, nil
}

func init() {
	Register(NameExtract, func(d Deps) (Stage, error) {
		if d.Extractor == nil {
			return nil, failure.New(failure.ErrConfig, NameExtract, "", errors.New("no extractor"))
		}
		return NewExtract(d.Extractor), nil
	})
}
