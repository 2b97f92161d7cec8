package stage

import (
	"context"
	"errors"

	"github.com/flarebyte/gendoc/internal/doc"
	"github.com/flarebyte/gendoc/internal/failure"
	"github.com/flarebyte/gendoc/internal/tmpl"
)

// Render binds a record's doc data to a fixed template.
type Render struct {
	src    string
	engine tmpl.Engine
}

// NewRender returns a Render stage for the template source.
func NewRender(src string, engine tmpl.Engine) *Render {
	return &Render{src: src, engine: engine}
}

func (s *Render) Name() string { return NameRender }

func (s *Render) Process(_ context.Context, rec *Record) ([]*Record, error) {
	data, err := bindDocs(rec.Contents)
	if err != nil {
		return nil, failure.New(failure.ErrInvalidDoc, NameRender, rec.Path, err)
	}
	out, err := s.engine.Render(s.src, data)
	if err != nil {
		return nil, failure.New(failure.ErrTemplateRender, NameRender, rec.Path, err)
	}
	rec.Contents = []byte(out)
	return []*Record{rec}, nil
}

// bindDocs shapes doc data as {"doc": ...} or {"docs": [...]}.
func bindDocs(contents []byte) (map[string]any, error) {
	docs, single, err := doc.Decode(contents)
	if err != nil {
		return nil, err
	}
	if single {
		return map[string]any{"doc": docs[0].Map()}, nil
	}
	list := make([]map[string]any, len(docs))
	for i, d := range docs {
		list[i] = d.Map()
	}
	return map[string]any{"docs": list}, nil
}

func init() {
	Register(NameRender, func(d Deps) (Stage, error) {
		if d.Engine == nil {
			return nil, failure.New(failure.ErrConfig, NameRender, "", errors.New("no template engine"))
		}
		return NewRender(d.Template, d.Engine), nil
	})
}
