package stage

import (
	"context"
	"errors"

	"github.com/flarebyte/gendoc/internal/doc"
	"github.com/flarebyte/gendoc/internal/failure"
)

// LuaFilter keeps the docs for which a Lua expression over the global doc is
// truthy. A record holding a single doc that is filtered out is dropped.
type LuaFilter struct {
	code    string
	sandbox LuaSandbox
}

// NewLuaFilter wraps expressions without an explicit return.
func NewLuaFilter(code string, sandbox LuaSandbox) *LuaFilter {
	if !containsReturn(code) {
		code = "return (" + code + ")"
	}
	return &LuaFilter{code: code, sandbox: sandbox}
}

func (s *LuaFilter) Name() string { return NameLuaFilter }

func (s *LuaFilter) Process(ctx context.Context, rec *Record) ([]*Record, error) {
	docs, single, err := doc.Decode(rec.Contents)
	if err != nil {
		return nil, failure.New(failure.ErrInvalidDoc, NameLuaFilter, rec.Path, err)
	}
	kept := make([]doc.Doc, 0, len(docs))
	for _, d := range docs {
		keep, err := runLuaPredicate(ctx, s.sandbox, rec.Path, map[string]any{
			"doc":  d.Map(),
			"path": rec.Path,
		}, s.code)
		if err != nil {
			return nil, failure.New(failure.ErrFilter, NameLuaFilter, rec.Path, err)
		}
		if keep {
			kept = append(kept, d)
		}
	}
	var out any = kept
	if single {
		if len(kept) == 0 {
			return nil, nil
		}
		out = kept[0]
	}
	b, err := doc.Marshal(out)
	if err != nil {
		return nil, failure.New(failure.ErrInvalidDoc, NameLuaFilter, rec.Path, err)
	}
	rec.Contents = b
	return []*Record{rec}, nil
}

func init() {
	Register(NameLuaFilter, func(d Deps) (Stage, error) {
		if d.Filter == "" {
			return nil, failure.New(failure.ErrConfig, NameLuaFilter, "", errors.New("empty filter"))
		}
		return NewLuaFilter(d.Filter, d.Sandbox), nil
	})
}
