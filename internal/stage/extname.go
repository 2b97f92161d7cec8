package stage

import (
	"context"
	"strings"
	"unicode"

	"github.com/flarebyte/gendoc/internal/failure"
)

// Extname rewrites the extension of every record to a fixed value.
type Extname struct {
	ext string
}

// NewExtname normalizes ext to start with "." unless empty. Extensions that
// contain a path separator or whitespace are rejected.
func NewExtname(ext string) (*Extname, error) {
	if strings.ContainsAny(ext, `/\`) || strings.IndexFunc(ext, unicode.IsSpace) >= 0 {
		return nil, failure.Newf(failure.ErrConfig, NameExtname, "", "invalid extension %q", ext)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Extname{ext: ext}, nil
}

// Ext returns the normalized extension.
func (s *Extname) Ext() string { return s.ext }

func (s *Extname) Name() string { return NameExtname }

func (s *Extname) Process(_ context.Context, rec *Record) ([]*Record, error) {
	rec.SetExt(s.ext)
	return []*Record{rec}, nil
}

func init() {
	Register(NameExtname, func(d Deps) (Stage, error) {
		s, err := NewExtname(d.Extension)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
