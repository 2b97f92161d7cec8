// Package source enumerates the files a job's glob matches.
package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/flarebyte/gendoc/internal/failure"
	"github.com/flarebyte/gendoc/internal/stage"
)

const sourceStage = "source"

// Options tunes enumeration.
type Options struct {
	// Gitignore skips files excluded by .gitignore files under the glob base.
	Gitignore bool
}

// Walk reads every regular file matching pattern and hands it to emit as a
// record, lazily and in lexical walk order. The static prefix of the pattern
// becomes the record base. An emit error stops the walk and is returned.
func Walk(ctx context.Context, pattern string, opts Options, emit func(*stage.Record) error) error {
	base, pat := doublestar.SplitPattern(filepath.ToSlash(pattern))
	base = filepath.FromSlash(base)
	var ign *ignorer
	if opts.Gitignore {
		ign = newIgnorer(base)
	}
	var emitErr error
	err := doublestar.GlobWalk(os.DirFS(base), pat, func(p string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ign != nil && ign.match(p, d.IsDir()) {
			return nil
		}
		b, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(p)))
		if err != nil {
			return failure.New(failure.ErrIO, sourceStage, p, err)
		}
		emitErr = emit(&stage.Record{Base: base, Path: p, Contents: b})
		return emitErr
	}, doublestar.WithFilesOnly())
	switch {
	case err == nil:
		return nil
	case emitErr != nil, ctx.Err() != nil, failure.KindOf(err) != nil:
		return err
	default:
		return failure.New(failure.ErrIO, sourceStage, pattern, err)
	}
}
