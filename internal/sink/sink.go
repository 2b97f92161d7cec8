// Package sink writes the records leaving a pipeline. Every write is staged
// in a temporary file next to its destination and only renamed into place on
// Commit, so a failed job leaves no new output behind.
package sink

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/flarebyte/gendoc/internal/failure"
	"github.com/flarebyte/gendoc/internal/stage"
)

const sinkStage = "sink"

var (
	errPathInvalid = errors.New("path escapes the output directory")
	errDestIsDir   = errors.New("destination is a directory")
)

// Sink receives the final records of one job.
type Sink interface {
	Write(ctx context.Context, rec *stage.Record) error
	Commit() error
	Abort()
}

type staged struct {
	tmp  string
	dest string
}

type stager struct {
	files []staged
}

func (s *stager) stage(ctx context.Context, dest string, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return failure.New(failure.ErrIO, sinkStage, dest, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".gendoc-*")
	if err != nil {
		return failure.New(failure.ErrIO, sinkStage, dest, err)
	}
	tmpPath := tmp.Name()
	_, werr := tmp.Write(b)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmpPath, 0o644)
	}
	if werr != nil {
		_ = os.Remove(tmpPath)
		return failure.New(failure.ErrIO, sinkStage, dest, werr)
	}
	s.files = append(s.files, staged{tmp: tmpPath, dest: dest})
	return nil
}

// Commit moves every staged file into place. If one rename fails, the files
// already committed are rolled back so the job leaves its previous output.
func (s *stager) Commit() error {
	var done []replaced
	for i, f := range s.files {
		r, err := replace(f)
		if err != nil {
			rollback(done)
			s.files = s.files[i:]
			s.Abort()
			return failure.New(failure.ErrIO, sinkStage, f.dest, err)
		}
		done = append(done, r)
	}
	for _, r := range done {
		if r.backup != "" {
			_ = os.Remove(r.backup)
		}
	}
	s.files = nil
	return nil
}

type replaced struct {
	dest   string
	backup string
}

// replace moves an existing dest aside and renames the staged file over it.
func replace(f staged) (replaced, error) {
	r := replaced{dest: f.dest}
	fi, err := os.Lstat(f.dest)
	switch {
	case err == nil && fi.IsDir():
		return r, errDestIsDir
	case err == nil:
		r.backup = f.tmp + ".bak"
		if err := os.Rename(f.dest, r.backup); err != nil {
			return r, err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return r, err
	}
	if err := os.Rename(f.tmp, f.dest); err != nil {
		if r.backup != "" {
			_ = os.Rename(r.backup, f.dest)
		}
		return r, err
	}
	return r, nil
}

func rollback(done []replaced) {
	for i := len(done) - 1; i >= 0; i-- {
		r := done[i]
		if r.backup != "" {
			_ = os.Rename(r.backup, r.dest)
		} else {
			_ = os.Remove(r.dest)
		}
	}
}

func (s *stager) Abort() {
	for _, f := range s.files {
		_ = os.Remove(f.tmp)
	}
	s.files = nil
}

// Dir writes one file per record under root at the record's relative path.
type Dir struct {
	stager
	root string
}

// NewDir returns a sink rooted at dir.
func NewDir(dir string) *Dir { return &Dir{root: dir} }

func (d *Dir) Write(ctx context.Context, rec *stage.Record) error {
	dest, err := mapPath(d.root, rec.Path)
	if err != nil {
		return failure.New(failure.ErrIO, sinkStage, rec.Path, err)
	}
	return d.stage(ctx, dest, rec.Contents)
}

// mapPath joins rel under root, rejecting absolute and escaping paths.
func mapPath(root, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || clean == ".." || filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errPathInvalid
	}
	return filepath.Join(root, clean), nil
}

// File writes exactly one record to a fixed path.
type File struct {
	stager
	path    string
	written bool
}

// NewFile returns a sink writing to path.
func NewFile(path string) *File { return &File{path: path} }

func (f *File) Write(ctx context.Context, rec *stage.Record) error {
	if f.written {
		return failure.Newf(failure.ErrIO, sinkStage, f.path, "more than one record for a single output file (%s)", rec.Path)
	}
	f.written = true
	return f.stage(ctx, f.path, rec.Contents)
}
