package stage

import (
	"path"
	"path/filepath"
	"strings"
)

// Record is the unit flowing through a pipeline: one document file.
// Base is the directory the source glob was walked from and Path the
// slash-separated location relative to it, extension included. A stage owns
// a record until it returns it; it must not touch it afterwards.
type Record struct {
	Base     string
	Path     string
	Contents []byte
}

// Ext returns the extension of the record path, including the dot.
func (r *Record) Ext() string { return path.Ext(r.Path) }

// SetExt replaces the extension; an empty ext strips it.
func (r *Record) SetExt(ext string) {
	r.Path = strings.TrimSuffix(r.Path, r.Ext()) + ext
}

// Stem returns the base name without extension.
func (r *Record) Stem() string {
	return strings.TrimSuffix(path.Base(r.Path), r.Ext())
}

// SetStem renames the file keeping its directory and extension.
func (r *Record) SetStem(stem string) {
	dir := path.Dir(r.Path)
	name := stem + r.Ext()
	if dir == "." {
		r.Path = name
		return
	}
	r.Path = dir + "/" + name
}

// Basename returns the last path element.
func (r *Record) Basename() string { return path.Base(r.Path) }

// AbsPath joins Base and Path using the host separator.
func (r *Record) AbsPath() string {
	return filepath.Join(r.Base, filepath.FromSlash(r.Path))
}

// Clone copies the path metadata; contents are reset.
func (r *Record) Clone() *Record {
	return &Record{Base: r.Base, Path: r.Path}
}
