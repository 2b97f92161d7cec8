package stage

import (
	"path/filepath"
	"testing"
)

func TestRecord_PathHelpers(t *testing.T) {
	r := &Record{Base: "/src", Path: "components/button.css", Contents: []byte("x")}
	if r.Ext() != ".css" || r.Stem() != "button" || r.Basename() != "button.css" {
		t.Fatalf("unexpected path parts: %q %q %q", r.Ext(), r.Stem(), r.Basename())
	}
	r.SetExt(".html")
	if r.Path != "components/button.html" {
		t.Fatalf("SetExt: %q", r.Path)
	}
	r.SetStem("concat")
	if r.Path != "components/concat.html" {
		t.Fatalf("SetStem: %q", r.Path)
	}
	if r.AbsPath() != filepath.Join("/src", "components", "concat.html") {
		t.Fatalf("AbsPath: %q", r.AbsPath())
	}
}

func TestRecord_SetExtWithoutDirectory(t *testing.T) {
	r := &Record{Path: "a.css"}
	r.SetStem("b")
	r.SetExt("")
	if r.Path != "b" {
		t.Fatalf("unexpected path: %q", r.Path)
	}
}

func TestRecord_CloneResetsContents(t *testing.T) {
	r := &Record{Base: "b", Path: "p.css", Contents: []byte("data")}
	c := r.Clone()
	if c == r || c.Base != "b" || c.Path != "p.css" || c.Contents != nil {
		t.Fatalf("unexpected clone: %+v", c)
	}
	c.Path = "other"
	if r.Path != "p.css" {
		t.Fatalf("clone shares state with original")
	}
}
