package failure

import (
	"errors"
	"io/fs"
	"testing"
)

func TestError_UnwrapsKindAndCause(t *testing.T) {
	err := New(ErrIO, "sink", "out/a.html", fs.ErrPermission)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected cause to unwrap, got %v", err)
	}
	if errors.Is(err, ErrParse) {
		t.Fatalf("unexpected kind match")
	}
	want := "sink: io error out/a.html: permission denied"
	if err.Error() != want {
		t.Fatalf("unexpected message\nwant: %s\n got: %s", want, err.Error())
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(Newf(ErrTemplateRender, "render", "", "boom")) != ErrTemplateRender {
		t.Fatalf("expected ErrTemplateRender")
	}
	if KindOf(errors.New("plain")) != nil {
		t.Fatalf("expected nil kind for plain error")
	}
	if KindOf(New(ErrConfig, "", "", nil)).Error() != "config error" {
		t.Fatalf("expected config kind")
	}
}
