package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/flarebyte/gendoc/internal/failure"
)

func TestAggregate_ConcatenatesInOrder(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregate(DefaultOptions())
	inputs := []*Record{
		{Base: "src", Path: "a/button.css", Contents: []byte(`[{"title":"a","description":"","examples":[]}]`)},
		{Base: "src", Path: "b/card.css", Contents: []byte(`[{"title":"b","description":"","examples":["x"]},{"title":"c","description":"","examples":[]}]`)},
		{Base: "src", Path: "c/empty.css", Contents: []byte(`[]`)},
	}
	for _, in := range inputs {
		out, err := agg.Process(ctx, in)
		if err != nil || len(out) != 0 {
			t.Fatalf("process must buffer: out=%v err=%v", out, err)
		}
	}
	rec, err := agg.Finalize(ctx)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	want := `[{"title":"a","description":"","examples":[]},{"title":"b","description":"","examples":["x"]},{"title":"c","description":"","examples":[]}]`
	if string(rec.Contents) != want {
		t.Fatalf("unexpected aggregate\nwant: %s\n got: %s", want, string(rec.Contents))
	}
	if rec.Path != "a/concat.css" || rec.Base != "src" {
		t.Fatalf("aggregate must be named after the first record: %+v", rec)
	}
}

func TestAggregate_DropsInvalidValues(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregate(DefaultOptions())
	_, _ = agg.Process(ctx, &Record{Path: "a.json", Contents: []byte(`{"title":"solo","description":"d","examples":[]}`)})
	_, _ = agg.Process(ctx, &Record{Path: "b.json", Contents: []byte(`[1,{"title":"x"},[{"title":"deep","description":"","examples":[]}]]`)})
	rec, err := agg.Finalize(ctx)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if string(rec.Contents) != `[{"title":"solo","description":"d","examples":[]}]` {
		t.Fatalf("unexpected aggregate: %s", string(rec.Contents))
	}
}

func TestAggregate_NoInputEmitsNothing(t *testing.T) {
	rec, err := NewAggregate(DefaultOptions()).Finalize(context.Background())
	if err != nil || rec != nil {
		t.Fatalf("expected nothing, got %+v %v", rec, err)
	}
}

func TestAggregate_MalformedJSONFails(t *testing.T) {
	agg := NewAggregate(DefaultOptions())
	_, err := agg.Process(context.Background(), &Record{Path: "bad.json", Contents: []byte(`[{`)})
	if !errors.Is(err, failure.ErrInvalidDoc) {
		t.Fatalf("expected ErrInvalidDoc, got %v", err)
	}
}
