package plan

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flarebyte/gendoc/internal/config"
)

func sampleConfig() config.Config {
	return config.Config{Jobs: []config.Job{
		{SourceFiles: "src/**/*.css", Template: "tpl/page.html.tmpl", OutputDir: "out"},
		{SourceFiles: "src/*.css", Template: "tpl/all.md.tmpl", OutputFile: "all.md", Filter: "true"},
	}}
}

func TestWrite_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	if err := write(&buf, "json", Build(sampleConfig())); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per job, got %q", buf.String())
	}
	want := `{"index":0,"source":"src/**/*.css","gitignore":false,"stages":["extract","render","extname"],"template":"tpl/page.html.tmpl","extension":".html","outputDir":"out"}`
	if lines[0] != want {
		t.Fatalf("unexpected plan\nwant: %s\n got: %s", want, lines[0])
	}
	if !strings.Contains(lines[1], `"stages":["extract","lua-filter","aggregate","render","extname"]`) {
		t.Fatalf("unexpected second plan: %s", lines[1])
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := write(&buf, "yaml", Build(sampleConfig())[:1]); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "- index: 0\n  source: src/**/*.css\n  gitignore: false\n  stages:\n    - extract\n    - render\n    - extname\n  template: tpl/page.html.tmpl\n  extension: .html\n  outputDir: out\n"
	if buf.String() != want {
		t.Fatalf("unexpected yaml\nwant:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestBuild_ExtensionMatchesWrittenFiles(t *testing.T) {
	cfg := config.Config{Jobs: []config.Job{{SourceFiles: "src/*.css", Template: "tpl/list.tmpl", OutputDir: "out", Extension: "md"}}}
	if got := Build(cfg)[0].Extension; got != ".md" {
		t.Fatalf("expected normalized extension .md, got %q", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := write(&bytes.Buffer{}, "toml", nil); err == nil {
		t.Fatalf("expected error")
	}
}
