package e2e

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/flarebyte/gendoc/cmd/gendoc/root"
	"github.com/flarebyte/gendoc/internal/failure"
	"github.com/flarebyte/gendoc/internal/testutil"
)

type runResult struct {
	err    error
	stdout string
	stderr string
}

func runCLI(args ...string) runResult {
	var stdout, stderr bytes.Buffer
	err := root.ExecuteWith(args, &stdout, &stderr)
	return runResult{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

func fixture(t *testing.T) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), "site")
	if err := testutil.CopyTree(filepath.Join("..", "..", "testdata", "site"), dst); err != nil {
		t.Fatalf("copy fixture: %v", err)
	}
	return dst
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(b)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

func TestRun_Site(t *testing.T) {
	dir := fixture(t)
	res := runCLI("run", "--config", filepath.Join(dir, "gendoc.json"))
	if res.err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", res.err, res.stderr)
	}
	if strings.TrimSpace(res.stdout) != `{"ok":true,"jobs":[{"index":0,"ok":true},{"index":1,"ok":true},{"index":2,"ok":true}]}` {
		t.Fatalf("unexpected summary: %s", res.stdout)
	}

	files, err := testutil.FileList(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantFiles := []string{"data/extra.txt", "index.md", "pages/button.html", "pages/forms/input.html"}
	if !reflect.DeepEqual(files, wantFiles) {
		t.Fatalf("unexpected outputs: %v", files)
	}

	page := readFile(t, filepath.Join(dir, "out", "pages", "button.html"))
	for _, want := range []string{
		"<h2>.btn, .btn-primary</h2>",
		"<p>Primary action button.</p>",
		`<pre><button class="btn">Save</button></pre><pre><button class="btn" disabled>Save</button></pre>`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("button page misses %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "hover") {
		t.Fatalf("undocumented rule leaked into the page:\n%s", page)
	}

	wantIndex := "# Components\n\n" +
		"- `.btn, .btn-primary`: Primary action button. (2 examples)\n" +
		"- `.input`: Text input. @example is only a tag at line start. (0 examples)\n"
	if got := readFile(t, filepath.Join(dir, "out", "index.md")); got != wantIndex {
		t.Fatalf("unexpected index\nwant:\n%s\ngot:\n%s", wantIndex, got)
	}
	if got := readFile(t, filepath.Join(dir, "out", "data", "extra.txt")); got != ".extra: Hand written entry\n" {
		t.Fatalf("unexpected data page: %q", got)
	}
}

func TestRun_Deterministic(t *testing.T) {
	var outputs []map[string]string
	for i := 0; i < 2; i++ {
		dir := fixture(t)
		if res := runCLI("run", "--config", filepath.Join(dir, "gendoc.json"), "--workers", "3"); res.err != nil {
			t.Fatalf("run %d failed: %v", i, res.err)
		}
		files, err := testutil.FileList(filepath.Join(dir, "out"))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		snap := map[string]string{}
		for _, f := range files {
			snap[f] = readFile(t, filepath.Join(dir, "out", filepath.FromSlash(f)))
		}
		outputs = append(outputs, snap)
	}
	if !reflect.DeepEqual(outputs[0], outputs[1]) {
		t.Fatalf("outputs differ between runs")
	}
}

func TestRun_SingleJob(t *testing.T) {
	dir := fixture(t)
	res := runCLI("run", "--config", filepath.Join(dir, "gendoc.json"), "--job", "1")
	if res.err != nil {
		t.Fatalf("run failed: %v", res.err)
	}
	files, _ := testutil.FileList(filepath.Join(dir, "out"))
	if !reflect.DeepEqual(files, []string{"index.md"}) {
		t.Fatalf("expected only the selected job output, got %v", files)
	}
	if res := runCLI("run", "--config", filepath.Join(dir, "gendoc.json"), "--job", "7"); exitCode(res.err) != 1 {
		t.Fatalf("expected out of range job to fail, got %v", res.err)
	}
}

func TestRun_FailingJobIsIsolated(t *testing.T) {
	dir := fixture(t)
	if err := os.WriteFile(filepath.Join(dir, "data", "broken.json"), []byte(`{"title":`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := filepath.Join(dir, "partial.json")
	content := `{"jobs":[
		{"sourceFiles":"data/*.json","template":"templates/index.md.tmpl","outputFile":"out/broken.md"},
		{"sourceFiles":"styles/*.css","template":"templates/page.html.tmpl","outputDir":"out/pages"}
	]}`
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	res := runCLI("run", "--config", cfg, "--log-format", "json", "--log-level", "error")
	if exitCode(res.err) != 1 {
		t.Fatalf("expected exit code 1, got %v", res.err)
	}
	if !strings.HasPrefix(res.err.Error(), "1 of 2 jobs failed; job 0: ") || !errors.Is(res.err, failure.ErrInvalidDoc) {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "broken.md")); !os.IsNotExist(err) {
		t.Fatalf("failed job wrote its output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "pages", "button.html")); err != nil {
		t.Fatalf("sibling job output missing: %v", err)
	}
	var entry map[string]any
	line := strings.SplitN(strings.TrimSpace(res.stderr), "\n", 2)[0]
	if err := json.Unmarshal([]byte(line), &entry); err != nil || entry["message"] != "job failed" || entry["kind"] != "invalid doc" {
		t.Fatalf("expected a structured failure log, got %q (%v)", res.stderr, err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "gendoc.json")
	if err := os.WriteFile(cfg, []byte(`{"jobs":[{"sourceFiles":"a","template":"t"}]}`), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	res := runCLI("run", "--config", cfg)
	if exitCode(res.err) != 1 || !errors.Is(res.err, failure.ErrConfig) {
		t.Fatalf("expected config error, got %v", res.err)
	}
	if res.stdout != "" {
		t.Fatalf("no job may run on invalid config, got %q", res.stdout)
	}
}

func TestPlan_Site(t *testing.T) {
	dir := fixture(t)
	res := runCLI("plan", "--config", filepath.Join(dir, "gendoc.json"))
	if res.err != nil {
		t.Fatalf("plan failed: %v", res.err)
	}
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 plans, got %q", res.stdout)
	}
	var p struct {
		Stages    []string `json:"stages"`
		Extension string   `json:"extension"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(p.Stages, []string{"extract", "aggregate", "render", "extname"}) || p.Extension != ".md" {
		t.Fatalf("unexpected plan: %+v", p)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Fatalf("plan must not write output")
	}
}

func TestVersion(t *testing.T) {
	res := runCLI("version", "--short")
	if res.err != nil || !strings.HasPrefix(res.stdout, "gendoc ") {
		t.Fatalf("unexpected version output: %q %v", res.stdout, res.err)
	}
}
