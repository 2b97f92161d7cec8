package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json", Output: &buf})
	log.Debug().Msg("hidden")
	log.Info().Str("job", "0").Msg("job started")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "job started" || entry["job"] != "0" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf})
	log.Warn().Msg("careful")
	if !bytes.Contains(buf.Bytes(), []byte("careful")) || bytes.HasPrefix(buf.Bytes(), []byte("{")) {
		t.Fatalf("unexpected console output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel || ParseLevel("bogus") != zerolog.WarnLevel {
		t.Fatalf("unexpected level mapping")
	}
}

func TestIsTerminal_FilesAndBuffers(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Fatalf("a buffer is not a terminal")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Fatalf("a regular file is not a terminal")
	}
	logger := New(Options{Output: f})
	logger.Warn().Msg("plain")
	b, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(b, []byte("\x1b[")) {
		t.Fatalf("console output to a file must not be colored: %q", b)
	}
}
