// Package extract turns raw source files into documentation entries.
package extract

import (
	"path"
	"strings"
	"sync"

	"github.com/flarebyte/gendoc/internal/doc"
)

// Extractor converts the raw contents of one source file into docs.
type Extractor interface {
	Extract(raw []byte) ([]doc.Doc, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Extractor{}
)

// Register adds an extractor for a file extension (".css").
func Register(ext string, e Extractor) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(ext)] = e
}

// Lookup returns the extractor registered for ext.
func Lookup(ext string) (Extractor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[strings.ToLower(ext)]
	return e, ok
}

// ForPattern returns the extractor matching the extension a source glob ends
// with, if any.
func ForPattern(pattern string) (Extractor, string, bool) {
	ext := path.Ext(pattern)
	if ext == "" {
		return nil, "", false
	}
	e, ok := Lookup(ext)
	return e, strings.TrimPrefix(strings.ToLower(ext), "."), ok
}

func init() { Register(".css", CSS{}) }
