// Package tmpl renders doc data through user templates.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
)

// Engine renders a template source against data.
type Engine interface {
	Render(src string, data map[string]any) (string, error)
}

// Text is the text/template engine. Missing keys are errors.
type Text struct {
	md goldmark.Markdown
}

// NewText returns a Text engine with the gendoc helper functions.
func NewText() *Text {
	return &Text{md: goldmark.New()}
}

// Render implements Engine.
func (e *Text) Render(src string, data map[string]any) (string, error) {
	tpl, err := template.New("doc").Funcs(e.funcs()).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

func (e *Text) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": e.markdown,
		"join": func(sep string, items []string) string {
			return strings.Join(items, sep)
		},
		"trim": strings.TrimSpace,
	}
}

func (e *Text) markdown(s string) (string, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(s), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
