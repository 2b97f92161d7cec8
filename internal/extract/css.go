package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/flarebyte/gendoc/internal/doc"
	"github.com/flarebyte/gendoc/internal/doccomment"
)

// NodeKind classifies a top-level stylesheet node.
type NodeKind int

const (
	NodeOther NodeKind = iota
	NodeComment
	NodeRule
)

// Node is one top-level stylesheet node in document order. Text holds the
// full comment including delimiters; Selectors the rule's selector list.
type Node struct {
	Kind      NodeKind
	Text      string
	Selectors []string
}

// StyleParser produces the top-level node list of a stylesheet.
type StyleParser interface {
	Parse(src []byte) ([]Node, error)
}

// CSS extracts docs from stylesheets: a doc comment documents the style rule
// that immediately follows it.
type CSS struct {
	Parser StyleParser
}

// Extract implements Extractor.
func (c CSS) Extract(raw []byte) ([]doc.Doc, error) {
	p := c.Parser
	if p == nil {
		p = GrammarParser{}
	}
	nodes, err := p.Parse(raw)
	if err != nil {
		return nil, err
	}
	docs := []doc.Doc{}
	for i := 0; i+1 < len(nodes); i++ {
		n, next := nodes[i], nodes[i+1]
		if n.Kind != NodeComment || next.Kind != NodeRule || !isDocComment(n.Text) {
			continue
		}
		block, err := doccomment.Parse(n.Text)
		if err != nil {
			return nil, err
		}
		var examples []string
		for _, t := range block.Tags {
			if t.Tag == "example" {
				examples = append(examples, t.Description)
			}
		}
		docs = append(docs, doc.New(strings.Join(next.Selectors, ", "), block.Description, examples))
	}
	return docs, nil
}

// isDocComment reports whether the comment body, without its delimiters,
// starts with the doc marker.
func isDocComment(text string) bool {
	body := strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	return strings.HasPrefix(strings.TrimLeft(body, " \t\r\n\f"), "*")
}

// GrammarParser is the StyleParser backed by the tdewolff CSS grammar.
type GrammarParser struct{}

// Parse walks the grammar stream and keeps depth so nested rules and
// comments inside blocks are not reported as top-level nodes. Selectors are
// sliced from the source so they keep the whitespace as written.
func (GrammarParser) Parse(src []byte) ([]Node, error) {
	p := css.NewParser(parse.NewInputBytes(src), false)
	var (
		nodes   []Node
		pending []string
		depth   int
		start   int
	)
	for {
		gt, _, data := p.Next()
		end := p.Offset()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if err == io.EOF {
				return nodes, nil
			}
			if err != nil {
				return nil, fmt.Errorf("css: %w", err)
			}
		case css.CommentGrammar:
			if depth == 0 {
				nodes = append(nodes, Node{Kind: NodeComment, Text: string(data)})
			}
		case css.QualifiedRuleGrammar:
			pending = append(pending, prelude(src, start, end))
		case css.BeginRulesetGrammar:
			sel := append(pending, prelude(src, start, end))
			pending = nil
			if depth == 0 {
				nodes = append(nodes, Node{Kind: NodeRule, Selectors: nonEmpty(sel)})
			}
			depth++
		case css.BeginAtRuleGrammar:
			if depth == 0 {
				nodes = append(nodes, Node{Kind: NodeOther})
			}
			depth++
		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			if depth > 0 {
				depth--
			}
		case css.AtRuleGrammar:
			if depth == 0 {
				nodes = append(nodes, Node{Kind: NodeOther})
			}
		}
		start = end
	}
}

// prelude returns src[start:end] without the trailing ',' or '{' that ended
// the selector.
func prelude(src []byte, start, end int) string {
	if end > len(src) {
		end = len(src)
	}
	if start >= end {
		return ""
	}
	raw := src[start:end]
	if n := len(raw); n > 0 && (raw[n-1] == ',' || raw[n-1] == '{') {
		raw = raw[:n-1]
	}
	return string(bytes.TrimSpace(raw))
}

func nonEmpty(sel []string) []string {
	out := sel[:0]
	for _, s := range sel {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
