// Package doc holds the documentation entry shared by every pipeline stage
// and its JSON wire form.
package doc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Doc is one normalized documentation entry.
type Doc struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

// New builds a Doc that owns its examples slice; a nil slice becomes empty so
// the wire form always carries an array.
func New(title, description string, examples []string) Doc {
	ex := make([]string, len(examples))
	copy(ex, examples)
	return Doc{Title: title, Description: description, Examples: ex}
}

// Map exposes the doc under its wire keys, the shape templates and scripts see.
func (d Doc) Map() map[string]any {
	ex := d.Examples
	if ex == nil {
		ex = []string{}
	}
	return map[string]any{
		"title":       d.Title,
		"description": d.Description,
		"examples":    ex,
	}
}

// Marshal encodes v as compact JSON without HTML escaping.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Valid reports whether raw is a well-formed doc object and returns it.
// Unknown keys are tolerated.
func Valid(raw json.RawMessage) (Doc, bool) {
	if leading(raw) != '{' {
		return Doc{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Doc{}, false
	}
	var d Doc
	if !stringField(fields["title"], &d.Title) || !stringField(fields["description"], &d.Description) {
		return Doc{}, false
	}
	ex := fields["examples"]
	if leading(ex) != '[' {
		return Doc{}, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(ex, &items); err != nil {
		return Doc{}, false
	}
	d.Examples = make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if !stringField(it, &s) {
			return Doc{}, false
		}
		d.Examples = append(d.Examples, s)
	}
	return d, true
}

// Flatten splices array values into the result, descending depth levels.
// Non-array values are kept as they are.
func Flatten(values []json.RawMessage, depth int) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		if depth > 0 && leading(v) == '[' {
			var inner []json.RawMessage
			if err := json.Unmarshal(v, &inner); err == nil {
				out = append(out, Flatten(inner, depth-1)...)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// Decode reads serialized doc data: either one doc object or a sequence that
// holds only docs once flattened one level. single reports the object form.
func Decode(content []byte) (docs []Doc, single bool, err error) {
	raw := bytes.TrimSpace(content)
	if len(raw) == 0 {
		return nil, false, errors.New("empty content")
	}
	if !json.Valid(raw) {
		return nil, false, errors.New("malformed JSON")
	}
	switch raw[0] {
	case '{':
		d, ok := Valid(raw)
		if !ok {
			return nil, false, errors.New("object is not a doc")
		}
		return []Doc{d}, true, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false, err
		}
		flat := Flatten(items, 1)
		docs = make([]Doc, 0, len(flat))
		for i, it := range flat {
			d, ok := Valid(it)
			if !ok {
				return nil, false, fmt.Errorf("element %d is not a doc", i)
			}
			docs = append(docs, d)
		}
		return docs, false, nil
	default:
		return nil, false, errors.New("expected a doc or a sequence of docs")
	}
}

func stringField(raw json.RawMessage, dst *string) bool {
	if leading(raw) != '"' {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func leading(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
