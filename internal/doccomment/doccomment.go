// Package doccomment parses block documentation comments of the form
//
//	/**
//	 * Description text.
//	 * @tag tag description
//	 */
//
// into a description and an ordered list of tags.
package doccomment

import (
	"errors"
	"strings"
)

// Tag is one @tag entry of a comment.
type Tag struct {
	Tag         string
	Description string
}

// Block is a parsed documentation comment.
type Block struct {
	Description string
	Tags        []Tag
}

// ErrNotComment is returned when the text is not wrapped in comment delimiters.
var ErrNotComment = errors.New("doc comment must start with /* and end with */")

// Parse splits a delimited comment into its description and tags.
// Lines before the first tag form the description. A tag's description is the
// rest of its line plus every following line up to the next tag.
func Parse(text string) (Block, error) {
	body := strings.TrimSpace(text)
	if !strings.HasPrefix(body, "/*") || !strings.HasSuffix(body, "*/") || len(body) < 4 {
		return Block{}, ErrNotComment
	}
	body = body[2 : len(body)-2]

	var (
		b       Block
		desc    []string
		current *Tag
		tagBody []string
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Description = strings.TrimSpace(strings.Join(tagBody, "\n"))
		b.Tags = append(b.Tags, *current)
		current, tagBody = nil, nil
	}
	for _, line := range strings.Split(body, "\n") {
		line = stripDecoration(line)
		if name, rest, ok := tagLine(line); ok {
			flush()
			current = &Tag{Tag: name}
			tagBody = []string{rest}
			continue
		}
		if current != nil {
			tagBody = append(tagBody, line)
		} else {
			desc = append(desc, line)
		}
	}
	flush()
	b.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	return b, nil
}

// stripDecoration drops the leading whitespace, one "*" and one space.
func stripDecoration(line string) string {
	line = strings.TrimRight(line, " \t\r")
	line = strings.TrimLeft(line, " \t")
	line = strings.TrimPrefix(line, "*")
	return strings.TrimPrefix(line, " ")
}

func tagLine(line string) (name, rest string, ok bool) {
	s := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(s, "@") || len(s) == 1 {
		return "", "", false
	}
	s = s[1:]
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s, "", true
	}
	return s[:end], strings.TrimSpace(s[end:]), true
}
