package failure

import (
	"errors"
	"fmt"
)

// Error kinds. Every job failure unwraps to exactly one of them.
var (
	ErrConfig         = errors.New("config error")
	ErrParse          = errors.New("parse error")
	ErrInvalidDoc     = errors.New("invalid doc")
	ErrTemplateRender = errors.New("template render error")
	ErrIO             = errors.New("io error")
	ErrFilter         = errors.New("filter error")
)

// Error is a stage failure tagged with its kind and the record path, if any.
type Error struct {
	Kind  error
	Stage string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New wraps err with a kind. A nil err yields a bare kind error.
func New(kind error, stage, path string, err error) error {
	return &Error{Kind: kind, Stage: stage, Path: path, Err: err}
}

// Newf is New with a formatted cause.
func Newf(kind error, stage, path, format string, args ...any) error {
	return New(kind, stage, path, fmt.Errorf(format, args...))
}

// KindOf returns the kind an error belongs to, or nil when it carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrConfig, ErrParse, ErrInvalidDoc, ErrTemplateRender, ErrIO, ErrFilter} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
