// Package translate orchestrates one file's journey through
// parse -> transform -> serialize -> post-process (spec section 5: "single-
// threaded cooperative per file"). It defines the spec section 7 error
// taxonomy as Go error types, following the teacher's CLIError/Wrap pattern
// (core/errorfmt.go) so a caller can distinguish failure kinds without
// string-matching messages.
package translate

import (
	"fmt"

	"github.com/oxhq/tspyc/internal/grammar"
	"github.com/oxhq/tspyc/internal/jsparser"
	"github.com/oxhq/tspyc/internal/postprocess"
	"github.com/oxhq/tspyc/internal/pyserialize"
	"github.com/oxhq/tspyc/internal/transform"
)

// ParseError wraps a jsparser.ParseError with the path of the file it came
// from, so a caller aggregating results across files doesn't need to carry
// the path alongside the error separately.
type ParseError struct {
	Path string
	Err  *jsparser.ParseError
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransformError wraps a transform.TransformError with the path of the file
// it came from.
type TransformError struct {
	Path string
	Err  *transform.TransformError
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *TransformError) Unwrap() error { return e.Err }

// ConfigError is fatal for the whole run (invalid --type, or an impossible
// combination of flags): spec section 7.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config error: " + e.Msg }

// Result is one file's successful translation output.
type Result struct {
	Path   string
	Python string
}

// File translates one source file's text (already read from disk — I/O
// failures are the caller's IOError to raise, per spec section 7) in the
// given dialect, returning Python source text ready to be written.
func File(path, src string, dialect grammar.Dialect, snakeCase bool) (*Result, error) {
	g, err := grammar.Load(dialect)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	p, err := jsparser.New(dialect, src)
	if err != nil {
		if pe, ok := err.(*jsparser.ParseError); ok {
			return nil, &ParseError{Path: path, Err: pe}
		}
		return nil, &ParseError{Path: path, Err: &jsparser.ParseError{Msg: err.Error()}}
	}
	root, err := p.Parse()
	if err != nil {
		if pe, ok := err.(*jsparser.ParseError); ok {
			return nil, &ParseError{Path: path, Err: pe}
		}
		return nil, &ParseError{Path: path, Err: &jsparser.ParseError{Msg: err.Error()}}
	}

	t := transform.New(g, snakeCase)
	mod, err := t.TransformFile(root)
	if err != nil {
		if te, ok := err.(*transform.TransformError); ok {
			return nil, &TransformError{Path: path, Err: te}
		}
		return nil, &TransformError{Path: path, Err: &transform.TransformError{Msg: err.Error()}}
	}

	raw := pyserialize.Serialize(mod)
	final := postprocess.Apply(raw)
	return &Result{Path: path, Python: final}, nil
}
