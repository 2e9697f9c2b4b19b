// Package source decodes YAML and JSON documents into the generic data tree
// accepted by goshape.Validate: map[string]any, []any, string, bool, int64,
// float64 and nil.
//
// Both decoders detect duplicate mapping keys and bound nesting depth while
// decoding, which a plain yaml.Unmarshal or json.Unmarshal cannot do.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/goshape"
)

// Format names a document syntax.
type Format int

const (
	// FormatAuto picks the format from the file extension (DecodeFile) or
	// from the first non-space byte.
	FormatAuto Format = iota
	FormatYAML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// ParseFormat parses "yaml", "yml", "json" or "auto".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatAuto, fmt.Errorf("source: unknown format %q", s)
}

// FormatOf returns the format implied by a file name.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// Issue codes.
const (
	CodeDuplicateKey = "duplicate_key"
	CodeMaxDepth     = "max_depth"
	CodeTooLarge     = "too_large"
	CodeSyntax       = "syntax"
)

// Issue describes a problem in the input document. Path is a JSON Pointer;
// Line and Column are 1-based and only set for YAML input.
type Issue struct {
	Code    string
	Path    string
	Line    int
	Column  int
	Message string
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", i.Line, i.Column)
	}
	if i.Path != "" {
		b.WriteString(i.Path)
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

// Error is a fatal decoding issue.
type Error struct {
	Issue
	Err error
}

func (e *Error) Error() string { return "source: " + e.Issue.String() }

func (e *Error) Unwrap() error { return e.Err }

// Options controls decoding. The zero value decodes leniently with the
// default depth bound.
type Options struct {
	Format Format
	// Strict turns duplicate keys into errors. Otherwise the later value wins
	// and Warn is called.
	Strict bool
	// MaxDepth bounds container nesting. Zero selects goshape.DefaultMaxDepth;
	// a negative value disables the check.
	MaxDepth int
	// MaxBytes rejects larger inputs; zero means unlimited.
	MaxBytes int64
	// UseNumber keeps JSON numbers as json.Number instead of int64/float64.
	UseNumber bool
	// Warn receives non-fatal issues.
	Warn func(Issue)
}

func (o Options) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return goshape.DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	}
	return o.MaxDepth
}

func (o Options) warn(is Issue) {
	if o.Warn != nil {
		o.Warn(is)
	}
}

// Decode reads one document from r.
func Decode(r io.Reader, opt Options) (any, error) {
	docs, err := decode(r, opt, false)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// DecodeAll reads every document of a YAML stream ("---" separated). JSON
// input always yields exactly one document.
func DecodeAll(r io.Reader, opt Options) ([]any, error) {
	return decode(r, opt, true)
}

// DecodeBytes decodes one document from b.
func DecodeBytes(b []byte, opt Options) (any, error) {
	return Decode(bytes.NewReader(b), opt)
}

// DecodeFile decodes one document from the named file. With FormatAuto the
// extension decides the format.
func DecodeFile(path string, opt Options) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if opt.Format == FormatAuto {
		opt.Format = FormatOf(path)
	}
	v, err := Decode(f, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func decode(r io.Reader, opt Options, all bool) ([]any, error) {
	data, err := readLimited(r, opt.MaxBytes)
	if err != nil {
		return nil, err
	}
	format := opt.Format
	if format == FormatAuto {
		format = sniff(data)
	}
	if format == FormatJSON {
		v, err := decodeJSON(data, opt)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}
	yr := newYAMLReader(bytes.NewReader(data), opt)
	if !all {
		v, err := yr.Next()
		if err == io.EOF {
			return []any{nil}, nil
		}
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}
	return yr.ReadAll()
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &Error{Issue: Issue{Code: CodeTooLarge, Message: fmt.Sprintf("input exceeds %d bytes", limit)}}
	}
	return data, nil
}

// sniff treats input starting with '{' or '[' as JSON.
func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}
