package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/goshape/internal/engine"
)

// maxAliasNodes bounds how many nodes alias expansion may produce per
// document ("billion laughs" inputs).
const maxAliasNodes = 1 << 16

// YAMLReader decodes a multi-document YAML stream through yaml.Node so that
// duplicate keys can be reported with their positions.
type YAMLReader struct {
	dec *yaml.Decoder
	opt Options
}

// NewYAMLReader constructs a YAMLReader.
func NewYAMLReader(r io.Reader, opt Options) *YAMLReader { return newYAMLReader(r, opt) }

func newYAMLReader(r io.Reader, opt Options) *YAMLReader {
	return &YAMLReader{dec: yaml.NewDecoder(r), opt: opt}
}

// Next returns the next document. It returns (nil, io.EOF) when the stream
// is exhausted.
func (y *YAMLReader) Next() (any, error) {
	var root yaml.Node
	if err := y.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &Error{Issue: Issue{Code: CodeSyntax, Message: err.Error()}, Err: err}
	}
	w := &yamlWalker{opt: y.opt, maxDepth: y.opt.maxDepth()}
	return w.value(&root, "", 0)
}

// ReadAll reads all remaining documents.
func (y *YAMLReader) ReadAll() ([]any, error) {
	var out []any
	for {
		v, err := y.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

type yamlWalker struct {
	opt      Options
	maxDepth int
	// aliasLevel is non-zero while walking a subtree reached through an alias.
	aliasLevel int
	expanded   int
}

type position struct{ line, col int }

func (w *yamlWalker) value(n *yaml.Node, path string, depth int) (any, error) {
	if err := w.charge(n, path); err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return w.value(n.Content[0], path, depth)
	case yaml.AliasNode:
		w.aliasLevel++
		defer func() { w.aliasLevel-- }()
		return w.value(n.Alias, path, depth)
	case yaml.MappingNode:
		if err := w.enter(path, n, depth); err != nil {
			return nil, err
		}
		return w.mapping(n, path, depth)
	case yaml.SequenceNode:
		if err := w.enter(path, n, depth); err != nil {
			return nil, err
		}
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := w.value(c, engine.JoinPointer(path, strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	}
	return nil, nil
}

// charge counts every node produced by alias expansion against maxAliasNodes.
func (w *yamlWalker) charge(n *yaml.Node, path string) error {
	if w.aliasLevel == 0 && n.Kind != yaml.AliasNode {
		return nil
	}
	w.expanded++
	if w.expanded > maxAliasNodes {
		return w.fail(CodeTooLarge, path, n, "alias expansion exceeds %d nodes", maxAliasNodes)
	}
	return nil
}

func (w *yamlWalker) enter(path string, n *yaml.Node, depth int) error {
	if w.maxDepth > 0 && depth >= w.maxDepth {
		return w.fail(CodeMaxDepth, path, n, "max depth %d exceeded", w.maxDepth)
	}
	return nil
}

func (w *yamlWalker) mapping(n *yaml.Node, path string, depth int) (map[string]any, error) {
	m := make(map[string]any, len(n.Content)/2)
	first := make(map[string]position, len(n.Content)/2)
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Tag == "!!merge" {
			merges = append(merges, v)
			continue
		}
		key := k.Value
		kp := engine.JoinPointer(path, key)
		if pos, dup := first[key]; dup {
			msg := fmt.Sprintf("duplicate key %q (first at %d:%d)", key, pos.line, pos.col)
			if w.opt.Strict {
				return nil, w.fail(CodeDuplicateKey, kp, k, "%s", msg)
			}
			w.opt.warn(Issue{Code: CodeDuplicateKey, Path: kp, Line: k.Line, Column: k.Column, Message: msg})
		} else {
			first[key] = position{k.Line, k.Column}
		}
		val, err := w.value(v, kp, depth+1)
		if err != nil {
			return nil, err
		}
		m[key] = val
	}
	// merged keys never override keys written in the mapping itself
	for _, src := range merges {
		if err := w.merge(m, src, path, depth); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (w *yamlWalker) merge(m map[string]any, src *yaml.Node, path string, depth int) error {
	if err := w.charge(src, path); err != nil {
		return err
	}
	if src.Kind == yaml.AliasNode {
		w.aliasLevel++
		defer func() { w.aliasLevel-- }()
		return w.merge(m, src.Alias, path, depth)
	}
	switch src.Kind {
	case yaml.MappingNode:
		v, err := w.mapping(src, path, depth)
		if err != nil {
			return err
		}
		for k, val := range v {
			if _, ok := m[k]; !ok {
				m[k] = val
			}
		}
		return nil
	case yaml.SequenceNode:
		for _, c := range src.Content {
			if err := w.merge(m, c, path, depth); err != nil {
				return err
			}
		}
		return nil
	}
	return w.fail(CodeSyntax, path, src, "merge value must be a mapping or a list of mappings")
}

func (w *yamlWalker) fail(code, path string, n *yaml.Node, format string, args ...any) error {
	return &Error{Issue: Issue{Code: code, Path: pointerOrRoot(path), Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}}
}

// scalar converts a resolved scalar. Unknown tags and unparsable values fall
// back to the raw string.
func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
		var i int64
		if err := n.Decode(&i); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return f
		}
	case "!!float":
		switch strings.ToLower(n.Value) {
		case ".inf", "+.inf":
			return math.Inf(1)
		case "-.inf":
			return math.Inf(-1)
		case ".nan":
			return math.NaN()
		}
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return f
		}
	}
	return n.Value
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
