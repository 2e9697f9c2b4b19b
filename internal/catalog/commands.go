package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/reoring/goshape"
)

// ArgType is the value type of a command argument.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
	ArgFloat   ArgType = "float"
	ArgFlag    ArgType = "flag"
	ArgText    ArgType = "text"
)

// ArgTypes is the value enumeration behind ArgType.
var ArgTypes = goshape.MustValueEnum("ArgType",
	goshape.Value("STRING", string(ArgString)),
	goshape.Value("INTEGER", string(ArgInteger)),
	goshape.Value("FLOAT", string(ArgFloat)),
	goshape.Value("FLAG", string(ArgFlag)),
	goshape.Value("TEXT", string(ArgText)),
)

var word = goshape.MustRestrict(goshape.Pattern(`[\w-]+`))

var argType = goshape.Named("Arg").MustBind(goshape.Record().
	Field("name", word).
	Field("help", goshape.String).
	Field("default", goshape.Any).Default(nil).
	Field("type", ArgTypes).Default(mustMember(ArgTypes.Member("STRING"))).
	Field("enum", goshape.Optional(goshape.List(goshape.MustRestrict(goshape.Pattern(`\w+`))))).Default(nil).
	Field("positional", goshape.Bool).Default(false))

var nodeType = bindNode(goshape.Named("Node"))

// bindNode binds the Node record, whose subtree refers back to n.
func bindNode(n *goshape.NamedRecord) *goshape.NamedRecord {
	return n.MustBind(goshape.Record().
		Field("keyword", word).
		Field("help", goshape.String).
		Field("command", goshape.Optional(goshape.String)).Default(nil).
		Field("args", goshape.List(argType)).DefaultFunc(emptyList).
		Field("subtree", goshape.Optional(goshape.List(n))).Default(nil))
}

var rootType = goshape.Named("RootNode").MustBind(goshape.Record().
	Field("welcome", goshape.Optional(goshape.String)).Default(nil).
	Field("subtree", goshape.List(nodeType)))

// Commands is the schema of a command-tree document.
var Commands = goshape.MustCompile(rootType)

func mustMember(m goshape.Member, ok bool) goshape.Member {
	if !ok {
		panic("catalog: unknown enum member")
	}
	return m
}

// Arg is one argument of a command.
type Arg struct {
	Name       string   `json:"name"`
	Help       string   `json:"help"`
	Default    any      `json:"default"`
	Type       ArgType  `json:"type"`
	Enum       []string `json:"enum"`
	Positional bool     `json:"positional"`
}

// Node is one keyword of the command tree. A node with a Command can be
// executed; a node with a Subtree has further keywords.
type Node struct {
	Keyword string  `json:"keyword"`
	Help    string  `json:"help"`
	Command *string `json:"command"`
	Args    []Arg   `json:"args"`
	Subtree []*Node `json:"subtree"`
}

// RootNode is the top of a command tree.
type RootNode struct {
	Welcome *string `json:"welcome"`
	Subtree []*Node `json:"subtree"`
}

// DecodeCommands validates a decoded command-tree document and projects it.
func DecodeCommands(data any, opts ...goshape.ParseOpt) (*RootNode, error) {
	out, err := Commands.Validate(data, opts...)
	if err != nil {
		return nil, err
	}
	root, err := goshape.As[RootNode](out)
	if err != nil {
		return nil, err
	}
	return &root, nil
}

// Child returns the direct child with the given keyword.
func (n *Node) Child(keyword string) (*Node, bool) {
	for _, c := range n.Subtree {
		if c.Keyword == keyword {
			return c, true
		}
	}
	return nil, false
}

// Resolve walks the words of command down the tree as far as they match
// keywords. It returns the deepest node reached, the matched keywords and the
// unmatched remainder, both joined by single spaces. The root itself is
// returned as a Node without keyword.
func (r *RootNode) Resolve(command string) (node *Node, matched, rest string) {
	node = &Node{Subtree: r.Subtree}
	var kws []string
	words := strings.Fields(command)
	for len(node.Subtree) > 0 && len(words) > 0 {
		next, ok := node.Child(words[0])
		if !ok {
			break
		}
		node = next
		kws = append(kws, next.Keyword)
		words = words[1:]
	}
	return node, strings.Join(kws, " "), strings.Join(words, " ")
}

// FormatArg renders an argument for help output: <name:qual=default> for
// positional arguments and [name:qual=default] otherwise. Flags carry no
// qualifier and a zero default is omitted.
func FormatArg(a Arg) string {
	inner := a.Name
	switch a.Type {
	case ArgInteger:
		inner += ":int"
	case ArgFloat:
		inner += ":float"
	case ArgString:
		inner += ":str"
	case ArgText:
		inner += ":text"
	}
	if truthy(a.Default) {
		inner += "=" + fmt.Sprint(a.Default)
	}
	if a.Positional {
		return "<" + inner + ">"
	}
	return "[" + inner + "]"
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int64:
		return t != 0
	case int:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// WriteHelp writes the short help of n: one line per child keyword and, for
// executable nodes, the argument synopsis ending in <CR>.
func WriteHelp(w io.Writer, n *Node) error {
	ew := &errWriter{w: w}
	for _, c := range n.Subtree {
		ew.printf("%-15s %s\n", c.Keyword, c.Help)
	}
	if n.Command != nil && *n.Command != "" {
		parts := make([]string, 0, len(n.Args)+1)
		for _, a := range n.Args {
			parts = append(parts, FormatArg(a))
		}
		ew.printf("%s\n", strings.Join(append(parts, "<CR>"), " "))
	}
	return ew.err
}

// WriteLongHelp writes n's help text followed by its children and, for
// executable nodes, the command and one line per argument.
func WriteLongHelp(w io.Writer, n *Node) error {
	ew := &errWriter{w: w}
	if n.Help != "" {
		ew.printf("%s\n\n", n.Help)
	}
	if len(n.Subtree) > 0 {
		for _, c := range n.Subtree {
			ew.printf("%-15s %s\n", c.Keyword, c.Help)
		}
		ew.printf("\n")
	}
	if n.Command != nil && *n.Command != "" {
		ew.printf("Command: %q\n", *n.Command)
		for _, a := range n.Args {
			ew.printf("%-15s %s\n", FormatArg(a), a.Help)
		}
		ew.printf("\n")
	}
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
