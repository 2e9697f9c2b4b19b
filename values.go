package goshape

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Instance is the output of a NamedRecord: exactly the declared fields,
// tagged with the descriptor that produced them. Instances of different
// NamedRecords never compare equal, even when their fields do.
type Instance struct {
	Type   *NamedRecord
	Fields map[string]any
}

// Name returns the identity of the instance's type.
func (i *Instance) Name() string { return i.Type.Name() }

// Get returns a field value (nil when the field is not declared).
func (i *Instance) Get(field string) any { return i.Fields[field] }

// String renders the instance as Name(field=value, ...) in declaration order.
func (i *Instance) String() string {
	b := &strings.Builder{}
	b.WriteString(i.Name())
	b.WriteByte('(')
	for n, f := range i.Type.Fields() {
		if n > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		if s, ok := i.Fields[f.Name].(string); ok {
			b.WriteString(strconv.Quote(s))
			continue
		}
		fmt.Fprint(b, i.Fields[f.Name])
	}
	b.WriteByte(')')
	return b.String()
}

// Member is the output of an Enumeration or ValueEnumeration.
// Members are comparable with ==.
type Member struct {
	enum   string
	valued bool
	// Name is the canonical label (Enumeration) or declared name (ValueEnumeration).
	Name string
	// Value is the selecting value for ValueEnumeration members; nil otherwise.
	Value any
}

// Enum returns the identity of the member's enumeration.
func (m Member) Enum() string { return m.enum }

func (m Member) String() string { return m.enum + "." + m.Name }

// Plain converts an output tree into plain JSON-like values: instances become
// maps, Enumeration members their label and ValueEnumeration members their value.
func Plain(v any) any {
	switch t := v.(type) {
	case *Instance:
		if t == nil {
			return nil
		}
		return plainMap(t.Fields)
	case Member:
		if t.valued {
			return t.Value
		}
		return t.Name
	case map[string]any:
		return plainMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}
		return out
	default:
		return v
	}
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Plain(v)
	}
	return out
}

// As projects an output tree into T (typically a struct with json tags) by
// round-tripping its Plain form through JSON.
func As[T any](v any) (T, error) {
	var out T
	b, err := gojson.Marshal(Plain(v))
	if err != nil {
		return out, fmt.Errorf("goshape: encode output: %w", err)
	}
	if err := gojson.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("goshape: decode into %T: %w", out, err)
	}
	return out, nil
}

// scalarEqual compares two scalar nodes kind-exactly: ints compare by value
// across Go integer types, but an int never equals a float or a bool.
func scalarEqual(a, b any) bool {
	ka, kb := NodeKindOf(a), NodeKindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case NodeNull:
		return true
	case NodeInt:
		return intText(a) == intText(b)
	case NodeFloat:
		return floatOf(a) == floatOf(b)
	case NodeBool, NodeString:
		return a == b
	}
	return false
}

func intText(v any) string {
	if n, ok := v.(json.Number); ok {
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return string(n)
	}
	return fmt.Sprint(v)
}

func floatOf(v any) float64 {
	switch t := v.(type) {
	case float32:
		return float64(t)
	case float64:
		return t
	case json.Number:
		f, _ := t.Float64()
		return f
	}
	return 0
}
