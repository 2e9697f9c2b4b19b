package goshape

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// NodeKind classifies a value of the untyped data tree.
type NodeKind int

const (
	NodeNull NodeKind = iota
	NodeBool
	NodeInt
	NodeFloat
	NodeString
	NodeSequence
	NodeMapping
	// NodeUnknown covers Go values outside the generic tree (structs, funcs, ...).
	NodeUnknown
)

func (k NodeKind) String() string {
	switch k {
	case NodeNull:
		return "null"
	case NodeBool:
		return "bool"
	case NodeInt:
		return "int"
	case NodeFloat:
		return "float"
	case NodeString:
		return "string"
	case NodeSequence:
		return "list"
	case NodeMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// NodeKindOf reports the node kind of v. The classification is exact: bool is
// never an int, and json.Number is an int only when it has no fraction or
// exponent and fits in int64.
func NodeKindOf(v any) NodeKind {
	switch t := v.(type) {
	case nil:
		return NodeNull
	case bool:
		return NodeBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return NodeInt
	case float32, float64:
		return NodeFloat
	case json.Number:
		if _, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return NodeInt
		}
		if _, err := strconv.ParseFloat(string(t), 64); err == nil {
			return NodeFloat
		}
		return NodeUnknown
	case string:
		return NodeString
	case []any:
		return NodeSequence
	case map[string]any:
		return NodeMapping
	case map[any]any:
		for k := range t {
			if _, ok := k.(string); !ok {
				return NodeUnknown
			}
		}
		return NodeMapping
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return NodeSequence
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return NodeMapping
		}
	}
	return NodeUnknown
}

// describeNode names v's kind for messages, including the Go type for unknowns.
func describeNode(v any) string {
	k := NodeKindOf(v)
	if k == NodeUnknown {
		return fmt.Sprintf("unknown (%T)", v)
	}
	return k.String()
}

// asSequence returns the elements of a sequence node.
func asSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if NodeKindOf(v) != NodeSequence {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMapping returns a mapping node with keys normalised for field lookup
// (hyphens become underscores). When two keys collide after normalisation the
// key already spelled with underscores wins; otherwise the lexically smallest
// original key wins, so the result never depends on map iteration order.
func asMapping(v any) (map[string]any, bool) {
	var raw map[string]any
	switch t := v.(type) {
	case map[string]any:
		raw = t
	case map[any]any:
		raw = make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			raw[ks] = vv
		}
	default:
		if NodeKindOf(v) != NodeMapping {
			return nil, false
		}
		rv := reflect.ValueOf(v)
		raw = make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			raw[iter.Key().String()] = iter.Value().Interface()
		}
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(raw))
	exact := make(map[string]bool, len(raw))
	for _, k := range keys {
		nk := NormalizeKey(k)
		if _, seen := out[nk]; seen && (exact[nk] || nk != k) {
			continue
		}
		out[nk] = raw[k]
		exact[nk] = nk == k
	}
	return out, true
}

// NormalizeKey maps a wire-format key to its field name form ("runs-on" -> "runs_on").
func NormalizeKey(k string) string { return strings.ReplaceAll(k, "-", "_") }
