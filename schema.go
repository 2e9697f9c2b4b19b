package goshape

import (
	"fmt"
	"regexp"
	"strings"
)

// Type is one node of the schema tree. The set of implementations is closed:
// only this package can define descriptor kinds.
type Type interface {
	Kind() Kind
	String() string
	sealed()
}

type primitive Kind

func (p primitive) Kind() Kind     { return Kind(p) }
func (p primitive) String() string { return Kind(p).String() }
func (primitive) sealed()          {}

var (
	// Nothing matches only the absence-of-value marker (nil).
	Nothing Type = primitive(KindNothing)
	Bool    Type = primitive(KindBool)
	Int     Type = primitive(KindInt)
	Float   Type = primitive(KindFloat)
	// Any matches every data node and returns it unchanged.
	Any Type = primitive(KindAny)
	// String is the unconstrained Text descriptor.
	String Type = &Text{}
)

// Text matches strings, optionally bounded in length (in code points) and
// constrained to a full-string pattern. Build constrained values with Restrict.
type Text struct {
	min     *int
	max     *int
	pattern *regexp.Regexp
	expr    string
}

func (*Text) Kind() Kind { return KindText }
func (*Text) sealed()    {}

// MinLen returns the minimum length and whether it is set.
func (t *Text) MinLen() (int, bool) { return deref(t.min) }

// MaxLen returns the maximum length and whether it is set.
func (t *Text) MaxLen() (int, bool) { return deref(t.max) }

// Pattern returns the pattern as written by the schema author ("" when unset).
func (t *Text) Pattern() string { return t.expr }

func (t *Text) String() string {
	var parts []string
	if n, ok := t.MinLen(); ok {
		parts = append(parts, fmt.Sprintf("min=%d", n))
	}
	if n, ok := t.MaxLen(); ok {
		parts = append(parts, fmt.Sprintf("max=%d", n))
	}
	if t.expr != "" {
		parts = append(parts, fmt.Sprintf("pattern=%q", t.expr))
	}
	if len(parts) == 0 {
		return "string"
	}
	return "string(" + strings.Join(parts, ", ") + ")"
}

func deref(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Sequence is an ordered homogeneous list.
type Sequence struct {
	Elem Type
}

// List returns a Sequence of elem.
func List(elem Type) *Sequence { return &Sequence{Elem: elem} }

func (*Sequence) Kind() Kind       { return KindSequence }
func (*Sequence) sealed()          {}
func (s *Sequence) String() string { return "list(" + typeString(s.Elem) + ")" }

// Field is one declared record field.
type Field struct {
	Name string
	Type Type
}

// DefaultValue supplies a field value when the field is absent from the input.
type DefaultValue struct {
	value   any
	factory func() any
}

// Literal reports whether the default is a literal (as opposed to a factory).
func (d DefaultValue) Literal() bool { return d.factory == nil }

// Resolve returns the literal or a freshly produced factory value.
func (d DefaultValue) Resolve() any {
	if d.factory != nil {
		return d.factory()
	}
	return d.value
}

// recordShape is shared by RecordType and NamedRecord.
type recordShape struct {
	fields   []Field
	index    map[string]int
	defaults map[string]DefaultValue
}

// Fields returns the declared fields in declaration order.
func (r *recordShape) Fields() []Field { return append([]Field(nil), r.fields...) }

// FieldType returns the descriptor of a declared field.
func (r *recordShape) FieldType(name string) (Type, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Type, true
}

// Default returns the default declared for a field.
func (r *recordShape) Default(name string) (DefaultValue, bool) {
	d, ok := r.defaults[name]
	return d, ok
}

func (r *recordShape) fieldsString() string {
	parts := make([]string, len(r.fields))
	for i, f := range r.fields {
		parts[i] = f.Name + ": " + typeString(f.Type)
	}
	return strings.Join(parts, ", ")
}

// RecordType is an anonymous heterogeneous record with a fixed field set.
type RecordType struct {
	recordShape
}

func (*RecordType) Kind() Kind       { return KindRecord }
func (*RecordType) sealed()          {}
func (r *RecordType) String() string { return "record{" + r.fieldsString() + "}" }

// Alternation matches the first alternative, in declaration order, that succeeds.
type Alternation struct {
	alts []Type
}

func (*Alternation) Kind() Kind { return KindAlternation }
func (*Alternation) sealed()    {}

// Alternatives returns the alternatives in declaration order.
func (a *Alternation) Alternatives() []Type { return append([]Type(nil), a.alts...) }

func (a *Alternation) String() string {
	parts := make([]string, len(a.alts))
	for i, t := range a.alts {
		parts[i] = typeString(t)
	}
	return strings.Join(parts, " | ")
}

// NamedRecord is a record with its own type identity. The handle returned by
// Named can be referenced before its fields are bound, which is how
// self-referential schemas are written.
type NamedRecord struct {
	name  string
	bound bool
	recordShape
}

func (*NamedRecord) Kind() Kind { return KindNamedRecord }
func (*NamedRecord) sealed()    {}

// Name returns the type identity.
func (n *NamedRecord) Name() string { return n.name }

// Bound reports whether Bind has completed.
func (n *NamedRecord) Bound() bool { return n.bound }

// String renders only the identity, so printing a recursive schema terminates.
func (n *NamedRecord) String() string { return n.name }

// Enumeration is a named, fixed set of symbolic members matched
// case-insensitively ("server", "Server" and "SERVER" are the same member).
type Enumeration struct {
	name    string
	members []string
	index   map[string]struct{}
}

func (*Enumeration) Kind() Kind { return KindEnum }
func (*Enumeration) sealed()    {}

// Name returns the type identity.
func (e *Enumeration) Name() string { return e.name }

// Members returns the canonical member labels in declaration order.
func (e *Enumeration) Members() []string { return append([]string(nil), e.members...) }

// Lookup returns the member matching a raw input label.
func (e *Enumeration) Lookup(label string) (Member, bool) {
	c := CanonicalLabel(label)
	if _, ok := e.index[c]; !ok {
		return Member{}, false
	}
	return Member{enum: e.name, Name: c}, true
}

func (e *Enumeration) String() string { return e.name }

// CanonicalLabel normalises an enumeration label: upper case, hyphens as underscores.
func CanonicalLabel(s string) string { return strings.ToUpper(NormalizeKey(s)) }

// EnumValue pairs a member name with the scalar value that selects it.
type EnumValue struct {
	Name  string
	Value any
}

// Value declares a ValueEnum member.
func Value(name string, v any) EnumValue { return EnumValue{Name: name, Value: v} }

// ValueEnumeration is a named set of members selected by exact value equality
// (kind-exact: the value 1 never selects a member declared with true).
type ValueEnumeration struct {
	name    string
	members []EnumValue
}

func (*ValueEnumeration) Kind() Kind { return KindValueEnum }
func (*ValueEnumeration) sealed()    {}

// Name returns the type identity.
func (e *ValueEnumeration) Name() string { return e.name }

// Members returns the declared members in declaration order.
func (e *ValueEnumeration) Members() []EnumValue { return append([]EnumValue(nil), e.members...) }

// Member returns the member with the given name.
func (e *ValueEnumeration) Member(name string) (Member, bool) {
	for _, m := range e.members {
		if m.Name == name {
			return Member{enum: e.name, valued: true, Name: m.Name, Value: m.Value}, true
		}
	}
	return Member{}, false
}

func (e *ValueEnumeration) String() string { return e.name }

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
