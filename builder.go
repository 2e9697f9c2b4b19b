package goshape

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// TextOpt configures a constrained Text descriptor.
type TextOpt func(*textSpec)

type textSpec struct {
	min, max *int
	expr     string
	hasExpr  bool
}

// MinLen sets the minimum string length (inclusive, in code points).
func MinLen(n int) TextOpt { return func(s *textSpec) { s.min = &n } }

// MaxLen sets the maximum string length (inclusive, in code points).
func MaxLen(n int) TextOpt { return func(s *textSpec) { s.max = &n } }

// Pattern requires the whole string to match the regular expression expr.
func Pattern(expr string) TextOpt {
	return func(s *textSpec) { s.expr, s.hasExpr = expr, true }
}

// Restrict returns a Text descriptor with the given constraints; omitted
// constraints are not checked.
func Restrict(opts ...TextOpt) (*Text, error) {
	var spec textSpec
	for _, o := range opts {
		o(&spec)
	}
	if spec.min != nil && *spec.min < 0 {
		return nil, schemaErrorf("restrict", "negative minimum length %d", *spec.min)
	}
	if spec.max != nil && *spec.max < 0 {
		return nil, schemaErrorf("restrict", "negative maximum length %d", *spec.max)
	}
	if spec.min != nil && spec.max != nil && *spec.min > *spec.max {
		return nil, schemaErrorf("restrict", "minimum length %d exceeds maximum length %d", *spec.min, *spec.max)
	}
	t := &Text{min: spec.min, max: spec.max}
	if spec.hasExpr {
		re, err := regexp.Compile(`^(?:` + spec.expr + `)$`)
		if err != nil {
			return nil, schemaErrorf("restrict", "invalid pattern %q: %v", spec.expr, err)
		}
		t.pattern, t.expr = re, spec.expr
	}
	return t, nil
}

// MustRestrict is like Restrict but panics on error.
func MustRestrict(opts ...TextOpt) *Text {
	t, err := Restrict(opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Union returns an Alternation over alts. Nested alternations are flattened,
// so Union(a, Union(b, c)) has the alternatives a, b, c.
func Union(alts ...Type) *Alternation {
	out := &Alternation{}
	for _, t := range alts {
		if a, ok := t.(*Alternation); ok && a != nil {
			out.alts = append(out.alts, a.alts...)
			continue
		}
		out.alts = append(out.alts, t)
	}
	return out
}

// Optional is shorthand for Union(t, Nothing).
func Optional(t Type) *Alternation { return Union(t, Nothing) }

// RecordBuilder accumulates fields and defaults for a RecordType or NamedRecord.
// Mistakes are collected and reported by Build (or Bind).
type RecordBuilder struct {
	fields   []Field
	index    map[string]int
	defaults map[string]DefaultValue
	errs     []error
}

// FieldStep is returned by RecordBuilder.Field to attach a default to the
// field just declared.
type FieldStep struct {
	b    *RecordBuilder
	name string
}

// Record creates a new record builder.
func Record() *RecordBuilder {
	return &RecordBuilder{
		index:    map[string]int{},
		defaults: map[string]DefaultValue{},
	}
}

// Field declares a field. Field names must be unique within the record.
func (b *RecordBuilder) Field(name string, t Type) *FieldStep {
	switch {
	case name == "":
		b.errs = append(b.errs, schemaErrorf("record", "empty field name"))
	case strings.Contains(name, "-"):
		// input keys are matched after hyphens become underscores
		b.errs = append(b.errs, schemaErrorf("record", "field %q contains '-'; declare it as %q", name, NormalizeKey(name)))
	case t == nil:
		b.errs = append(b.errs, schemaErrorf("record", "field %q has no type", name))
	default:
		if _, dup := b.index[name]; dup {
			b.errs = append(b.errs, schemaErrorf("record", "duplicate field %q", name))
			break
		}
		b.index[name] = len(b.fields)
		b.fields = append(b.fields, Field{Name: name, Type: t})
	}
	return &FieldStep{b: b, name: name}
}

// Default sets a literal default for the current field. The same value is
// returned for every missing occurrence, so mutable values should use
// DefaultFunc. A func() any argument is treated as DefaultFunc.
func (f *FieldStep) Default(v any) *RecordBuilder {
	if fn, ok := v.(func() any); ok {
		return f.DefaultFunc(fn)
	}
	return f.b.setDefault(f.name, DefaultValue{value: v})
}

// DefaultFunc sets a factory default for the current field; fn is invoked for
// every missing occurrence.
func (f *FieldStep) DefaultFunc(fn func() any) *RecordBuilder {
	if fn == nil {
		f.b.errs = append(f.b.errs, schemaErrorf("record", "nil default factory for field %q", f.name))
		return f.b
	}
	return f.b.setDefault(f.name, DefaultValue{factory: fn})
}

func (f *FieldStep) Field(name string, t Type) *FieldStep     { return f.b.Field(name, t) }
func (f *FieldStep) Defaults(d map[string]any) *RecordBuilder { return f.b.Defaults(d) }
func (f *FieldStep) Build() (*RecordType, error)              { return f.b.Build() }
func (f *FieldStep) MustBuild() *RecordType                   { return f.b.MustBuild() }

// RecordSpec is satisfied by *RecordBuilder and *FieldStep, so a builder chain
// can be passed to NamedRecord.Bind whichever step it ends on.
type RecordSpec interface {
	recordBuilder() *RecordBuilder
}

func (b *RecordBuilder) recordBuilder() *RecordBuilder { return b }
func (f *FieldStep) recordBuilder() *RecordBuilder     { return f.b }

// Defaults attaches defaults for several fields at once. A value of type
// func() any is a factory; any other value is a literal.
func (b *RecordBuilder) Defaults(d map[string]any) *RecordBuilder {
	for name, v := range d {
		if fn, ok := v.(func() any); ok {
			b.setDefault(name, DefaultValue{factory: fn})
			continue
		}
		b.setDefault(name, DefaultValue{value: v})
	}
	return b
}

func (b *RecordBuilder) setDefault(name string, d DefaultValue) *RecordBuilder {
	if d.factory == nil && d.value != nil && reflect.TypeOf(d.value).Kind() == reflect.Func {
		b.errs = append(b.errs, schemaErrorf("record", "default for field %q is a %T; factories must be func() any", name, d.value))
		return b
	}
	// the field may be declared later in the chain; checked in shape()
	b.defaults[name] = d
	return b
}

func (b *RecordBuilder) shape(op string) (recordShape, error) {
	errs := append([]error(nil), b.errs...)
	for name := range b.defaults {
		if _, ok := b.index[name]; !ok {
			errs = append(errs, schemaErrorf(op, "default for undeclared field %q", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return recordShape{}, err
	}
	s := recordShape{
		fields:   append([]Field(nil), b.fields...),
		index:    make(map[string]int, len(b.index)),
		defaults: make(map[string]DefaultValue, len(b.defaults)),
	}
	for k, v := range b.index {
		s.index[k] = v
	}
	for k, v := range b.defaults {
		s.defaults[k] = v
	}
	return s, nil
}

// Build validates the builder and returns a RecordType.
func (b *RecordBuilder) Build() (*RecordType, error) {
	s, err := b.shape("record")
	if err != nil {
		return nil, err
	}
	return &RecordType{recordShape: s}, nil
}

// MustBuild is like Build but panics on error.
func (b *RecordBuilder) MustBuild() *RecordType {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// Named creates an unbound NamedRecord handle. Reference it freely (including
// from its own fields), then complete it once with Bind before validating.
func Named(identity string) *NamedRecord {
	return &NamedRecord{name: identity}
}

// Bind sets the fields and defaults of n from spec. It may succeed only once.
func (n *NamedRecord) Bind(spec RecordSpec) error {
	if n.name == "" {
		return schemaErrorf("bind", "named record has an empty identity")
	}
	if n.bound {
		return schemaErrorf("bind", "named record %q is already bound", n.name)
	}
	if spec == nil || spec.recordBuilder() == nil {
		return schemaErrorf("bind", "named record %q: nil builder", n.name)
	}
	s, err := spec.recordBuilder().shape("bind " + n.name)
	if err != nil {
		return err
	}
	n.recordShape = s
	n.bound = true
	return nil
}

// MustBind is like Bind but panics on error. It returns n for chaining.
func (n *NamedRecord) MustBind(spec RecordSpec) *NamedRecord {
	if err := n.Bind(spec); err != nil {
		panic(err)
	}
	return n
}

// Enum creates an Enumeration. Member labels are canonicalised (upper case,
// hyphens as underscores) and must be unique after canonicalisation.
func Enum(identity string, members ...string) (*Enumeration, error) {
	if identity == "" {
		return nil, schemaErrorf("enum", "empty identity")
	}
	e := &Enumeration{name: identity, index: make(map[string]struct{}, len(members))}
	for _, m := range members {
		c := CanonicalLabel(m)
		if c == "" {
			return nil, schemaErrorf("enum", "%s: empty member", identity)
		}
		if _, dup := e.index[c]; dup {
			return nil, schemaErrorf("enum", "%s: duplicate member %q", identity, c)
		}
		e.index[c] = struct{}{}
		e.members = append(e.members, c)
	}
	return e, nil
}

// MustEnum is like Enum but panics on error.
func MustEnum(identity string, members ...string) *Enumeration {
	e, err := Enum(identity, members...)
	if err != nil {
		panic(err)
	}
	return e
}

// ValueEnum creates a ValueEnumeration. Member names and values must be
// unique, and values must be scalars (null, bool, int, float or string).
func ValueEnum(identity string, members ...EnumValue) (*ValueEnumeration, error) {
	if identity == "" {
		return nil, schemaErrorf("value enum", "empty identity")
	}
	e := &ValueEnumeration{name: identity}
	names := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m.Name == "" {
			return nil, schemaErrorf("value enum", "%s: empty member name", identity)
		}
		if _, dup := names[m.Name]; dup {
			return nil, schemaErrorf("value enum", "%s: duplicate member %q", identity, m.Name)
		}
		switch NodeKindOf(m.Value) {
		case NodeNull, NodeBool, NodeInt, NodeFloat, NodeString:
		default:
			return nil, schemaErrorf("value enum", "%s: member %q has non-scalar value %T", identity, m.Name, m.Value)
		}
		for _, prev := range e.members {
			if scalarEqual(prev.Value, m.Value) {
				return nil, schemaErrorf("value enum", "%s: members %q and %q share a value", identity, prev.Name, m.Name)
			}
		}
		names[m.Name] = struct{}{}
		e.members = append(e.members, m)
	}
	return e, nil
}

// MustValueEnum is like ValueEnum but panics on error.
func MustValueEnum(identity string, members ...EnumValue) *ValueEnumeration {
	e, err := ValueEnum(identity, members...)
	if err != nil {
		panic(err)
	}
	return e
}
