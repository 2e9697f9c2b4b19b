package goshape

import (
	"errors"
	"unicode/utf8"
)

// Validate checks data against t and returns the transformed output.
//
// Scalars and strings are returned unchanged, sequences as []any, records as
// map[string]any holding exactly the declared fields, named records as
// *Instance and enumeration values as Member. The first failure aborts the
// walk; the returned *ValidationError chains the list indices and field names
// leading to it. Defects in the schema itself are reported as *SchemaError.
func Validate(t Type, data any, opts ...ParseOpt) (any, error) {
	v := &validator{opt: resolveOpt(opts)}
	return v.validate(t, data, 0)
}

type validator struct {
	opt ParseOpt
}

// validate dispatches on the descriptor. depth counts the containers entered
// so far.
func (v *validator) validate(t Type, data any, depth int) (any, error) {
	switch tt := t.(type) {
	case nil:
		return nil, schemaErrorf("validate", "nil descriptor")
	case primitive:
		return v.primitive(Kind(tt), data)
	case *Text:
		if tt == nil {
			return nil, schemaErrorf("validate", "nil string descriptor")
		}
		return v.text(tt, data)
	case *Sequence:
		if tt == nil {
			return nil, schemaErrorf("validate", "nil list descriptor")
		}
		return v.sequence(tt, data, depth)
	case *RecordType:
		if tt == nil {
			return nil, schemaErrorf("validate", "nil record descriptor")
		}
		return v.record(&tt.recordShape, data, depth)
	case *NamedRecord:
		if tt == nil {
			return nil, schemaErrorf("validate", "nil named record descriptor")
		}
		if !tt.bound {
			return nil, schemaErrorf("validate", "named record %q used before Bind", tt.name)
		}
		fields, err := v.record(&tt.recordShape, data, depth)
		if err != nil {
			return nil, err
		}
		return &Instance{Type: tt, Fields: fields}, nil
	case *Alternation:
		if tt == nil {
			return nil, schemaErrorf("validate", "nil union descriptor")
		}
		return v.alternation(tt, data, depth)
	case *Enumeration:
		if tt == nil {
			return nil, schemaErrorf("validate", "nil enum descriptor")
		}
		return v.enum(tt, data)
	case *ValueEnumeration:
		if tt == nil {
			return nil, schemaErrorf("validate", "nil value enum descriptor")
		}
		return v.valueEnum(tt, data)
	}
	return nil, schemaErrorf("validate", "unsupported descriptor %T", t)
}

func (v *validator) primitive(k Kind, data any) (any, error) {
	var want NodeKind
	switch k {
	case KindAny:
		return data, nil
	case KindNothing:
		want = NodeNull
	case KindBool:
		want = NodeBool
	case KindInt:
		want = NodeInt
	case KindFloat:
		want = NodeFloat
	default:
		return nil, schemaErrorf("validate", "unsupported descriptor kind %v", k)
	}
	if NodeKindOf(data) != want {
		return nil, typeMismatch(k.String(), data)
	}
	return data, nil
}

func (v *validator) text(t *Text, data any) (any, error) {
	s, ok := data.(string)
	if !ok {
		return nil, typeMismatch(KindText.String(), data)
	}
	n := utf8.RuneCountInString(s)
	if lo, ok := t.MinLen(); ok && n < lo {
		return nil, issue(CodeTooShort, map[string]any{"value": s, "min": lo})
	}
	if hi, ok := t.MaxLen(); ok && n > hi {
		return nil, issue(CodeTooLong, map[string]any{"value": s, "max": hi})
	}
	if t.pattern != nil && !t.pattern.MatchString(s) {
		return nil, issue(CodePattern, map[string]any{"value": s, "pattern": t.expr})
	}
	return s, nil
}

func (v *validator) enter(depth int) error {
	if v.opt.MaxDepth > 0 && depth >= v.opt.MaxDepth {
		return issue(CodeMaxDepth, map[string]any{"max": v.opt.MaxDepth})
	}
	return nil
}

func (v *validator) sequence(s *Sequence, data any, depth int) (any, error) {
	items, ok := asSequence(data)
	if !ok {
		return nil, typeMismatch(KindSequence.String(), data)
	}
	if err := v.enter(depth); err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, item := range items {
		val, err := v.validate(s.Elem, item, depth+1)
		if err != nil {
			if isSchemaError(err) {
				return nil, err
			}
			return nil, itemError(i, err)
		}
		out[i] = val
	}
	return out, nil
}

func (v *validator) record(r *recordShape, data any, depth int) (map[string]any, error) {
	m, ok := asMapping(data)
	if !ok {
		return nil, typeMismatch(NodeMapping.String(), data)
	}
	if err := v.enter(depth); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		raw, present := m[f.Name]
		if !present {
			d, ok := r.defaults[f.Name]
			if !ok {
				e := issue(CodeRequired, map[string]any{"field": f.Name})
				e.Field = f.Name
				return nil, e
			}
			out[f.Name] = d.Resolve()
			continue
		}
		val, err := v.validate(f.Type, raw, depth+1)
		if err != nil {
			if isSchemaError(err) {
				return nil, err
			}
			return nil, fieldError(f.Name, err)
		}
		out[f.Name] = val
	}
	return out, nil
}

func (v *validator) alternation(a *Alternation, data any, depth int) (any, error) {
	if len(a.alts) == 0 {
		return nil, schemaErrorf("validate", "union without alternatives")
	}
	attempts := make([]error, 0, len(a.alts))
	for _, alt := range a.alts {
		val, err := v.validate(alt, data, depth)
		if err == nil {
			return val, nil
		}
		if isSchemaError(err) || IsCode(err, CodeMaxDepth) {
			return nil, err
		}
		attempts = append(attempts, err)
	}
	e := issue(CodeUnionExhausted, map[string]any{
		"got":          describeNode(data),
		"alternatives": "[" + a.String() + "]",
	})
	e.Attempts = attempts
	return nil, e
}

func (v *validator) enum(e *Enumeration, data any) (any, error) {
	s, ok := data.(string)
	if !ok {
		return nil, typeMismatch(KindText.String(), data)
	}
	m, ok := e.Lookup(s)
	if !ok {
		return nil, issue(CodeInvalidEnum, map[string]any{"value": s, "enum": e.name})
	}
	return m, nil
}

func (v *validator) valueEnum(e *ValueEnumeration, data any) (any, error) {
	for _, m := range e.members {
		if scalarEqual(m.Value, data) {
			return Member{enum: e.name, valued: true, Name: m.Name, Value: m.Value}, nil
		}
	}
	return nil, issue(CodeInvalidEnum, map[string]any{"value": data, "enum": e.name})
}

func typeMismatch(expected string, data any) *ValidationError {
	return issue(CodeInvalidType, map[string]any{"expected": expected, "got": describeNode(data)})
}

func isSchemaError(err error) bool { return errors.Is(err, ErrMalformedSchema) }
