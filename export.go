package goshape

import (
	"sort"

	js "github.com/reoring/goshape/jsonschema"
)

// ExportJSONSchema renders t as a JSON Schema document. Named records and
// enumerations become $defs entries referenced by $ref, so recursive schemas
// export finitely. Factory defaults are omitted since their value is only
// known at validation time.
//
// Enumeration labels are exported in canonical form; the case-insensitive
// matching applied at validation time has no JSON Schema equivalent.
func ExportJSONSchema(t Type) (*js.Schema, error) {
	if _, err := Compile(t); err != nil {
		return nil, err
	}
	x := &exporter{defs: map[string]*js.Schema{}}
	root := x.schema(t)
	root.SchemaURI = js.Draft
	if len(x.defs) > 0 {
		root.Defs = x.defs
	}
	return root, nil
}

type exporter struct {
	defs map[string]*js.Schema
}

func (x *exporter) schema(t Type) *js.Schema {
	switch tt := t.(type) {
	case primitive:
		switch Kind(tt) {
		case KindNothing:
			return &js.Schema{Type: "null"}
		case KindBool:
			return &js.Schema{Type: "boolean"}
		case KindInt:
			return &js.Schema{Type: "integer"}
		case KindFloat:
			return &js.Schema{Type: "number"}
		}
		return &js.Schema{}
	case *Text:
		s := &js.Schema{Type: "string"}
		if n, ok := tt.MinLen(); ok {
			s.MinLength = &n
		}
		if n, ok := tt.MaxLen(); ok {
			s.MaxLength = &n
		}
		if tt.expr != "" {
			s.Pattern = `^(?:` + tt.expr + `)$`
		}
		return s
	case *Sequence:
		return &js.Schema{Type: "array", Items: x.schema(tt.Elem)}
	case *RecordType:
		return x.object(&tt.recordShape)
	case *NamedRecord:
		if _, done := x.defs[tt.name]; !done {
			// reserve first so self references stop here
			x.defs[tt.name] = &js.Schema{}
			def := x.object(&tt.recordShape)
			def.Title = tt.name
			x.defs[tt.name] = def
		}
		return &js.Schema{Ref: js.DefRef(tt.name)}
	case *Alternation:
		s := &js.Schema{AnyOf: make([]*js.Schema, len(tt.alts))}
		for i, alt := range tt.alts {
			s.AnyOf[i] = x.schema(alt)
		}
		return s
	case *Enumeration:
		vals := make([]any, len(tt.members))
		for i, m := range tt.members {
			vals[i] = m
		}
		x.defs[tt.name] = &js.Schema{Title: tt.name, Type: "string", Enum: vals}
		return &js.Schema{Ref: js.DefRef(tt.name)}
	case *ValueEnumeration:
		vals := make([]any, len(tt.members))
		for i, m := range tt.members {
			vals[i] = m.Value
		}
		x.defs[tt.name] = &js.Schema{Title: tt.name, Enum: vals}
		return &js.Schema{Ref: js.DefRef(tt.name)}
	}
	return &js.Schema{}
}

func (x *exporter) object(r *recordShape) *js.Schema {
	s := &js.Schema{
		Type:       "object",
		Properties: make(map[string]*js.Schema, len(r.fields)),
		// undeclared keys are accepted and dropped
		AdditionalProperties: true,
	}
	for _, f := range r.fields {
		p := x.schema(f.Type)
		d, ok := r.defaults[f.Name]
		switch {
		case !ok:
			s.Required = append(s.Required, f.Name)
		case d.Literal() && d.value != nil:
			p.Default = Plain(d.value)
		}
		s.Properties[f.Name] = p
	}
	sort.Strings(s.Required)
	return s
}
