package goshape

import (
	"sort"

	js "github.com/reoring/goshape/jsonschema"
)

// Schema is a checked schema graph. It is immutable and safe for concurrent use.
type Schema struct {
	root  Type
	named map[string]Type
}

// Compile walks the schema graph once and rejects what would otherwise only
// surface mid-validation: nil descriptors, unbound named records, empty
// unions, and distinct descriptors sharing one identity.
func Compile(t Type) (*Schema, error) {
	c := &compiler{named: map[string]Type{}}
	if err := c.walk(t, "$"); err != nil {
		return nil, err
	}
	return &Schema{root: t, named: c.named}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(t Type) *Schema {
	s, err := Compile(t)
	if err != nil {
		panic(err)
	}
	return s
}

// Root returns the root descriptor.
func (s *Schema) Root() Type { return s.root }

// Lookup returns the named descriptor (NamedRecord, Enumeration or
// ValueEnumeration) reachable from the root with the given identity.
func (s *Schema) Lookup(identity string) (Type, bool) {
	t, ok := s.named[identity]
	return t, ok
}

// Names returns the identities reachable from the root, sorted.
func (s *Schema) Names() []string {
	out := make([]string, 0, len(s.named))
	for n := range s.named {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Validate validates data against the root descriptor.
func (s *Schema) Validate(data any, opts ...ParseOpt) (any, error) {
	return Validate(s.root, data, opts...)
}

// JSONSchema exports the schema; see ExportJSONSchema.
func (s *Schema) JSONSchema() (*js.Schema, error) { return ExportJSONSchema(s.root) }

type compiler struct {
	named map[string]Type
}

// claim registers an identity. It reports false when t was already visited.
func (c *compiler) claim(name string, t Type, at string) (bool, error) {
	if name == "" {
		return false, schemaErrorf("compile", "%s: %v with empty identity", at, t.Kind())
	}
	prev, ok := c.named[name]
	if !ok {
		c.named[name] = t
		return true, nil
	}
	if prev == t {
		return false, nil
	}
	return false, schemaErrorf("compile", "%s: identity %q is used by two different descriptors", at, name)
}

func (c *compiler) walk(t Type, at string) error {
	switch tt := t.(type) {
	case nil:
		return schemaErrorf("compile", "%s: nil descriptor", at)
	case primitive:
		if Kind(tt) == KindText || Kind(tt) > KindAny {
			return schemaErrorf("compile", "%s: unsupported descriptor kind %v", at, Kind(tt))
		}
		return nil
	case *Text:
		if tt == nil {
			return schemaErrorf("compile", "%s: nil string descriptor", at)
		}
		return nil
	case *Sequence:
		if tt == nil {
			return schemaErrorf("compile", "%s: nil list descriptor", at)
		}
		return c.walk(tt.Elem, at+"[]")
	case *RecordType:
		if tt == nil {
			return schemaErrorf("compile", "%s: nil record descriptor", at)
		}
		return c.fields(&tt.recordShape, at)
	case *NamedRecord:
		if tt == nil {
			return schemaErrorf("compile", "%s: nil named record descriptor", at)
		}
		if !tt.bound {
			return schemaErrorf("compile", "%s: named record %q is not bound", at, tt.name)
		}
		first, err := c.claim(tt.name, tt, at)
		if err != nil || !first {
			return err
		}
		return c.fields(&tt.recordShape, tt.name)
	case *Alternation:
		if tt == nil {
			return schemaErrorf("compile", "%s: nil union descriptor", at)
		}
		if len(tt.alts) == 0 {
			return schemaErrorf("compile", "%s: union without alternatives", at)
		}
		for _, alt := range tt.alts {
			if err := c.walk(alt, at); err != nil {
				return err
			}
		}
		return nil
	case *Enumeration:
		if tt == nil {
			return schemaErrorf("compile", "%s: nil enum descriptor", at)
		}
		_, err := c.claim(tt.name, tt, at)
		return err
	case *ValueEnumeration:
		if tt == nil {
			return schemaErrorf("compile", "%s: nil value enum descriptor", at)
		}
		_, err := c.claim(tt.name, tt, at)
		return err
	}
	return schemaErrorf("compile", "%s: unsupported descriptor %T", at, t)
}

func (c *compiler) fields(r *recordShape, at string) error {
	for _, f := range r.fields {
		if err := c.walk(f.Type, at+"."+f.Name); err != nil {
			return err
		}
	}
	return nil
}
