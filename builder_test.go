package goshape_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/reoring/goshape"
)

func TestRestrict_RejectsBadConstraints(t *testing.T) {
	cases := map[string][]goshape.TextOpt{
		"negative min": {goshape.MinLen(-1)},
		"negative max": {goshape.MaxLen(-1)},
		"min over max": {goshape.MinLen(3), goshape.MaxLen(2)},
		"bad pattern":  {goshape.Pattern("(")},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := goshape.Restrict(opts...); !errors.Is(err, goshape.ErrMalformedSchema) {
				t.Fatalf("expected ErrMalformedSchema, got %v", err)
			}
		})
	}
}

func TestRestrict_Accessors(t *testing.T) {
	text := goshape.MustRestrict(goshape.MinLen(1), goshape.Pattern("[a-z]+"))
	if n, ok := text.MinLen(); !ok || n != 1 {
		t.Fatalf("MinLen = %d, %v", n, ok)
	}
	if _, ok := text.MaxLen(); ok {
		t.Fatalf("MaxLen should be unset")
	}
	if text.Pattern() != "[a-z]+" {
		t.Fatalf("Pattern = %q", text.Pattern())
	}
	if got := text.String(); got != `string(min=1, pattern="[a-z]+")` {
		t.Fatalf("String = %s", got)
	}
}

func TestUnion_Flattens(t *testing.T) {
	u := goshape.Union(goshape.Int, goshape.Union(goshape.String, goshape.Nothing))
	if n := len(u.Alternatives()); n != 3 {
		t.Fatalf("alternatives = %d, want 3", n)
	}
	if got := u.String(); got != "int | string | nothing" {
		t.Fatalf("String = %q", got)
	}
	if got := goshape.Optional(goshape.Bool).String(); got != "bool | nothing" {
		t.Fatalf("Optional = %q", got)
	}
}

func TestRecordBuilder_Errors(t *testing.T) {
	cases := map[string]*goshape.RecordBuilder{
		"duplicate field":      goshape.Record().Field("a", goshape.Int).Field("a", goshape.Int).Defaults(nil),
		"empty name":           goshape.Record().Field("", goshape.Int).Defaults(nil),
		"hyphenated name":      goshape.Record().Field("runs-on", goshape.String).Defaults(nil),
		"nil type":             goshape.Record().Field("a", nil).Defaults(nil),
		"undeclared default":   goshape.Record().Field("a", goshape.Int).Defaults(map[string]any{"b": 1}),
		"nil default factory":  goshape.Record().Field("a", goshape.Int).DefaultFunc(nil),
		"typed func default":   goshape.Record().Field("tags", goshape.List(goshape.String)).Defaults(map[string]any{"tags": func() []any { return []any{} }}),
		"func literal default": goshape.Record().Field("n", goshape.Int).Default(func() int64 { return 1 }),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Build(); !errors.Is(err, goshape.ErrMalformedSchema) {
				t.Fatalf("expected ErrMalformedSchema, got %v", err)
			}
		})
	}
}

func TestRecordBuilder_DefaultBeforeFieldIsAllowed(t *testing.T) {
	rec, err := goshape.Record().
		Defaults(map[string]any{"n": 1}).
		Field("n", goshape.Int).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := rec.Default("n")
	if !ok || !d.Literal() || d.Resolve() != 1 {
		t.Fatalf("default = %+v, %v", d, ok)
	}
}

func TestRecordBuilder_BuildCopiesState(t *testing.T) {
	b := goshape.Record().Field("a", goshape.Int)
	first := b.MustBuild()
	b.Field("b", goshape.Int)
	if n := len(first.Fields()); n != 1 {
		t.Fatalf("built record changed with its builder: %d fields", n)
	}
	if _, ok := first.FieldType("b"); ok {
		t.Fatalf("field b leaked into the first record")
	}
}

func TestMustBuild_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	goshape.Record().Field("", goshape.Int).MustBuild()
}

func TestNamed_BindOnce(t *testing.T) {
	n := goshape.Named("Entry")
	if n.Bound() {
		t.Fatalf("new handle should be unbound")
	}
	if err := n.Bind(goshape.Record().Field("name", goshape.String)); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !n.Bound() || n.Name() != "Entry" || n.String() != "Entry" {
		t.Fatalf("unexpected handle state: %v", n)
	}
	if err := n.Bind(goshape.Record()); !errors.Is(err, goshape.ErrMalformedSchema) {
		t.Fatalf("rebinding: expected ErrMalformedSchema, got %v", err)
	}
	if err := goshape.Named("").Bind(goshape.Record()); err == nil {
		t.Fatalf("empty identity should fail")
	}
	if err := goshape.Named("X").Bind(nil); err == nil {
		t.Fatalf("nil builder should fail")
	}
}

func TestNamed_FailedBindLeavesHandleUnbound(t *testing.T) {
	n := goshape.Named("Broken")
	if err := n.Bind(goshape.Record().Field("a", nil)); err == nil {
		t.Fatalf("expected error")
	}
	if n.Bound() {
		t.Fatalf("handle bound despite error")
	}
	if err := n.Bind(goshape.Record().Field("a", goshape.Int)); err != nil {
		t.Fatalf("second Bind should succeed: %v", err)
	}
}

func TestEnum_Construction(t *testing.T) {
	e := goshape.MustEnum("Language", "python", "java-script")
	if got := strings.Join(e.Members(), ","); got != "PYTHON,JAVA_SCRIPT" {
		t.Fatalf("members = %s", got)
	}
	if _, err := goshape.Enum("Dup", "a", "A"); !errors.Is(err, goshape.ErrMalformedSchema) {
		t.Fatalf("duplicate after canonicalisation: %v", err)
	}
	if _, err := goshape.Enum("", "a"); err == nil {
		t.Fatalf("empty identity should fail")
	}
	if _, err := goshape.Enum("E", ""); err == nil {
		t.Fatalf("empty member should fail")
	}
}

func TestValueEnum_Construction(t *testing.T) {
	if _, err := goshape.ValueEnum("V", goshape.Value("A", 1), goshape.Value("B", int64(1))); err == nil {
		t.Fatalf("shared value should fail")
	}
	if _, err := goshape.ValueEnum("V", goshape.Value("A", 1), goshape.Value("A", 2)); err == nil {
		t.Fatalf("duplicate name should fail")
	}
	if _, err := goshape.ValueEnum("V", goshape.Value("A", []any{1})); err == nil {
		t.Fatalf("non-scalar value should fail")
	}
	e, err := goshape.ValueEnum("V", goshape.Value("ONE", 1), goshape.Value("TRUE", true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := e.Member("TRUE")
	if !ok || m.Value != true || m.String() != "V.TRUE" {
		t.Fatalf("member = %v, %v", m, ok)
	}
}
