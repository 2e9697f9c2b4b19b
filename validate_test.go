package goshape_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/reoring/goshape"
)

func TestValidate_PrimitivesPassThrough(t *testing.T) {
	cases := []struct {
		name string
		typ  goshape.Type
		in   any
	}{
		{"int", goshape.Int, 1},
		{"int64", goshape.Int, int64(-7)},
		{"json number int", goshape.Int, json.Number("42")},
		{"float", goshape.Float, 1.5},
		{"json number float", goshape.Float, json.Number("1e3")},
		{"bool", goshape.Bool, true},
		{"string", goshape.String, "x"},
		{"nothing", goshape.Nothing, nil},
		{"any mapping", goshape.Any, map[string]any{"k": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := goshape.Validate(tc.typ, tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(out, tc.in) {
				t.Fatalf("got %#v, want %#v", out, tc.in)
			}
		})
	}
}

func TestValidate_TypeMismatchIsExact(t *testing.T) {
	cases := []struct {
		name string
		typ  goshape.Type
		in   any
	}{
		{"bool is not int", goshape.Int, true},
		{"int is not bool", goshape.Bool, 1},
		{"float is not int", goshape.Int, 1.0},
		{"int is not float", goshape.Float, 1},
		{"string is not int", goshape.Int, "5"},
		{"null is not string", goshape.String, nil},
		{"zero is not nothing", goshape.Nothing, 0},
		{"mapping is not list", goshape.List(goshape.Int), map[string]any{}},
		{"list is not record", goshape.Record().Field("a", goshape.Int).MustBuild(), []any{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := goshape.Validate(tc.typ, tc.in)
			ve, ok := goshape.AsValidationError(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Code != goshape.CodeInvalidType {
				t.Fatalf("code = %q, want %q", ve.Code, goshape.CodeInvalidType)
			}
		})
	}
}

func TestValidate_TextConstraints(t *testing.T) {
	text := goshape.MustRestrict(goshape.MinLen(5), goshape.MaxLen(5), goshape.Pattern("he.*"))
	if out, err := goshape.Validate(text, "hello"); err != nil || out != "hello" {
		t.Fatalf("hello: out=%v err=%v", out, err)
	}
	cases := map[string]string{
		"hell":   goshape.CodeTooShort,
		"helloo": goshape.CodeTooLong,
		"world":  goshape.CodePattern,
	}
	for in, code := range cases {
		_, err := goshape.Validate(text, in)
		ve, ok := goshape.AsValidationError(err)
		if !ok || ve.Code != code {
			t.Fatalf("%q: expected %s, got %v", in, code, err)
		}
		if ve.Params["value"] != in {
			t.Fatalf("%q: value param = %v", in, ve.Params["value"])
		}
	}
}

func TestValidate_TextLengthCountsCodePoints(t *testing.T) {
	text := goshape.MustRestrict(goshape.MaxLen(3))
	if _, err := goshape.Validate(text, "日本語"); err != nil {
		t.Fatalf("three code points should fit: %v", err)
	}
	if _, err := goshape.Validate(text, "日本語!"); !goshape.IsCode(err, goshape.CodeTooLong) {
		t.Fatalf("expected too_long, got %v", err)
	}
}

func TestValidate_PatternIsAnchored(t *testing.T) {
	text := goshape.MustRestrict(goshape.Pattern("a|b"))
	if _, err := goshape.Validate(text, "b"); err != nil {
		t.Fatalf("b: %v", err)
	}
	if _, err := goshape.Validate(text, "ab"); !goshape.IsCode(err, goshape.CodePattern) {
		t.Fatalf("alternation must match the whole string, got %v", err)
	}
}

func TestValidate_Sequence(t *testing.T) {
	ints := goshape.List(goshape.Int)
	out, err := goshape.Validate(ints, []any{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, []any{1, 2, 3}) {
		t.Fatalf("got %#v", out)
	}

	_, err = goshape.Validate(ints, []any{1, "x"})
	ve, ok := goshape.AsValidationError(err)
	if !ok || ve.Code != goshape.CodeItem || ve.Index != 1 {
		t.Fatalf("expected item error at index 1, got %v", err)
	}
	if ve.Root().Code != goshape.CodeInvalidType {
		t.Fatalf("root code = %q", ve.Root().Code)
	}
	if ve.Path() != "[1]" {
		t.Fatalf("path = %q", ve.Path())
	}
}

func TestValidate_SequenceAcceptsTypedSlices(t *testing.T) {
	out, err := goshape.Validate(goshape.List(goshape.String), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, []any{"a", "b"}) {
		t.Fatalf("got %#v", out)
	}
}

func TestValidate_RecordKeyNormalization(t *testing.T) {
	rec := goshape.Record().
		Field("foo", goshape.Int).
		Field("bar_baz", goshape.Bool).
		MustBuild()
	out, err := goshape.Validate(rec, map[string]any{"foo": 1, "bar-baz": false, "extra": "ignored"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"foo": 1, "bar_baz": false}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}
}

func TestValidate_RecordKeyCollisionPrefersUnderscore(t *testing.T) {
	rec := goshape.Record().Field("a_b", goshape.Int).MustBuild()
	out, err := goshape.Validate(rec, map[string]any{"a-b": 1, "a_b": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.(map[string]any)["a_b"]; got != 2 {
		t.Fatalf("a_b = %v, want 2", got)
	}
}

func TestValidate_RecordAcceptsYAMLStyleMaps(t *testing.T) {
	rec := goshape.Record().Field("name", goshape.String).MustBuild()
	out, err := goshape.Validate(rec, map[any]any{"name": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"name": "x"}) {
		t.Fatalf("got %#v", out)
	}
	if _, err := goshape.Validate(rec, map[any]any{1: "x"}); !goshape.IsCode(err, goshape.CodeInvalidType) {
		t.Fatalf("non-string keys must not form a mapping, got %v", err)
	}
}

func TestValidate_RequiredAndFieldErrors(t *testing.T) {
	rec := goshape.Record().
		Field("name", goshape.String).
		Field("age", goshape.Int).
		MustBuild()

	_, err := goshape.Validate(rec, map[string]any{"age": 3})
	ve, ok := goshape.AsValidationError(err)
	if !ok || ve.Code != goshape.CodeRequired || ve.Field != "name" {
		t.Fatalf("expected required name, got %v", err)
	}

	_, err = goshape.Validate(rec, map[string]any{"name": "x", "age": "3"})
	ve, ok = goshape.AsValidationError(err)
	if !ok || ve.Code != goshape.CodeField || ve.Field != "age" {
		t.Fatalf("expected field error for age, got %v", err)
	}
	if !goshape.IsCode(err, goshape.CodeInvalidType) {
		t.Fatalf("expected chained invalid_type, got %v", err)
	}
}

func TestValidate_DefaultsOnlyOnAbsence(t *testing.T) {
	rec := goshape.Record().Field("foo", goshape.Int).Default(0).MustBuild()

	out, err := goshape.Validate(rec, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"foo": 0}) {
		t.Fatalf("got %#v", out)
	}

	// explicit null is present, so it is validated rather than defaulted
	_, err = goshape.Validate(rec, map[string]any{"foo": nil})
	ve, ok := goshape.AsValidationError(err)
	if !ok || ve.Code != goshape.CodeField || ve.Root().Code != goshape.CodeInvalidType {
		t.Fatalf("expected field/invalid_type, got %v", err)
	}
}

func TestValidate_DefaultFactoryIsFresh(t *testing.T) {
	calls := 0
	factory := func() any {
		calls++
		return make([]any, 0, 1)
	}
	rec := goshape.Record().Field("tags", goshape.List(goshape.String)).DefaultFunc(factory).MustBuild()

	a, err := goshape.Validate(rec, map[string]any{})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := goshape.Validate(rec, map[string]any{})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if calls != 2 {
		t.Fatalf("factory calls = %d, want 2", calls)
	}
	ta := a.(map[string]any)["tags"].([]any)
	tb := b.(map[string]any)["tags"].([]any)
	if reflect.ValueOf(ta).Pointer() == reflect.ValueOf(tb).Pointer() {
		t.Fatalf("both results share one default list")
	}
}

func TestValidate_DefaultsMapTreatsFuncsAsFactories(t *testing.T) {
	rec := goshape.Record().
		Field("n", goshape.Int).
		Field("tags", goshape.List(goshape.String)).
		Defaults(map[string]any{"n": 7, "tags": func() any { return []any{"x"} }}).
		MustBuild()
	out, err := goshape.Validate(rec, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"n": 7, "tags": []any{"x"}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}
}

func TestValidate_UnionFirstMatchWins(t *testing.T) {
	out, err := goshape.Validate(goshape.Union(goshape.Int, goshape.String), "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "5" {
		t.Fatalf("got %#v, want the string \"5\"", out)
	}

	// an Any alternative shadows everything after it
	out, err = goshape.Validate(goshape.Union(goshape.Any, goshape.Int), 3)
	if err != nil || out != 3 {
		t.Fatalf("out=%v err=%v", out, err)
	}
}

func TestValidate_UnionExhausted(t *testing.T) {
	u := goshape.Union(goshape.Int, goshape.String, goshape.Nothing)
	_, err := goshape.Validate(u, false)
	ve, ok := goshape.AsValidationError(err)
	if !ok || ve.Code != goshape.CodeUnionExhausted {
		t.Fatalf("expected union_exhausted, got %v", err)
	}
	if len(ve.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(ve.Attempts))
	}
	for i, a := range ve.Attempts {
		if !goshape.IsCode(a, goshape.CodeInvalidType) {
			t.Fatalf("attempt %d: %v", i, a)
		}
	}
	if ve.Params["got"] != "bool" {
		t.Fatalf("got param = %v", ve.Params["got"])
	}
}

func TestValidate_OptionalField(t *testing.T) {
	rec := goshape.Record().
		Field("link", goshape.Optional(goshape.MustRestrict(goshape.Pattern("https?://.+")))).Default(nil).
		MustBuild()
	for _, in := range []map[string]any{{}, {"link": nil}, {"link": "https://example.com"}} {
		if _, err := goshape.Validate(rec, in); err != nil {
			t.Fatalf("%v: %v", in, err)
		}
	}
	_, err := goshape.Validate(rec, map[string]any{"link": "ftp://x"})
	ve, _ := goshape.AsValidationError(err)
	if ve == nil || ve.Root().Code != goshape.CodeUnionExhausted || ve.Path() != "link" {
		t.Fatalf("expected union_exhausted at link, got %v", err)
	}
}

func TestValidate_NamedRecordIdentity(t *testing.T) {
	fields := func() goshape.RecordSpec {
		return goshape.Record().Field("x", goshape.Int)
	}
	a := goshape.Named("A").MustBind(fields())
	b := goshape.Named("B").MustBind(fields())

	oa, err := goshape.Validate(a, map[string]any{"x": 1})
	if err != nil {
		t.Fatalf("A: %v", err)
	}
	ob, err := goshape.Validate(b, map[string]any{"x": 1})
	if err != nil {
		t.Fatalf("B: %v", err)
	}
	ia, ib := oa.(*goshape.Instance), ob.(*goshape.Instance)
	if ia.Type == ib.Type || ia.Name() == ib.Name() {
		t.Fatalf("instances of A and B share an identity")
	}
	if !reflect.DeepEqual(ia.Fields, ib.Fields) {
		t.Fatalf("fields should compare structurally: %v vs %v", ia.Fields, ib.Fields)
	}
	if reflect.DeepEqual(oa, ob) {
		t.Fatalf("instances of different named records must not be equal")
	}
	if got := ia.String(); got != "A(x=1)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestValidate_EnumNormalization(t *testing.T) {
	runsOn := goshape.MustEnum("RunsOn", "server", "local", "web-app")
	for _, in := range []string{"SERVER", "Server", "server"} {
		out, err := goshape.Validate(runsOn, in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		m := out.(goshape.Member)
		if m.Name != "SERVER" || m.Enum() != "RunsOn" {
			t.Fatalf("%q: got %v", in, m)
		}
	}
	out, err := goshape.Validate(runsOn, "Web-App")
	if err != nil || out.(goshape.Member).Name != "WEB_APP" {
		t.Fatalf("hyphenated label: out=%v err=%v", out, err)
	}

	_, err = goshape.Validate(runsOn, "unknown")
	ve, ok := goshape.AsValidationError(err)
	if !ok || ve.Code != goshape.CodeInvalidEnum {
		t.Fatalf("expected invalid_enum, got %v", err)
	}
	if ve.Params["enum"] != "RunsOn" || ve.Params["value"] != "unknown" {
		t.Fatalf("params = %v", ve.Params)
	}
}

func TestValidate_ValueEnumIsKindExact(t *testing.T) {
	argType := goshape.MustValueEnum("ArgType",
		goshape.Value("STRING", "string"),
		goshape.Value("ONE", 1),
		goshape.Value("ON", true),
	)
	out, err := goshape.Validate(argType, "string")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m := out.(goshape.Member); m.Name != "STRING" || goshape.Plain(m) != "string" {
		t.Fatalf("got %v", m)
	}
	if out, err := goshape.Validate(argType, int64(1)); err != nil || out.(goshape.Member).Name != "ONE" {
		t.Fatalf("int64(1): out=%v err=%v", out, err)
	}
	for _, in := range []any{"STRING", 1.0, "1", false} {
		if _, err := goshape.Validate(argType, in); !goshape.IsCode(err, goshape.CodeInvalidEnum) {
			t.Fatalf("%#v: expected invalid_enum, got %v", in, err)
		}
	}
}

func TestValidate_SelfReferentialTree(t *testing.T) {
	node := goshape.Named("Node")
	node.MustBind(goshape.Record().
		Field("name", goshape.String).
		Field("subtree", goshape.Optional(goshape.List(node))).Default(nil))

	data := map[string]any{
		"name": "root",
		"subtree": []any{
			map[string]any{"name": "a", "subtree": []any{
				map[string]any{"name": "a1"},
			}},
			map[string]any{"name": "b", "subtree": nil},
		},
	}
	out, err := goshape.Validate(node, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := out.(*goshape.Instance)
	a := root.Get("subtree").([]any)[0].(*goshape.Instance)
	a1 := a.Get("subtree").([]any)[0].(*goshape.Instance)
	if a1.Get("name") != "a1" || a1.Get("subtree") != nil {
		t.Fatalf("leaf = %v", a1)
	}
	if a1.Type != node {
		t.Fatalf("leaf type is not the Node descriptor")
	}

	bad := map[string]any{"name": "root", "subtree": []any{
		map[string]any{"name": "a", "subtree": []any{map[string]any{"name": 1}}},
	}}
	_, err = goshape.Validate(node, bad)
	if err == nil {
		t.Fatalf("expected an error")
	}
	// union exhaustion hides the inner path; the first attempt keeps it
	ve, _ := goshape.AsValidationError(err)
	if ve.Path() != "subtree" || ve.Root().Code != goshape.CodeUnionExhausted {
		t.Fatalf("path=%q root=%q", ve.Path(), ve.Root().Code)
	}
	inner, _ := goshape.AsValidationError(ve.Root().Attempts[0])
	if inner.Path() != "[0].subtree" {
		t.Fatalf("attempt path = %q", inner.Path())
	}
}

func TestValidate_MaxDepth(t *testing.T) {
	nested := goshape.Named("Nested")
	nested.MustBind(goshape.Record().Field("next", goshape.Optional(nested)).Default(nil))

	var data any = map[string]any{}
	for i := 0; i < 10; i++ {
		data = map[string]any{"next": data}
	}
	if _, err := goshape.Validate(nested, data); err != nil {
		t.Fatalf("default depth: %v", err)
	}
	_, err := goshape.Validate(nested, data, goshape.ParseOpt{MaxDepth: 5})
	if !goshape.IsCode(err, goshape.CodeMaxDepth) {
		t.Fatalf("expected max_depth, got %v", err)
	}
	if ve, _ := goshape.AsValidationError(err); ve.Root().Code != goshape.CodeMaxDepth {
		t.Fatalf("max_depth must not be folded into union_exhausted: %v", err)
	}
	// last option wins; negative disables the guard
	if _, err := goshape.Validate(nested, data, goshape.ParseOpt{MaxDepth: 5}, goshape.ParseOpt{MaxDepth: -1}); err != nil {
		t.Fatalf("guard disabled: %v", err)
	}
}

func TestValidate_MalformedSchema(t *testing.T) {
	unbound := goshape.Named("Later")
	cases := []struct {
		name string
		typ  goshape.Type
		in   any
	}{
		{"nil descriptor", nil, 1},
		{"unbound named record", unbound, map[string]any{}},
		{"nil list element", goshape.List(nil), []any{1}},
		{"empty union", goshape.Union(), 1},
		{"typed nil", (*goshape.Text)(nil), "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := goshape.Validate(tc.typ, tc.in)
			if !errors.Is(err, goshape.ErrMalformedSchema) {
				t.Fatalf("expected ErrMalformedSchema, got %v", err)
			}
			if _, ok := goshape.AsValidationError(err); ok {
				t.Fatalf("schema defects must not be validation errors: %v", err)
			}
		})
	}
}

func TestValidate_MalformedSchemaEscapesUnion(t *testing.T) {
	u := goshape.Union(goshape.Named("Unbound"), goshape.Any)
	_, err := goshape.Validate(u, map[string]any{})
	var se *goshape.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}
