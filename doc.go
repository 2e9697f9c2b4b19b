// Package goshape converts untyped, already-decoded data trees (the
// map/slice/scalar values produced by YAML or JSON decoders) into typed,
// validated values described by a declarative schema.
//
// The package provides:
//
// - A closed schema type model (Type): primitives, constrained strings, lists,
// records, named records, unions and enumerations
// - Builders that report schema-author mistakes as *SchemaError
// - A fail-fast recursive engine (Validate) with a chained error model
// (*ValidationError, Path, Pointer, Root)
// - Output projection (Plain, As) and JSON Schema export (ExportJSONSchema)
//
// Design policy:
// - Keep the type model, engine and error model in the root package; decoders
// live under source/, the CLI under cmd/goshape.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	node := goshape.Named("Node")
//	node.MustBind(goshape.Record().
//		Field("name", goshape.String).
//		Field("children", goshape.List(node)).DefaultFunc(func() any { return []any{} }))
//
//	out, err := goshape.Validate(node, data)
//	if ve, ok := goshape.AsValidationError(err); ok {
//		fmt.Println(ve.Path(), ve.Root().Code)
//	}
package goshape
