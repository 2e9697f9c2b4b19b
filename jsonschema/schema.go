package jsonschema

// Draft is the dialect emitted by the exporter.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// Only the keywords the exporter produces are modelled.
type Schema struct {
	// Root only
	SchemaURI string             `json:"$schema,omitempty"`
	Defs      map[string]*Schema `json:"$defs,omitempty"`

	// Core
	Ref     string `json:"$ref,omitempty"`
	Title   string `json:"title,omitempty"`
	Type    string `json:"type,omitempty"`
	Default any    `json:"default,omitempty"`
	Enum    []any  `json:"enum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Union (first match wins at runtime, so alternatives may overlap)
	AnyOf []*Schema `json:"anyOf,omitempty"`
}

// DefRef returns the $ref pointing at a named definition.
func DefRef(name string) string { return "#/$defs/" + name }
