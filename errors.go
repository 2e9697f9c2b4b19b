package goshape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/goshape/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"
	CodeTooShort       = "too_short"
	CodeTooLong        = "too_long"
	CodePattern        = "pattern"
	CodeRequired       = "required"
	CodeItem           = "item"
	CodeField          = "field"
	CodeUnionExhausted = "union_exhausted"
	CodeInvalidEnum    = "invalid_enum"
	// Input nested deeper than ParseOpt.MaxDepth.
	CodeMaxDepth = "max_depth"
)

// ErrMalformedSchema is wrapped by every *SchemaError. It marks defects in the
// schema itself, which are never reported as data validation failures.
var ErrMalformedSchema = errors.New("goshape: malformed schema")

// ValidationError describes why a data node did not match its descriptor.
// Contexts added while unwinding (field name, list index, exhausted union)
// wrap the deeper error as Cause, so the chain leads back to the root cause.
type ValidationError struct {
	Code    string
	Message string
	// Field is set for CodeField and CodeRequired.
	Field string
	// Index is set for CodeItem; -1 otherwise.
	Index int
	// Params carries structured parameters (e.g. {"min":1, "got":"abc"}) for
	// i18n and diagnostics.
	Params map[string]any
	// Attempts holds the failure of each alternative for CodeUnionExhausted,
	// in declaration order. It is informational and not part of the chain.
	Attempts []error
	Cause    error
}

func (e *ValidationError) Error() string {
	b := &strings.Builder{}
	if p := e.Path(); p != "" {
		b.WriteString(p)
		b.WriteString(": ")
	}
	root := e.Root()
	fmt.Fprintf(b, "%s (%s)", root.Message, root.Code)
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Chain returns the validation errors from e down to the innermost cause.
func (e *ValidationError) Chain() []*ValidationError {
	var out []*ValidationError
	for cur := e; cur != nil; {
		out = append(out, cur)
		var next *ValidationError
		if cur.Cause == nil || !errors.As(cur.Cause, &next) {
			break
		}
		cur = next
	}
	return out
}

// Root returns the innermost validation error of the chain.
func (e *ValidationError) Root() *ValidationError {
	c := e.Chain()
	return c[len(c)-1]
}

// Path renders the chain as a dotted path such as "[2].contact.email".
// The root of the data renders as "".
func (e *ValidationError) Path() string {
	b := &strings.Builder{}
	for _, link := range e.Chain() {
		switch link.Code {
		case CodeField, CodeRequired:
			if link.Field == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(link.Field)
		case CodeItem:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(link.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Pointer renders the chain as a JSON Pointer (for example: /2/contact/email).
func (e *ValidationError) Pointer() string {
	var parts []string
	for _, link := range e.Chain() {
		switch link.Code {
		case CodeField, CodeRequired:
			if link.Field == "" {
				continue
			}
			// escape '~' -> '~0', '/' -> '~1' per RFC6901
			parts = append(parts, strings.ReplaceAll(strings.ReplaceAll(link.Field, "~", "~0"), "/", "~1"))
		case CodeItem:
			parts = append(parts, strconv.Itoa(link.Index))
		}
	}
	return "/" + strings.Join(parts, "/")
}

// AsValidationError extracts a *ValidationError from an error using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsCode reports whether any link of err's validation chain carries code.
func IsCode(err error, code string) bool {
	ve, ok := AsValidationError(err)
	if !ok {
		return false
	}
	for _, link := range ve.Chain() {
		if link.Code == code {
			return true
		}
	}
	return false
}

// SchemaError reports a malformed schema: a construction-time mistake by the
// schema author, or a descriptor the engine cannot dispatch on.
type SchemaError struct {
	Op      string // builder or engine operation that detected the defect
	Message string
}

func (e *SchemaError) Error() string {
	if e.Op == "" {
		return "goshape: " + e.Message
	}
	return "goshape: " + e.Op + ": " + e.Message
}

func (e *SchemaError) Unwrap() error { return ErrMalformedSchema }

func schemaErrorf(op, format string, args ...any) *SchemaError {
	return &SchemaError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// issue creates a leaf ValidationError whose message is resolved through i18n.
func issue(code string, params map[string]any) *ValidationError {
	return &ValidationError{Code: code, Message: i18n.T(code, stringParams(params)), Index: -1, Params: params}
}

func fieldError(name string, cause error) *ValidationError {
	params := map[string]any{"field": name}
	return &ValidationError{Code: CodeField, Message: i18n.T(CodeField, stringParams(params)), Field: name, Index: -1, Params: params, Cause: cause}
}

func itemError(i int, cause error) *ValidationError {
	params := map[string]any{"index": i}
	return &ValidationError{Code: CodeItem, Message: i18n.T(CodeItem, stringParams(params)), Index: i, Params: params, Cause: cause}
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		// "value" holds input data; quote strings so empty or padded values stay visible
		if s, ok := v.(string); ok && k == "value" {
			out[k] = strconv.Quote(s)
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
