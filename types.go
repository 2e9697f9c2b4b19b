package goshape

// Kind identifies a descriptor case of the schema type model.
type Kind int

const (
	KindNothing Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindSequence
	KindRecord
	KindAlternation
	KindNamedRecord
	KindEnum
	KindValueEnum
	KindAny
)

var kindNames = [...]string{
	KindNothing:     "nothing",
	KindBool:        "bool",
	KindInt:         "int",
	KindFloat:       "float",
	KindText:        "string",
	KindSequence:    "list",
	KindRecord:      "record",
	KindAlternation: "union",
	KindNamedRecord: "named record",
	KindEnum:        "enum",
	KindValueEnum:   "value enum",
	KindAny:         "any",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// DefaultMaxDepth bounds input nesting when ParseOpt.MaxDepth is zero.
const DefaultMaxDepth = 512

// ParseOpt bundles validation options. When several are passed, the last one wins.
type ParseOpt struct {
	// MaxDepth caps nesting of sequences and mappings in the input.
	// Zero selects DefaultMaxDepth; a negative value disables the guard.
	MaxDepth int
}

func resolveOpt(opts []ParseOpt) ParseOpt {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth == 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	return opt
}
