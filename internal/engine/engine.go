package engine

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token is one lexical element of a JSON-like document.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
}

// TokenSource is a minimal interface required by the tree builder.
type TokenSource interface {
	NextToken() (Token, error)
}

// NumberMode selects how number tokens become Go values.
type NumberMode int

const (
	// NumberNative yields int64 for integral literals that fit and float64 otherwise.
	NumberNative NumberMode = iota
	// NumberJSON keeps the literal as json.Number.
	NumberJSON
)

// ErrUnexpectedToken is returned when the source yields a token that cannot
// appear at the current position.
var ErrUnexpectedToken = errors.New("engine: unexpected token")

// Decode builds a generic tree (map[string]any, []any, scalars) from src.
// Later duplicate keys overwrite earlier ones; wrap src with
// WrapWithEnforcement to reject them instead.
func Decode(src TokenSource, mode NumberMode) (any, error) {
	b := builder{src: src, mode: mode}
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return b.value(tok)
}

type builder struct {
	src  TokenSource
	mode NumberMode
}

func (b builder) value(tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return b.object()
	case KindBeginArray:
		return b.array()
	case KindString:
		return tok.String, nil
	case KindNumber:
		return b.number(tok.Number)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, ErrUnexpectedToken
	}
}

func (b builder) number(lit string) (any, error) {
	if b.mode == NumberJSON {
		return json.Number(lit), nil
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (b builder) object() (any, error) {
	m := make(map[string]any)
	for {
		tok, err := b.src.NextToken()
		if err != nil {
			return nil, eofIsUnexpected(err)
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, ErrUnexpectedToken
		}
		vt, err := b.src.NextToken()
		if err != nil {
			return nil, eofIsUnexpected(err)
		}
		v, err := b.value(vt)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func (b builder) array() (any, error) {
	arr := []any{}
	for {
		tok, err := b.src.NextToken()
		if err != nil {
			return nil, eofIsUnexpected(err)
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := b.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func eofIsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
