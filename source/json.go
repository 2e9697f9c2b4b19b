package source

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/reoring/goshape/internal/engine"
)

func decodeJSON(data []byte, opt Options) (any, error) {
	// the token stream skips separators without checking them
	if !j.Valid(data) {
		var v any
		err := j.Unmarshal(data, &v)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, &Error{Issue: Issue{Code: CodeSyntax, Message: err.Error()}, Err: err}
	}
	dup := engine.DupWarn
	if opt.Strict {
		dup = engine.DupError
	}
	src := engine.WrapWithEnforcement(newTokenSource(bytes.NewReader(data)), engine.EnforceOptions{
		OnDuplicate: dup,
		MaxDepth:    opt.maxDepth(),
		Warn: func(is engine.Issue) {
			opt.warn(Issue{Code: is.Code, Path: is.Path, Message: is.Message})
		},
	})
	mode := engine.NumberNative
	if opt.UseNumber {
		mode = engine.NumberJSON
	}
	v, err := engine.Decode(src, mode)
	if err != nil {
		return nil, jsonError(err)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, &Error{Issue: Issue{Code: CodeSyntax, Message: "unexpected data after the top-level value"}}
		}
		return nil, jsonError(err)
	}
	return v, nil
}

func jsonError(err error) error {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return &Error{Issue: Issue{Code: ee.Code, Path: ee.Path, Message: ee.Message}, Err: err}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &Error{Issue: Issue{Code: CodeSyntax, Message: err.Error()}, Err: err}
}

// tokenSource adapts the goccy/go-json streaming decoder to engine.TokenSource,
// telling object keys apart from string values.
type tokenSource struct {
	dec   *j.Decoder
	stack []frame
}

type frame struct {
	object       bool
	expectingKey bool
}

func newTokenSource(r io.Reader) *tokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &tokenSource{dec: dec}
}

func (s *tokenSource) NextToken() (engine.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return engine.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{object: true, expectingKey: true})
			return engine.Token{Kind: engine.KindBeginObject}, nil
		case '[':
			s.stack = append(s.stack, frame{})
			return engine.Token{Kind: engine.KindBeginArray}, nil
		case '}', ']':
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
			s.valueDone()
			if v == '}' {
				return engine.Token{Kind: engine.KindEndObject}, nil
			}
			return engine.Token{Kind: engine.KindEndArray}, nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].object && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			return engine.Token{Kind: engine.KindKey, String: v}, nil
		}
		s.valueDone()
		return engine.Token{Kind: engine.KindString, String: v}, nil
	case bool:
		s.valueDone()
		return engine.Token{Kind: engine.KindBool, Bool: v}, nil
	case j.Number:
		s.valueDone()
		// the literal aliases the decoder's buffer
		return engine.Token{Kind: engine.KindNumber, Number: strings.Clone(string(v))}, nil
	case float64:
		s.valueDone()
		return engine.Token{Kind: engine.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	}
	s.valueDone()
	return engine.Token{Kind: engine.KindNull}, nil
}

func (s *tokenSource) valueDone() {
	if n := len(s.stack); n > 0 && s.stack[n-1].object {
		s.stack[n-1].expectingKey = true
	}
}
