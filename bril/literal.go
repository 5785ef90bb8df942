package bril

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LiteralKind discriminates the value held by a Literal.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitBool
	LitFloat
	LitChar
)

// Literal is a constant operand value. Only the field selected by Kind
// is meaningful.
type Literal struct {
	Kind  LiteralKind
	Int   int64
	Bool  bool
	Float float64
	Char  rune
}

func IntLit(v int64) Literal { return Literal{Kind: LitInt, Int: v} }

func BoolLit(v bool) Literal { return Literal{Kind: LitBool, Bool: v} }

func FloatLit(v float64) Literal { return Literal{Kind: LitFloat, Float: v} }

func CharLit(v rune) Literal { return Literal{Kind: LitChar, Char: v} }

// Equal reports value equality; literals of different kinds are never
// equal.
func (l Literal) Equal(o Literal) bool {
	if l.Kind != o.Kind {
		return false
	}
	switch l.Kind {
	case LitInt:
		return l.Int == o.Int
	case LitBool:
		return l.Bool == o.Bool
	case LitFloat:
		return l.Float == o.Float
	case LitChar:
		return l.Char == o.Char
	}
	return false
}

func (l Literal) String() string {
	switch l.Kind {
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LitChar:
		return string(l.Char)
	}
	return "<invalid literal>"
}

// UnmarshalJSON decodes bril's untyped JSON scalars: numbers without a
// fractional part become ints, numbers with one become floats, booleans
// and one-rune strings map to their kinds.
func (l *Literal) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case bool:
		*l = BoolLit(v)
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			*l = IntLit(i)
			return nil
		}
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("%w: bad numeric literal %q", ErrMalformedIR, v.String())
		}
		*l = FloatLit(f)
	case string:
		runes := []rune(v)
		if len(runes) != 1 {
			return fmt.Errorf("%w: character literal %q is not one rune", ErrMalformedIR, v)
		}
		*l = CharLit(runes[0])
	default:
		return fmt.Errorf("%w: unsupported literal %s", ErrMalformedIR, string(b))
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON, except for floats with no
// fractional part: they encode as whole numbers and decode back as ints.
func (l Literal) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LitInt:
		return json.Marshal(l.Int)
	case LitBool:
		return json.Marshal(l.Bool)
	case LitFloat:
		return json.Marshal(l.Float)
	case LitChar:
		return json.Marshal(string(l.Char))
	}
	return nil, fmt.Errorf("invalid literal kind %d", l.Kind)
}
