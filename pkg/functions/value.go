package functions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindChar
	KindInt
	KindReal
	KindString
	KindArray
	KindTuple
	// KindFunction and KindReference are opaque: they can be passed to host
	// code but not returned from it.
	KindFunction
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindFunction:
		return "function"
	case KindReference:
		return "reference"
	}
	return "invalid"
}

// Value is the host-side representation of a script value.
// The zero Value is unit.
type Value struct {
	Kind  Kind
	Bool  bool
	Char  rune
	Int   int64 // also the remaining arity of a function and the target of a reference
	Real  float64
	Str   string
	Items []Value
}

// Unit returns the unit value.
func Unit() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Char wraps a character.
func Char(r rune) Value { return Value{Kind: KindChar, Char: r} }

// Int wraps an integer.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Real wraps a real.
func Real(f float64) Value { return Value{Kind: KindReal, Real: f} }

// String wraps a string.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Array builds an array. Elements must share a shape; this is checked when
// the value is converted back into the arena.
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }

// Tuple builds a tuple.
func Tuple(items ...Value) Value { return Value{Kind: KindTuple, Items: items} }

// Strings builds an array of strings.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return Array(items...)
}

// Number returns the numeric value of an int or real as float64.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindReal:
		return v.Real, true
	}
	return 0, false
}

// Text returns the string held by v; an empty array also counts as a string.
func (v Value) Text() (string, bool) {
	switch {
	case v.Kind == KindString:
		return v.Str, true
	case v.Kind == KindArray && len(v.Items) == 0:
		return "", true
	}
	return "", false
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		ls, lok := v.Text()
		rs, rok := o.Text()
		return lok && rok && ls == rs
	}
	switch v.Kind {
	case KindUnit:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindChar:
		return v.Char == o.Char
	case KindInt, KindFunction, KindReference:
		return v.Int == o.Int
	case KindReal:
		return v.Real == o.Real
	case KindString:
		return v.Str == o.Str
	case KindArray, KindTuple:
		if len(v.Items) != len(o.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the value in script notation.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.Kind {
	case KindUnit:
		sb.WriteString("()")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case KindChar:
		sb.WriteString(strconv.QuoteRune(v.Char))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindReal:
		s := strconv.FormatFloat(v.Real, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		sb.WriteString(s)
	case KindString:
		sb.WriteString(strconv.Quote(v.Str))
	case KindArray, KindTuple:
		lb, rb := byte('['), byte(']')
		if v.Kind == KindTuple {
			lb, rb = '{', '}'
		}
		sb.WriteByte(lb)
		for i, it := range v.Items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			it.write(sb)
		}
		sb.WriteByte(rb)
	case KindFunction:
		fmt.Fprintf(sb, "<func/%d>", v.Int)
	case KindReference:
		fmt.Fprintf(sb, "<ref @%d>", v.Int)
	default:
		sb.WriteString("<invalid>")
	}
}

// Native converts the value into plain Go values: bool, rune, int64, float64,
// string, []interface{} for arrays and tuples, and nil for unit. Functions and
// references become their string rendering.
func (v Value) Native() interface{} {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindChar:
		return v.Char
	case KindInt:
		return v.Int
	case KindReal:
		return v.Real
	case KindString:
		return v.Str
	case KindArray, KindTuple:
		out := make([]interface{}, len(v.Items))
		for i, it := range v.Items {
			out[i] = it.Native()
		}
		return out
	case KindFunction, KindReference:
		return v.String()
	}
	return nil
}

// MarshalJSON encodes the value as plain JSON: unit is null, chars are
// one-character strings, arrays and tuples are JSON arrays, and functions
// and references are their string rendering.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindChar:
		return json.Marshal(string(v.Char))
	case KindArray, KindTuple:
		if v.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Items)
	}
	return json.Marshal(v.Native())
}
