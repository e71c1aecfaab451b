package evaluator

import (
	"math"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// fnReal converts an int to a real. Reals pass through.
func fnReal(c *Call, x arena.Handle) error {
	switch c.Arena.PeekType(x) {
	case arena.TagInt:
		c.Arena.PushReal(float64(c.Arena.PeekInt(x)))
	case arena.TagReal:
		c.Arena.Copy(x)
	default:
		return c.Errorf(types.ErrTypeMismatch, "cannot convert %s to real", c.Arena.PeekType(x))
	}
	return nil
}

// fnInt truncates a real toward zero or returns the code point of a char.
func fnInt(c *Call, x arena.Handle) error {
	switch c.Arena.PeekType(x) {
	case arena.TagInt:
		c.Arena.Copy(x)
	case arena.TagReal:
		v := c.Arena.PeekReal(x)
		if math.IsNaN(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return c.Errorf(types.ErrInvalidArgument, "%g does not fit in an int", v)
		}
		c.Arena.PushInt(int64(v))
	case arena.TagChar:
		c.Arena.PushInt(int64(c.Arena.PeekChar(x)))
	default:
		return c.Errorf(types.ErrTypeMismatch, "cannot convert %s to int", c.Arena.PeekType(x))
	}
	return nil
}

func fnChar(c *Call, x arena.Handle) error {
	if err := c.Expect(x, arena.TagInt); err != nil {
		return err
	}
	v := c.Arena.PeekInt(x)
	if v < 0 || v > unicodeMax {
		return c.Errorf(types.ErrInvalidArgument, "%d is not a code point", v)
	}
	c.Arena.PushChar(rune(v))
	return nil
}

const unicodeMax = 0x10FFFF

// fnTypeOf returns the type name of a value. Non-empty character arrays are
// reported as "string".
func fnTypeOf(c *Call, x arena.Handle) error {
	name := c.Arena.PeekType(x).String()
	if c.Arena.PeekSize(x) > 0 && c.Arena.IsString(x) {
		name = "string"
	}
	c.Arena.PushString(name)
	return nil
}
