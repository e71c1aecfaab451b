package evaluator

import (
	"math"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

type (
	intOp  func(c *Call, a, b int64) (int64, error)
	realOp func(c *Call, a, b float64) (float64, error)
)

// arithmetic builds a binary operator over two ints or two reals. Mixed
// operands are rejected; there is no implicit promotion. A nil realOp makes
// the operator int-only.
func arithmetic(iop intOp, rop realOp) Native2 {
	return func(c *Call, x, y arena.Handle) error {
		a := c.Arena
		tx, ty := a.PeekType(x), a.PeekType(y)
		if tx != ty || (tx != arena.TagInt && tx != arena.TagReal) {
			return c.Errorf(types.ErrTypeMismatch, "operands must both be int or both be real, got %s and %s", tx, ty)
		}
		if tx == arena.TagInt {
			v, err := iop(c, a.PeekInt(x), a.PeekInt(y))
			if err != nil {
				return err
			}
			a.PushInt(v)
			return nil
		}
		if rop == nil {
			return c.Errorf(types.ErrTypeMismatch, "operands must be int, got real")
		}
		v, err := rop(c, a.PeekReal(x), a.PeekReal(y))
		if err != nil {
			return err
		}
		a.PushReal(v)
		return nil
	}
}

func addInt(_ *Call, a, b int64) (int64, error) { return a + b, nil }
func subInt(_ *Call, a, b int64) (int64, error) { return a - b, nil }
func mulInt(_ *Call, a, b int64) (int64, error) { return a * b, nil }

func divInt(c *Call, a, b int64) (int64, error) {
	if b == 0 {
		return 0, c.Errorf(types.ErrDivisionByZero, "division by zero")
	}
	return a / b, nil
}

func modInt(c *Call, a, b int64) (int64, error) {
	if b == 0 {
		return 0, c.Errorf(types.ErrDivisionByZero, "division by zero")
	}
	return a % b, nil
}

func addReal(_ *Call, a, b float64) (float64, error) { return a + b, nil }
func subReal(_ *Call, a, b float64) (float64, error) { return a - b, nil }
func mulReal(_ *Call, a, b float64) (float64, error) { return a * b, nil }

func divReal(c *Call, a, b float64) (float64, error) {
	if b == 0 {
		return 0, c.Errorf(types.ErrDivisionByZero, "division by zero")
	}
	return a / b, nil
}

func fnNeg(c *Call, x arena.Handle) error {
	switch c.Arena.PeekType(x) {
	case arena.TagInt:
		c.Arena.PushInt(-c.Arena.PeekInt(x))
	case arena.TagReal:
		c.Arena.PushReal(-c.Arena.PeekReal(x))
	default:
		return c.Errorf(types.ErrTypeMismatch, "expected a number, got %s", c.Arena.PeekType(x))
	}
	return nil
}

func fnAbs(c *Call, x arena.Handle) error {
	switch c.Arena.PeekType(x) {
	case arena.TagInt:
		v := c.Arena.PeekInt(x)
		if v < 0 {
			v = -v
		}
		c.Arena.PushInt(v)
	case arena.TagReal:
		c.Arena.PushReal(math.Abs(c.Arena.PeekReal(x)))
	default:
		return c.Errorf(types.ErrTypeMismatch, "expected a number, got %s", c.Arena.PeekType(x))
	}
	return nil
}

// realFunc lifts a real-to-real function into a one-argument built-in.
func realFunc(f func(c *Call, v float64) (float64, error)) Native1 {
	return func(c *Call, x arena.Handle) error {
		if err := c.Expect(x, arena.TagReal); err != nil {
			return err
		}
		v, err := f(c, c.Arena.PeekReal(x))
		if err != nil {
			return err
		}
		c.Arena.PushReal(v)
		return nil
	}
}

func sqrtReal(c *Call, v float64) (float64, error) {
	if v < 0 {
		return 0, c.Errorf(types.ErrInvalidArgument, "square root of negative number %g", v)
	}
	return math.Sqrt(v), nil
}

func floorReal(_ *Call, v float64) (float64, error) { return math.Floor(v), nil }
func ceilReal(_ *Call, v float64) (float64, error)  { return math.Ceil(v), nil }

func fnRandInt(c *Call, lo, hi arena.Handle) error {
	if err := c.Expect(lo, arena.TagInt); err != nil {
		return err
	}
	if err := c.Expect(hi, arena.TagInt); err != nil {
		return err
	}
	l, h := c.Arena.PeekInt(lo), c.Arena.PeekInt(hi)
	if l > h {
		return c.Errorf(types.ErrInvalidArgument, "empty range [%d, %d]", l, h)
	}
	span := uint64(h - l)
	if span == math.MaxUint64 {
		c.Arena.PushInt(int64(c.Rand().Uint64()))
		return nil
	}
	c.Arena.PushInt(l + int64(randUint64n(c, span+1)))
	return nil
}

// randUint64n returns a value in [0, n) for n > 0.
func randUint64n(c *Call, n uint64) uint64 {
	if n <= math.MaxInt64 {
		return uint64(c.Rand().Int63n(int64(n)))
	}
	for {
		v := c.Rand().Uint64()
		if v < n {
			return v
		}
	}
}

// fnRandReal returns a real in [0, limit).
func fnRandReal(c *Call, limit arena.Handle) error {
	if err := c.Expect(limit, arena.TagReal); err != nil {
		return err
	}
	c.Arena.PushReal(c.Rand().Float64() * c.Arena.PeekReal(limit))
	return nil
}
