package evaluator

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

func fnEqual(c *Call, x, y arena.Handle) error {
	c.Arena.PushBool(c.Arena.Equal(x, y))
	return nil
}

func fnNotEqual(c *Call, x, y arena.Handle) error {
	c.Arena.PushBool(!c.Arena.Equal(x, y))
	return nil
}

// comparison builds an ordering operator over two ints, two reals or two
// chars.
func comparison(accept func(cmp int) bool) Native2 {
	return func(c *Call, x, y arena.Handle) error {
		a := c.Arena
		tx, ty := a.PeekType(x), a.PeekType(y)
		if tx != ty {
			return c.Errorf(types.ErrTypeMismatch, "cannot compare %s with %s", tx, ty)
		}
		var cmp int
		switch tx {
		case arena.TagInt:
			cmp = compare(a.PeekInt(x), a.PeekInt(y))
		case arena.TagReal:
			cmp = compare(a.PeekReal(x), a.PeekReal(y))
		case arena.TagChar:
			cmp = compare(a.PeekChar(x), a.PeekChar(y))
		default:
			return c.Errorf(types.ErrTypeMismatch, "values of type %s are not ordered", tx)
		}
		a.PushBool(accept(cmp))
		return nil
	}
}

func compare[T int64 | float64 | rune](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func fnNot(c *Call, x arena.Handle) error {
	if err := c.Expect(x, arena.TagBool); err != nil {
		return err
	}
	c.Arena.PushBool(!c.Arena.PeekBool(x))
	return nil
}

func fnXor(c *Call, x, y arena.Handle) error {
	if err := c.Expect(x, arena.TagBool); err != nil {
		return err
	}
	if err := c.Expect(y, arena.TagBool); err != nil {
		return err
	}
	c.Arena.PushBool(c.Arena.PeekBool(x) != c.Arena.PeekBool(y))
	return nil
}

// fnError fails with the given message.
func fnError(c *Call, msg arena.Handle) error {
	return types.NewError(types.ErrUserError, types.SubsystemBuiltin, display(c.Arena, msg)).At(c.Loc)
}

// fnAssert fails with msg unless cond is true; the result is unit.
func fnAssert(c *Call, cond, msg arena.Handle) error {
	if err := c.Expect(cond, arena.TagBool); err != nil {
		return err
	}
	if !c.Arena.PeekBool(cond) {
		return types.NewError(types.ErrAssertion, types.SubsystemBuiltin, display(c.Arena, msg)).At(c.Loc)
	}
	c.Arena.PushUnit()
	return nil
}
