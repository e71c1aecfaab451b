package evaluator

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// expectCompound fails unless h is an array or, when tuples is set, a tuple.
func expectCompound(c *Call, h arena.Handle, tuples bool) error {
	tag := c.Arena.PeekType(h)
	if tag == arena.TagArray || (tuples && tag == arena.TagTuple) {
		return nil
	}
	if tuples {
		return c.Errorf(types.ErrTypeMismatch, "expected an array or tuple, got %s", tag)
	}
	return c.Errorf(types.ErrTypeMismatch, "expected an array, got %s", tag)
}

// commitArray commits b and checks that the result is homogeneous.
func commitArray(c *Call, b *arena.Builder) error {
	h := b.Commit()
	if !c.Arena.Homogeneous(h) {
		return c.Errorf(types.ErrHeterogeneousArray, "array elements must all have the same shape: %s", c.Arena.Format(h))
	}
	return nil
}

func fnLength(c *Call, x arena.Handle) error {
	if err := expectCompound(c, x, true); err != nil {
		return err
	}
	c.Arena.PushInt(int64(c.Arena.CompoundLength(x)))
	return nil
}

func fnEmpty(c *Call, x arena.Handle) error {
	if err := expectCompound(c, x, true); err != nil {
		return err
	}
	c.Arena.PushBool(c.Arena.PeekSize(x) == 0)
	return nil
}

// fnAt copies the element at a zero-based index.
func fnAt(c *Call, x, i arena.Handle) error {
	if err := expectCompound(c, x, true); err != nil {
		return err
	}
	if err := c.Expect(i, arena.TagInt); err != nil {
		return err
	}
	idx := c.Arena.PeekInt(i)
	child, ok := c.Arena.Child(x, int(idx))
	if !ok {
		return c.Errorf(types.ErrIndexRange, "index %d out of range for length %d", idx, c.Arena.CompoundLength(x))
	}
	c.Arena.Copy(child)
	return nil
}

// fnSlice copies the elements in [from, to).
func fnSlice(c *Call, x, from, to arena.Handle) error {
	if err := expectCompound(c, x, false); err != nil {
		return err
	}
	if err := c.Expect(from, arena.TagInt); err != nil {
		return err
	}
	if err := c.Expect(to, arena.TagInt); err != nil {
		return err
	}
	kids := c.Arena.Children(x)
	f, t := c.Arena.PeekInt(from), c.Arena.PeekInt(to)
	if f < 0 || t < f || t > int64(len(kids)) {
		return c.Errorf(types.ErrIndexRange, "range [%d, %d) out of bounds for length %d", f, t, len(kids))
	}
	b := c.Arena.BeginCompound(arena.TagArray)
	for _, k := range kids[f:t] {
		c.Arena.Copy(k)
	}
	b.Commit()
	return nil
}

func fnCat(c *Call, x, y arena.Handle) error {
	if err := expectCompound(c, x, false); err != nil {
		return err
	}
	if err := expectCompound(c, y, false); err != nil {
		return err
	}
	b := c.Arena.BeginCompound(arena.TagArray)
	for _, k := range c.Arena.Children(x) {
		c.Arena.Copy(k)
	}
	for _, k := range c.Arena.Children(y) {
		c.Arena.Copy(k)
	}
	return commitArray(c, b)
}

func fnPushBack(c *Call, x, v arena.Handle) error {
	if err := expectCompound(c, x, false); err != nil {
		return err
	}
	b := c.Arena.BeginCompound(arena.TagArray)
	for _, k := range c.Arena.Children(x) {
		c.Arena.Copy(k)
	}
	c.Arena.Copy(v)
	return commitArray(c, b)
}

// fnReverse reverses an array or a tuple.
func fnReverse(c *Call, x arena.Handle) error {
	if err := expectCompound(c, x, true); err != nil {
		return err
	}
	kids := c.Arena.Children(x)
	b := c.Arena.BeginCompound(c.Arena.PeekType(x))
	for i := len(kids) - 1; i >= 0; i-- {
		c.Arena.Copy(kids[i])
	}
	b.Commit()
	return nil
}
