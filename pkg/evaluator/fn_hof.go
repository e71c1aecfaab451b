package evaluator

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// fnMap applies f to every element of an array and collects the results.
func fnMap(c *Call, f, xs arena.Handle) error {
	if err := expectCompound(c, xs, false); err != nil {
		return err
	}
	b := c.Arena.BeginCompound(arena.TagArray)
	for _, k := range c.Arena.Children(xs) {
		if _, err := c.Apply(f, k); err != nil {
			return err
		}
	}
	return commitArray(c, b)
}

// fnFilter keeps the elements for which the predicate returns true.
func fnFilter(c *Call, pred, xs arena.Handle) error {
	if err := expectCompound(c, xs, false); err != nil {
		return err
	}
	b := c.Arena.BeginCompound(arena.TagArray)
	for _, k := range c.Arena.Children(xs) {
		r, err := c.Apply(pred, k)
		if err != nil {
			return err
		}
		if tag := c.Arena.PeekType(r); tag != arena.TagBool {
			return c.Errorf(types.ErrNonBoolean, "predicate returned %s", tag)
		}
		keep := c.Arena.PeekBool(r)
		c.Arena.Truncate(r)
		if keep {
			c.Arena.Copy(k)
		}
	}
	b.Commit()
	return nil
}

// fnFold reduces an array from the left: (f (f init x0) x1) ...
func fnFold(c *Call, f, init, xs arena.Handle) error {
	if err := expectCompound(c, xs, false); err != nil {
		return err
	}
	acc := c.Arena.Copy(init)
	for _, k := range c.Arena.Children(xs) {
		r, err := c.Apply(f, acc, k)
		if err != nil {
			return err
		}
		c.Arena.Collapse(acc, r)
	}
	return nil
}
