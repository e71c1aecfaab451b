package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// display renders a value for output: strings and chars appear raw, every
// other value in script notation.
func display(a *arena.Arena, h arena.Handle) string {
	switch {
	case a.PeekType(h) == arena.TagChar:
		return string(a.PeekChar(h))
	case a.IsString(h):
		return a.PeekString(h)
	}
	return a.Format(h)
}

func fnPrint(c *Call, x arena.Handle) error {
	if _, err := fmt.Fprint(c.Out(), display(c.Arena, x)); err != nil {
		return c.Errorf(types.ErrInvalidArgument, "write failed: %v", err)
	}
	c.Arena.PushUnit()
	return nil
}

func fnPrintln(c *Call, x arena.Handle) error {
	if _, err := fmt.Fprintln(c.Out(), display(c.Arena, x)); err != nil {
		return c.Errorf(types.ErrInvalidArgument, "write failed: %v", err)
	}
	c.Arena.PushUnit()
	return nil
}

// fnFormat renders any value as a string.
func fnFormat(c *Call, x arena.Handle) error {
	c.Arena.PushString(display(c.Arena, x))
	return nil
}

func expectString(c *Call, h arena.Handle) (string, error) {
	if !c.Arena.IsString(h) {
		return "", c.Errorf(types.ErrTypeMismatch, "expected a string, got %s", c.Arena.PeekType(h))
	}
	return c.Arena.PeekString(h), nil
}

func fnParseInt(c *Call, x arena.Handle) error {
	s, err := expectString(c, x)
	if err != nil {
		return err
	}
	v, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if perr != nil {
		return c.Errorf(types.ErrParseValue, "%q is not an int", s)
	}
	c.Arena.PushInt(v)
	return nil
}

func fnParseReal(c *Call, x arena.Handle) error {
	s, err := expectString(c, x)
	if err != nil {
		return err
	}
	v, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if perr != nil {
		return c.Errorf(types.ErrParseValue, "%q is not a real", s)
	}
	c.Arena.PushReal(v)
	return nil
}
