package evaluator

import (
	"context"
	"io"
	"math/rand"
	"sync"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// NativeDef defines a built-in function. Exactly one of the three
// signatures is set, matching Arity.
type NativeDef struct {
	Name  string
	Arity int
	fn    interface{}
}

// Native1 is a one-argument built-in. A native pushes exactly one result
// value or returns an error.
type Native1 func(c *Call, x arena.Handle) error

// Native2 is a two-argument built-in.
type Native2 func(c *Call, x, y arena.Handle) error

// Native3 is a three-argument built-in.
type Native3 func(c *Call, x, y, z arena.Handle) error

func native1(name string, fn Native1) *NativeDef {
	return &NativeDef{Name: name, Arity: 1, fn: fn}
}

func native2(name string, fn Native2) *NativeDef {
	return &NativeDef{Name: name, Arity: 2, fn: fn}
}

func native3(name string, fn Native3) *NativeDef {
	return &NativeDef{Name: name, Arity: 3, fn: fn}
}

// Call is the context handed to a native built-in.
type Call struct {
	Ctx   context.Context
	Arena *arena.Arena
	Name  string
	Loc   types.Location

	ev *Evaluator
}

// Errorf builds a built-in error located at the call site.
func (c *Call) Errorf(code types.ErrorCode, format string, args ...interface{}) error {
	return types.Errorf(code, types.SubsystemBuiltin, "%s: "+format, append([]interface{}{c.Name}, args...)...).At(c.Loc)
}

// Expect fails unless the value at h has the given tag.
func (c *Call) Expect(h arena.Handle, want arena.Tag) error {
	if got := c.Arena.PeekType(h); got != want {
		return c.Errorf(types.ErrTypeMismatch, "expected %s, got %s", want, got)
	}
	return nil
}

// Out returns the writer for print and println.
func (c *Call) Out() io.Writer {
	return c.ev.opts.Output
}

// Rand returns the evaluator's random source.
func (c *Call) Rand() *rand.Rand {
	return c.ev.rng
}

// Apply calls the function at fn with copies of args and returns the handle
// of the single result, which starts at the arena top recorded on entry.
func (c *Call) Apply(fn arena.Handle, args ...arena.Handle) (arena.Handle, error) {
	base := c.Arena.Top()
	h, err := c.ev.apply(c.Ctx, fn, len(args), func(i int) error {
		c.Arena.Copy(args[i])
		return nil
	}, c.Loc)
	if err != nil {
		return 0, err
	}
	return c.ev.slide(base, h), nil
}

var (
	builtinFunctions     []*NativeDef
	builtinFunctionsOnce sync.Once
)

// builtins returns the built-in table. Definitions are immutable and shared
// by every evaluator.
func builtins() []*NativeDef {
	builtinFunctionsOnce.Do(func() {
		builtinFunctions = []*NativeDef{
			// Arithmetic
			native2("+", arithmetic(addInt, addReal)),
			native2("-", arithmetic(subInt, subReal)),
			native2("*", arithmetic(mulInt, mulReal)),
			native2("/", arithmetic(divInt, divReal)),
			native2("%", arithmetic(modInt, nil)),
			native1("neg", fnNeg),
			native1("abs", fnAbs),
			native1("sqrt", realFunc(sqrtReal)),
			native1("floor", realFunc(floorReal)),
			native1("ceil", realFunc(ceilReal)),

			// Comparison
			native2("=", fnEqual),
			native2("/=", fnNotEqual),
			native2("<", comparison(func(c int) bool { return c < 0 })),
			native2(">", comparison(func(c int) bool { return c > 0 })),
			native2("<=", comparison(func(c int) bool { return c <= 0 })),
			native2(">=", comparison(func(c int) bool { return c >= 0 })),

			// Logic
			native1("not", fnNot),
			native2("xor", fnXor),

			// Conversion and inspection
			native1("real", fnReal),
			native1("int", fnInt),
			native1("char", fnChar),
			native1("type-of", fnTypeOf),

			// Arrays
			native1("length", fnLength),
			native2("at", fnAt),
			native3("slice", fnSlice),
			native2("cat", fnCat),
			native2("push-back", fnPushBack),
			native1("reverse", fnReverse),
			native1("empty?", fnEmpty),

			// Higher order
			native2("map", fnMap),
			native2("filter", fnFilter),
			native3("fold", fnFold),

			// Text
			native1("print", fnPrint),
			native1("println", fnPrintln),
			native1("format", fnFormat),
			native1("parse-int", fnParseInt),
			native1("parse-real", fnParseReal),

			// Random
			native2("rand-int", fnRandInt),
			native1("rand-real", fnRandReal),

			// Failure
			native1("error", fnError),
			native2("assert", fnAssert),
		}
	})
	return builtinFunctions
}
