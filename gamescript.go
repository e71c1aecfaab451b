// Package gamescript is an embeddable interpreter for a small functional
// scripting language aimed at game logic.
//
// Every value lives in a contiguous byte arena owned by the evaluator. The
// language has ints, reals, chars, booleans, unit, homogeneous arrays (and
// strings as arrays of chars), tuples, curried first-class functions with
// closures, and raw references into the arena.
//
// # Quick Start
//
//	// One-shot evaluation
//	res, err := gamescript.Eval("(+ 1 2)")
//
//	// Compile once, evaluate against a long-lived evaluator
//	prog := gamescript.MustCompile(`(bind sq (func (x) (* x x))) (sq 7)`)
//	ev := gamescript.NewEvaluator(gamescript.WithTimeout(time.Second))
//	res, err := ev.Eval(ctx, prog)
//	fmt.Println(res.Value) // 49
//
//	// Expose host code
//	ev := gamescript.NewEvaluator(gamescript.WithForeignFunction("hp", 1, hp))
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/k-stachowiak/game-script-sub000/pkg/parser
//   - Evaluator: github.com/k-stachowiak/game-script-sub000/pkg/evaluator
//   - Arena: github.com/k-stachowiak/game-script-sub000/pkg/arena
//   - Host values: github.com/k-stachowiak/game-script-sub000/pkg/functions
//   - Extensions: github.com/k-stachowiak/game-script-sub000/pkg/ext
package gamescript

import (
	"context"
	"fmt"
	"time"

	"github.com/k-stachowiak/game-script-sub000/pkg/evaluator"
	"github.com/k-stachowiak/game-script-sub000/pkg/parser"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// Version returns the current version of gamescript.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses a program for repeated evaluation. The returned program is
// immutable and may be evaluated by several evaluators.
//
// Example:
//
//	prog, err := gamescript.Compile("(bind hp 100)", parser.WithSourceName("init.gs"))
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(src string, opts ...parser.ParseOption) (*types.Program, error) {
	return parser.Parse(src, opts...)
}

// MustCompile is like Compile but panics if the program cannot be parsed.
// It simplifies safe initialization of global variables.
func MustCompile(src string) *types.Program {
	prog, err := Compile(src)
	if err != nil {
		panic(fmt.Sprintf("gamescript: Compile(%q): %v", src, err))
	}
	return prog
}

// NewEvaluator creates an evaluator whose global scope persists across
// evaluations.
func NewEvaluator(opts ...EvalOption) *evaluator.Evaluator {
	return evaluator.New(opts...)
}

// Eval is a convenience function that compiles and evaluates a program in a
// fresh evaluator.
//
// Example:
//
//	res, err := gamescript.Eval(`(fold + 0 [1 2 3])`)
//	fmt.Println(res.Text) // 6
func Eval(src string, opts ...EvalOption) (*evaluator.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return EvalWithContext(ctx, src, opts...)
}

// EvalWithContext evaluates a program with a custom context.
func EvalWithContext(ctx context.Context, src string, opts ...EvalOption) (*evaluator.Result, error) {
	prog, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return evaluator.New(opts...).Eval(ctx, prog)
}
