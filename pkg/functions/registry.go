// Package functions provides the types used to expose host code to scripts.
//
// A foreign function is free-standing Go code registered under a name and a
// fixed arity. Script arguments reach it as [Value] trees and its result is
// converted back into the arena by the evaluator.
//
// # Example
//
//	ev := evaluator.New(evaluator.WithForeignFunction("greet", 1,
//	    func(ctx context.Context, args ...functions.Value) (functions.Value, error) {
//	        return functions.String("Hello, " + args[0].Str + "!"), nil
//	    }),
//	)
package functions

import (
	"context"
	"fmt"
	"unicode"
)

// ForeignFunc is the signature of a host function callable from scripts.
// args holds exactly Arity values, in call order.
type ForeignFunc func(ctx context.Context, args ...Value) (Value, error)

// ForeignFunctionDef describes a host function together with its arity.
type ForeignFunctionDef struct {
	// Name is the symbol the function is bound to in the global scope.
	Name string
	// Arity is the number of arguments; partial application is handled by
	// the evaluator, the function always receives all of them.
	Arity int
	// Fn is the implementation.
	Fn ForeignFunc
}

// Validate reports whether the definition can be registered.
func (d ForeignFunctionDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("foreign function: empty name")
	}
	for _, r := range d.Name {
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == '[' || r == ']' || r == '{' || r == '}' {
			return fmt.Errorf("foreign function %q: name contains a delimiter", d.Name)
		}
	}
	if d.Arity < 0 {
		return fmt.Errorf("foreign function %q: negative arity %d", d.Name, d.Arity)
	}
	if d.Fn == nil {
		return fmt.Errorf("foreign function %q: nil implementation", d.Name)
	}
	return nil
}

// Unary adapts a one-argument Go function.
func Unary(name string, fn func(ctx context.Context, x Value) (Value, error)) ForeignFunctionDef {
	return ForeignFunctionDef{
		Name:  name,
		Arity: 1,
		Fn: func(ctx context.Context, args ...Value) (Value, error) {
			return fn(ctx, args[0])
		},
	}
}

// Binary adapts a two-argument Go function.
func Binary(name string, fn func(ctx context.Context, x, y Value) (Value, error)) ForeignFunctionDef {
	return ForeignFunctionDef{
		Name:  name,
		Arity: 2,
		Fn: func(ctx context.Context, args ...Value) (Value, error) {
			return fn(ctx, args[0], args[1])
		},
	}
}
