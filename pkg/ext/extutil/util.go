// Package extutil provides shared helpers for the ext sub-packages.
package extutil

import (
	"context"
	"fmt"

	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
)

// Int returns the integer held by v.
func Int(v functions.Value) (int64, error) {
	if v.Kind != functions.KindInt {
		return 0, fmt.Errorf("expected an int, got %s", v.Kind)
	}
	return v.Int, nil
}

// Real returns the real held by v.
func Real(v functions.Value) (float64, error) {
	if v.Kind != functions.KindReal {
		return 0, fmt.Errorf("expected a real, got %s", v.Kind)
	}
	return v.Real, nil
}

// Text returns the string held by v. The empty array counts as the empty
// string since the two are indistinguishable in the arena.
func Text(v functions.Value) (string, error) {
	s, ok := v.Text()
	if !ok {
		return "", fmt.Errorf("expected a string, got %s", v.Kind)
	}
	return s, nil
}

// Items returns the elements of an array. Non-empty strings are arrays of
// chars.
func Items(v functions.Value) ([]functions.Value, error) {
	switch v.Kind {
	case functions.KindArray:
		return v.Items, nil
	case functions.KindString:
		out := make([]functions.Value, 0, len(v.Str))
		for _, r := range v.Str {
			out = append(out, functions.Char(r))
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected an array, got %s", v.Kind)
}

// Texts returns the strings held by an array of strings.
func Texts(v functions.Value) ([]string, error) {
	items, err := Items(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, it := range items {
		if out[i], err = Text(it); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

// SameNumeric checks that every value is an int, or that every value is a
// real, and reports which.
func SameNumeric(vs ...functions.Value) (isReal bool, err error) {
	if len(vs) == 0 {
		return false, nil
	}
	k := vs[0].Kind
	if k != functions.KindInt && k != functions.KindReal {
		return false, fmt.Errorf("expected a number, got %s", k)
	}
	for _, v := range vs[1:] {
		if v.Kind != k {
			return false, fmt.Errorf("operands must have the same numeric type, got %s and %s", k, v.Kind)
		}
	}
	return k == functions.KindReal, nil
}

// Def builds a foreign function definition whose errors are prefixed with
// the function name.
func Def(name string, arity int, fn func(args []functions.Value) (functions.Value, error)) functions.ForeignFunctionDef {
	return functions.ForeignFunctionDef{
		Name:  name,
		Arity: arity,
		Fn: func(_ context.Context, args ...functions.Value) (functions.Value, error) {
			v, err := fn(args)
			if err != nil {
				return functions.Value{}, fmt.Errorf("%s: %w", name, err)
			}
			return v, nil
		},
	}
}
