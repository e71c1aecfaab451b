// Package extarray provides array functions beyond the built-ins.
//
// Results are converted back into the arena by the evaluator, which rejects
// arrays whose elements do not share a shape.
package extarray

import (
	"fmt"

	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extutil"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
)

// maxItems bounds the arrays produced by range.
const maxItems = 100000

// All returns all extended array function definitions.
func All() []functions.ForeignFunctionDef {
	return []functions.ForeignFunctionDef{
		First(),
		Last(),
		Take(),
		Skip(),
		Flatten(),
		Chunk(),
		Window(),
		Zip(),
		Range(),
		Distinct(),
		Contains(),
	}
}

// First returns the definition for (first xs).
func First() functions.ForeignFunctionDef {
	return extutil.Def("first", 1, func(args []functions.Value) (functions.Value, error) {
		arr, err := nonEmpty(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		return arr[0], nil
	})
}

// Last returns the definition for (last xs).
func Last() functions.ForeignFunctionDef {
	return extutil.Def("last", 1, func(args []functions.Value) (functions.Value, error) {
		arr, err := nonEmpty(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		return arr[len(arr)-1], nil
	})
}

// Take returns the definition for (take xs n): at most the first n elements.
func Take() functions.ForeignFunctionDef {
	return extutil.Def("take", 2, func(args []functions.Value) (functions.Value, error) {
		arr, n, err := arrayAndCount(args)
		if err != nil {
			return functions.Value{}, err
		}
		return functions.Array(arr[:n]...), nil
	})
}

// Skip returns the definition for (skip xs n): everything after the first n
// elements.
func Skip() functions.ForeignFunctionDef {
	return extutil.Def("skip", 2, func(args []functions.Value) (functions.Value, error) {
		arr, n, err := arrayAndCount(args)
		if err != nil {
			return functions.Value{}, err
		}
		return functions.Array(arr[n:]...), nil
	})
}

// Flatten returns the definition for (flatten xss), concatenating an array
// of arrays.
func Flatten() functions.ForeignFunctionDef {
	return extutil.Def("flatten", 1, func(args []functions.Value) (functions.Value, error) {
		outer, err := extutil.Items(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		var out []functions.Value
		for i, inner := range outer {
			items, err := extutil.Items(inner)
			if err != nil {
				return functions.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, items...)
		}
		return functions.Array(out...), nil
	})
}

// Chunk returns the definition for (chunk xs size). The last chunk may be
// shorter.
func Chunk() functions.ForeignFunctionDef {
	return extutil.Def("chunk", 2, func(args []functions.Value) (functions.Value, error) {
		arr, err := extutil.Items(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		size, err := positive(args[1], "size")
		if err != nil {
			return functions.Value{}, err
		}
		var out []functions.Value
		for i := 0; i < len(arr); i += size {
			end := i + size
			if end > len(arr) {
				end = len(arr)
			}
			out = append(out, functions.Array(arr[i:end]...))
		}
		return functions.Array(out...), nil
	})
}

// Window returns the definition for (window xs size step), a sliding window
// over the array.
func Window() functions.ForeignFunctionDef {
	return extutil.Def("window", 3, func(args []functions.Value) (functions.Value, error) {
		arr, err := extutil.Items(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		size, err := positive(args[1], "size")
		if err != nil {
			return functions.Value{}, err
		}
		step, err := positive(args[2], "step")
		if err != nil {
			return functions.Value{}, err
		}
		var out []functions.Value
		for i := 0; i+size <= len(arr); i += step {
			out = append(out, functions.Array(arr[i:i+size]...))
		}
		return functions.Array(out...), nil
	})
}

// Zip returns the definition for (zip xs ys): an array of {x y} tuples, as
// long as the shorter input.
func Zip() functions.ForeignFunctionDef {
	return extutil.Def("zip", 2, func(args []functions.Value) (functions.Value, error) {
		a1, err := extutil.Items(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		a2, err := extutil.Items(args[1])
		if err != nil {
			return functions.Value{}, err
		}
		n := len(a1)
		if len(a2) < n {
			n = len(a2)
		}
		out := make([]functions.Value, n)
		for i := range out {
			out[i] = functions.Tuple(a1[i], a2[i])
		}
		return functions.Array(out...), nil
	})
}

// Range returns the definition for (range start end step): ints from start
// up to, not including, end. A negative step counts down.
func Range() functions.ForeignFunctionDef {
	return extutil.Def("range", 3, func(args []functions.Value) (functions.Value, error) {
		var n [3]int64
		for i := range n {
			v, err := extutil.Int(args[i])
			if err != nil {
				return functions.Value{}, err
			}
			n[i] = v
		}
		start, end, step := n[0], n[1], n[2]
		if step == 0 {
			return functions.Value{}, fmt.Errorf("step must not be zero")
		}
		var out []functions.Value
		for v := start; (step > 0 && v < end) || (step < 0 && v > end); v += step {
			if len(out) >= maxItems {
				return functions.Value{}, fmt.Errorf("would produce more than %d items", maxItems)
			}
			out = append(out, functions.Int(v))
		}
		return functions.Array(out...), nil
	})
}

// Distinct returns the definition for (distinct xs), keeping the first
// occurrence of every element.
func Distinct() functions.ForeignFunctionDef {
	return extutil.Def("distinct", 1, func(args []functions.Value) (functions.Value, error) {
		arr, err := extutil.Items(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		var out []functions.Value
		for _, v := range arr {
			if indexOf(out, v) < 0 {
				out = append(out, v)
			}
		}
		return functions.Array(out...), nil
	})
}

// Contains returns the definition for (has? xs x).
func Contains() functions.ForeignFunctionDef {
	return extutil.Def("has?", 2, func(args []functions.Value) (functions.Value, error) {
		arr, err := extutil.Items(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		return functions.Bool(indexOf(arr, args[1]) >= 0), nil
	})
}

func indexOf(arr []functions.Value, v functions.Value) int {
	for i, it := range arr {
		if it.Equal(v) {
			return i
		}
	}
	return -1
}

func nonEmpty(v functions.Value) ([]functions.Value, error) {
	arr, err := extutil.Items(v)
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("empty array")
	}
	return arr, nil
}

// arrayAndCount returns the array argument and a count clamped to its length.
func arrayAndCount(args []functions.Value) ([]functions.Value, int, error) {
	arr, err := extutil.Items(args[0])
	if err != nil {
		return nil, 0, err
	}
	n, err := extutil.Int(args[1])
	if err != nil {
		return nil, 0, err
	}
	if n < 0 {
		n = 0
	}
	if n > int64(len(arr)) {
		n = int64(len(arr))
	}
	return arr, int(n), nil
}

func positive(v functions.Value, what string) (int, error) {
	n, err := extutil.Int(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	if n <= 0 || n > maxItems {
		return 0, fmt.Errorf("%s must be in [1, %d], got %d", what, maxItems, n)
	}
	return int(n), nil
}
