// Package extnumeric provides numeric functions beyond the built-ins.
// Register them via evaluator.WithForeignFunctions or the top-level
// ext.WithNumeric() helper.
//
// Functions that accept ints or reals require all operands to have the same
// type, like the built-in arithmetic.
package extnumeric

import (
	"fmt"
	"math"

	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extutil"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
)

// All returns all extended numeric function definitions.
func All() []functions.ForeignFunctionDef {
	return []functions.ForeignFunctionDef{
		Min(),
		Max(),
		Clamp(),
		Sign(),
		Pow(),
		Hypot(),
		Log(),
		Trunc(),
		Sin(),
		Cos(),
		Atan2(),
		Pi(),
		Lerp(),
	}
}

// Min returns the definition for (min a b).
func Min() functions.ForeignFunctionDef {
	return extutil.Def("min", 2, func(args []functions.Value) (functions.Value, error) {
		if _, err := extutil.SameNumeric(args...); err != nil {
			return functions.Value{}, err
		}
		if less(args[1], args[0]) {
			return args[1], nil
		}
		return args[0], nil
	})
}

// Max returns the definition for (max a b).
func Max() functions.ForeignFunctionDef {
	return extutil.Def("max", 2, func(args []functions.Value) (functions.Value, error) {
		if _, err := extutil.SameNumeric(args...); err != nil {
			return functions.Value{}, err
		}
		if less(args[0], args[1]) {
			return args[1], nil
		}
		return args[0], nil
	})
}

// Clamp returns the definition for (clamp n lo hi).
func Clamp() functions.ForeignFunctionDef {
	return extutil.Def("clamp", 3, func(args []functions.Value) (functions.Value, error) {
		if _, err := extutil.SameNumeric(args...); err != nil {
			return functions.Value{}, err
		}
		n, lo, hi := args[0], args[1], args[2]
		if less(hi, lo) {
			return functions.Value{}, fmt.Errorf("empty range [%s, %s]", lo, hi)
		}
		if less(n, lo) {
			return lo, nil
		}
		if less(hi, n) {
			return hi, nil
		}
		return n, nil
	})
}

// Sign returns the definition for (sign n): -1, 0 or 1 of the operand's type.
func Sign() functions.ForeignFunctionDef {
	return extutil.Def("sign", 1, func(args []functions.Value) (functions.Value, error) {
		isReal, err := extutil.SameNumeric(args...)
		if err != nil {
			return functions.Value{}, err
		}
		var s int64
		switch n, _ := args[0].Number(); {
		case n < 0:
			s = -1
		case n > 0:
			s = 1
		}
		if isReal {
			return functions.Real(float64(s)), nil
		}
		return functions.Int(s), nil
	})
}

// Pow returns the definition for (pow base exp). Int powers require a
// non-negative exponent and fail on overflow.
func Pow() functions.ForeignFunctionDef {
	return extutil.Def("pow", 2, func(args []functions.Value) (functions.Value, error) {
		isReal, err := extutil.SameNumeric(args...)
		if err != nil {
			return functions.Value{}, err
		}
		if isReal {
			return functions.Real(math.Pow(args[0].Real, args[1].Real)), nil
		}
		base, exp := args[0].Int, args[1].Int
		if exp < 0 {
			return functions.Value{}, fmt.Errorf("negative int exponent %d", exp)
		}
		result := int64(1)
		for ; exp > 0; exp-- {
			next := result * base
			if base != 0 && next/base != result {
				return functions.Value{}, fmt.Errorf("int overflow")
			}
			result = next
		}
		return functions.Int(result), nil
	})
}

// Hypot returns the definition for (hypot x y).
func Hypot() functions.ForeignFunctionDef {
	return real2("hypot", math.Hypot)
}

// Atan2 returns the definition for (atan2 y x).
func Atan2() functions.ForeignFunctionDef {
	return real2("atan2", math.Atan2)
}

// Log returns the definition for (log n), the natural logarithm.
func Log() functions.ForeignFunctionDef {
	return extutil.Def("log", 1, func(args []functions.Value) (functions.Value, error) {
		n, err := extutil.Real(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		if n <= 0 {
			return functions.Value{}, fmt.Errorf("argument must be positive")
		}
		return functions.Real(math.Log(n)), nil
	})
}

// Trunc returns the definition for (trunc n). Truncates toward zero.
func Trunc() functions.ForeignFunctionDef {
	return real1("trunc", math.Trunc)
}

// Sin returns the definition for (sin n).
func Sin() functions.ForeignFunctionDef {
	return real1("sin", math.Sin)
}

// Cos returns the definition for (cos n).
func Cos() functions.ForeignFunctionDef {
	return real1("cos", math.Cos)
}

// Pi returns the definition for (pi).
func Pi() functions.ForeignFunctionDef {
	return extutil.Def("pi", 0, func([]functions.Value) (functions.Value, error) {
		return functions.Real(math.Pi), nil
	})
}

// Lerp returns the definition for (lerp a b t), linear interpolation of reals.
func Lerp() functions.ForeignFunctionDef {
	return extutil.Def("lerp", 3, func(args []functions.Value) (functions.Value, error) {
		var f [3]float64
		for i := range f {
			x, err := extutil.Real(args[i])
			if err != nil {
				return functions.Value{}, err
			}
			f[i] = x
		}
		return functions.Real(f[0] + (f[1]-f[0])*f[2]), nil
	})
}

func less(a, b functions.Value) bool {
	if a.Kind == functions.KindInt {
		return a.Int < b.Int
	}
	return a.Real < b.Real
}

func real1(name string, fn func(float64) float64) functions.ForeignFunctionDef {
	return extutil.Def(name, 1, func(args []functions.Value) (functions.Value, error) {
		x, err := extutil.Real(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		return functions.Real(fn(x)), nil
	})
}

func real2(name string, fn func(float64, float64) float64) functions.ForeignFunctionDef {
	return extutil.Def(name, 2, func(args []functions.Value) (functions.Value, error) {
		x, err := extutil.Real(args[0])
		if err != nil {
			return functions.Value{}, err
		}
		y, err := extutil.Real(args[1])
		if err != nil {
			return functions.Value{}, err
		}
		return functions.Real(fn(x, y)), nil
	})
}
