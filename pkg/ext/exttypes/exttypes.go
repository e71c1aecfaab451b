// Package exttypes provides type predicates and small control functions.
package exttypes

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extutil"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
)

// All returns all type predicate and control function definitions.
func All() []functions.ForeignFunctionDef {
	return []functions.ForeignFunctionDef{
		IsInt(),
		IsReal(),
		IsNumber(),
		IsBool(),
		IsChar(),
		IsString(),
		IsArray(),
		IsTuple(),
		IsUnit(),
		IsFunction(),
		IsReference(),
		IsEmpty(),
		Default(),
		Identity(),
	}
}

// IsInt returns the definition for (int? v).
func IsInt() functions.ForeignFunctionDef { return kindIs("int?", functions.KindInt) }

// IsReal returns the definition for (real? v).
func IsReal() functions.ForeignFunctionDef { return kindIs("real?", functions.KindReal) }

// IsBool returns the definition for (bool? v).
func IsBool() functions.ForeignFunctionDef { return kindIs("bool?", functions.KindBool) }

// IsChar returns the definition for (char? v).
func IsChar() functions.ForeignFunctionDef { return kindIs("char?", functions.KindChar) }

// IsTuple returns the definition for (tuple? v).
func IsTuple() functions.ForeignFunctionDef { return kindIs("tuple?", functions.KindTuple) }

// IsUnit returns the definition for (unit? v).
func IsUnit() functions.ForeignFunctionDef { return kindIs("unit?", functions.KindUnit) }

// IsFunction returns the definition for (function? v).
func IsFunction() functions.ForeignFunctionDef {
	return kindIs("function?", functions.KindFunction)
}

// IsReference returns the definition for (reference? v).
func IsReference() functions.ForeignFunctionDef {
	return kindIs("reference?", functions.KindReference)
}

// IsNumber returns the definition for (number? v): true for ints and reals.
func IsNumber() functions.ForeignFunctionDef {
	return test("number?", func(v functions.Value) bool {
		_, ok := v.Number()
		return ok
	})
}

// IsString returns the definition for (string? v). The empty array counts
// as a string.
func IsString() functions.ForeignFunctionDef {
	return test("string?", func(v functions.Value) bool {
		_, ok := v.Text()
		return ok
	})
}

// IsArray returns the definition for (array? v). Strings are arrays too.
func IsArray() functions.ForeignFunctionDef {
	return test("array?", func(v functions.Value) bool {
		return v.Kind == functions.KindArray || v.Kind == functions.KindString
	})
}

// IsEmpty returns the definition for (empty-value? v): true for unit, the
// empty array and the empty tuple.
func IsEmpty() functions.ForeignFunctionDef {
	return test("empty-value?", func(v functions.Value) bool {
		switch v.Kind {
		case functions.KindUnit:
			return true
		case functions.KindString:
			return v.Str == ""
		case functions.KindArray, functions.KindTuple:
			return len(v.Items) == 0
		}
		return false
	})
}

// Default returns the definition for (default v fallback): fallback when v
// is unit, v otherwise. Like every foreign function it cannot return
// functions or references.
func Default() functions.ForeignFunctionDef {
	return extutil.Def("default", 2, func(args []functions.Value) (functions.Value, error) {
		if args[0].Kind == functions.KindUnit {
			return args[1], nil
		}
		return args[0], nil
	})
}

// Identity returns the definition for (identity v).
func Identity() functions.ForeignFunctionDef {
	return extutil.Def("identity", 1, func(args []functions.Value) (functions.Value, error) {
		return args[0], nil
	})
}

func kindIs(name string, k functions.Kind) functions.ForeignFunctionDef {
	return test(name, func(v functions.Value) bool { return v.Kind == k })
}

func test(name string, fn func(functions.Value) bool) functions.ForeignFunctionDef {
	return extutil.Def(name, 1, func(args []functions.Value) (functions.Value, error) {
		return functions.Bool(fn(args[0])), nil
	})
}
