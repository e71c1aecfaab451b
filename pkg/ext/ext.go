// Package ext provides optional foreign function packs for gamescript that
// go beyond the built-ins.
//
// The extension functions live in sub-packages grouped by category:
//   - extstring  – upper, lower, trim, split, join, contains?, template, …
//   - extnumeric – min, max, clamp, sign, pow, hypot, log, sin, cos, lerp, …
//   - extarray   – first, last, take, skip, flatten, chunk, window, zip, range, …
//   - exttypes   – int?, real?, string?, array?, tuple?, default, identity, …
//   - extwasm    – numeric exports of a WebAssembly module (loaded at runtime)
//
// # Integration – all static packs at once
//
//	import "github.com/k-stachowiak/game-script-sub000/pkg/ext"
//
//	res, err := gamescript.Eval(src, ext.WithAll())
//
// # Integration – by category
//
//	res, err := gamescript.Eval(src,
//	    ext.WithString(),
//	    ext.WithArray(),
//	)
//
// # Integration – single function from a sub-package
//
//	import "github.com/k-stachowiak/game-script-sub000/pkg/ext/extnumeric"
//
//	res, err := gamescript.Eval(src,
//	    gamescript.WithForeignFunctions(extnumeric.Clamp()),
//	)
package ext

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/evaluator"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extarray"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extnumeric"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extstring"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext/exttypes"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
)

// All returns the definitions of every static extension pack. extwasm is
// not included since it needs a module to load.
func All() []functions.ForeignFunctionDef {
	var all []functions.ForeignFunctionDef
	all = append(all, extstring.All()...)
	all = append(all, extnumeric.All()...)
	all = append(all, extarray.All()...)
	all = append(all, exttypes.All()...)
	return all
}

// WithAll returns an EvalOption that registers every static extension pack.
func WithAll() evaluator.EvalOption {
	return evaluator.WithForeignFunctions(All()...)
}

// WithString returns an EvalOption for the string functions.
func WithString() evaluator.EvalOption {
	return evaluator.WithForeignFunctions(extstring.All()...)
}

// WithNumeric returns an EvalOption for the numeric functions.
func WithNumeric() evaluator.EvalOption {
	return evaluator.WithForeignFunctions(extnumeric.All()...)
}

// WithArray returns an EvalOption for the array functions.
func WithArray() evaluator.EvalOption {
	return evaluator.WithForeignFunctions(extarray.All()...)
}

// WithTypes returns an EvalOption for the type predicates.
func WithTypes() evaluator.EvalOption {
	return evaluator.WithForeignFunctions(exttypes.All()...)
}
