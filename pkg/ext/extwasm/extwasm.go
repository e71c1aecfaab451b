// Package extwasm exposes the numeric exports of a WebAssembly module as
// foreign functions, using the wazero runtime.
//
// Every exported function whose parameters and results are i32, i64, f32 or
// f64 becomes a foreign function with one script argument per wasm
// parameter. Integer parameters accept ints, chars and bools; float
// parameters accept reals. A function with no result returns unit, one
// result is returned as is and several results are returned as a tuple.
//
// # Example
//
//	mod, err := extwasm.Load(ctx, wasmBytes, extwasm.WithPrefix("phys/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mod.Close(ctx)
//	ev := evaluator.New(evaluator.WithForeignFunctions(mod.Functions()...))
package extwasm

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
)

// Option configures Load.
type Option func(*options)

type options struct {
	prefix  string
	exports map[string]bool
	config  wazero.RuntimeConfig
}

// WithPrefix prepends prefix to every foreign function name.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithExports restricts the exposed functions to the named exports.
func WithExports(names ...string) Option {
	return func(o *options) {
		if o.exports == nil {
			o.exports = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.exports[n] = true
		}
	}
}

// WithRuntimeConfig sets the wazero runtime configuration, e.g. to use the
// interpreter on platforms without compiler support.
func WithRuntimeConfig(cfg wazero.RuntimeConfig) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// Module is an instantiated WebAssembly module.
type Module struct {
	runtime wazero.Runtime
	module  api.Module
	defs    []functions.ForeignFunctionDef
	skipped []string
}

// Load compiles and instantiates wasm and builds the foreign function
// definitions of its numeric exports. The module must not import anything.
func Load(ctx context.Context, wasm []byte, opts ...Option) (*Module, error) {
	o := options{config: wazero.NewRuntimeConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, o.config)
	mod, err := rt.Instantiate(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("extwasm: instantiate: %w", err)
	}

	m := &Module{runtime: rt, module: mod}
	exported := mod.ExportedFunctionDefinitions()
	names := make([]string, 0, len(exported))
	for name := range exported {
		if o.exports == nil || o.exports[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		def := exported[name]
		if !numeric(def.ParamTypes()) || !numeric(def.ResultTypes()) {
			m.skipped = append(m.skipped, name)
			continue
		}
		m.defs = append(m.defs, m.foreign(o.prefix+name, mod.ExportedFunction(name), def))
	}
	for name := range o.exports {
		if _, ok := exported[name]; !ok {
			_ = m.Close(ctx)
			return nil, fmt.Errorf("extwasm: module has no exported function %q", name)
		}
	}
	return m, nil
}

// Functions returns the foreign function definitions, sorted by export name.
func (m *Module) Functions() []functions.ForeignFunctionDef {
	return m.defs
}

// Skipped returns the exports that were not exposed because their signature
// uses non-numeric types.
func (m *Module) Skipped() []string {
	return m.skipped
}

// Close releases the module and its runtime. The foreign functions fail
// afterwards.
func (m *Module) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}

func (m *Module) foreign(name string, fn api.Function, def api.FunctionDefinition) functions.ForeignFunctionDef {
	params, results := def.ParamTypes(), def.ResultTypes()
	return functions.ForeignFunctionDef{
		Name:  name,
		Arity: len(params),
		Fn: func(ctx context.Context, args ...functions.Value) (functions.Value, error) {
			stack := make([]uint64, len(params))
			for i, t := range params {
				v, err := encode(t, args[i])
				if err != nil {
					return functions.Value{}, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
				}
				stack[i] = v
			}
			out, err := fn.Call(ctx, stack...)
			if err != nil {
				return functions.Value{}, fmt.Errorf("%s: %w", name, err)
			}
			switch len(results) {
			case 0:
				return functions.Unit(), nil
			case 1:
				return decode(results[0], out[0]), nil
			}
			items := make([]functions.Value, len(results))
			for i, t := range results {
				items[i] = decode(t, out[i])
			}
			return functions.Tuple(items...), nil
		},
	}
}

func numeric(ts []api.ValueType) bool {
	for _, t := range ts {
		switch t {
		case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64:
		default:
			return false
		}
	}
	return true
}

func encode(t api.ValueType, v functions.Value) (uint64, error) {
	switch t {
	case api.ValueTypeI32, api.ValueTypeI64:
		var n int64
		switch v.Kind {
		case functions.KindInt:
			n = v.Int
		case functions.KindChar:
			n = int64(v.Char)
		case functions.KindBool:
			if v.Bool {
				n = 1
			}
		default:
			return 0, fmt.Errorf("%s parameter needs an int, got %s", api.ValueTypeName(t), v.Kind)
		}
		if t == api.ValueTypeI64 {
			return api.EncodeI64(n), nil
		}
		if n < math.MinInt32 || n > math.MaxUint32 {
			return 0, fmt.Errorf("%d does not fit in i32", n)
		}
		return api.EncodeI32(int32(n)), nil
	case api.ValueTypeF32:
		if v.Kind != functions.KindReal {
			return 0, fmt.Errorf("f32 parameter needs a real, got %s", v.Kind)
		}
		return api.EncodeF32(float32(v.Real)), nil
	case api.ValueTypeF64:
		if v.Kind != functions.KindReal {
			return 0, fmt.Errorf("f64 parameter needs a real, got %s", v.Kind)
		}
		return api.EncodeF64(v.Real), nil
	}
	return 0, fmt.Errorf("unsupported parameter type %s", api.ValueTypeName(t))
}

func decode(t api.ValueType, raw uint64) functions.Value {
	switch t {
	case api.ValueTypeI32:
		return functions.Int(int64(api.DecodeI32(raw)))
	case api.ValueTypeF32:
		return functions.Real(float64(api.DecodeF32(raw)))
	case api.ValueTypeF64:
		return functions.Real(api.DecodeF64(raw))
	}
	return functions.Int(int64(raw))
}
