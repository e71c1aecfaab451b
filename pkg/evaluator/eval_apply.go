package evaluator

import (
	"context"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// argPusher pushes the i-th argument of a call onto the arena top.
type argPusher func(i int) error

// evalCall resolves the callee and runs the call protocol with arguments
// taken from the call node. The result is slid down over the callee and
// argument temporaries.
func (e *Evaluator) evalCall(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	base := e.arena.Top()

	var callee arena.Handle
	if node.Callee.Type == types.NodeSymbol {
		b, ok := scope.Find(node.Callee.Name)
		if !ok {
			return 0, unbound(node.Callee.Name, node.Callee.Loc)
		}
		callee = b.Handle
	} else {
		h, err := e.evalTemp(ctx, node.Callee, scope)
		if err != nil {
			return 0, err
		}
		callee = h
	}

	var h arena.Handle
	err := withScope(scope, func(argScope *Scope) error {
		var err error
		h, err = e.apply(ctx, callee, len(node.Children), func(i int) error {
			_, err := e.eval(ctx, node.Children[i], argScope)
			return err
		}, node.Loc)
		return err
	})
	if err != nil {
		return 0, err
	}
	return e.slide(base, h), nil
}

// apply is the call protocol. It decodes the callee and, depending on how
// many arguments are still missing, builds a curried function value,
// executes the function or reports an arity mismatch.
func (e *Evaluator) apply(ctx context.Context, callee arena.Handle, nargs int, push argPusher, loc types.Location) (arena.Handle, error) {
	if tag := e.arena.PeekType(callee); tag != arena.TagFunction {
		return 0, types.Errorf(types.ErrNotCallable, types.SubsystemCall, "cannot call a value of type %s", tag).At(loc)
	}
	fn := e.arena.PeekFunction(callee)
	total := len(fn.Applied) + nargs

	if e.opts.Debug {
		e.logger.Debug("call",
			"kind", fn.Kind.String(),
			"arity", fn.Arity,
			"applied", len(fn.Applied),
			"new", nargs)
	}

	switch {
	case total > fn.Arity:
		return 0, types.Errorf(types.ErrArityMismatch, types.SubsystemCall,
			"function of arity %d called with %d arguments", fn.Arity, total).At(loc)
	case total < fn.Arity:
		return e.curry(fn, nargs, push)
	default:
		return e.execute(ctx, fn, nargs, push, loc)
	}
}

// curry builds a new function value with the same implementation and
// captures and an applied-argument list extended by the new arguments.
func (e *Evaluator) curry(fn arena.Function, nargs int, push argPusher) (arena.Handle, error) {
	fb := e.arena.BeginFunction(fn.Arity, fn.Kind, fn.Impl)
	for _, c := range fn.Captures {
		fb.Capture(c.Name, c.Value)
	}
	fb.BeginApplied()
	for _, h := range fn.Applied {
		fb.Apply(h)
	}
	for i := 0; i < nargs; i++ {
		if err := push(i); err != nil {
			fb.Abort()
			return 0, err
		}
		fb.Applied()
	}
	return fb.Commit(), nil
}

// execute pushes the new arguments and dispatches on the callable variant.
func (e *Evaluator) execute(ctx context.Context, fn arena.Function, nargs int, push argPusher, loc types.Location) (arena.Handle, error) {
	c, err := e.callable(fn, loc)
	if err != nil {
		return 0, err
	}

	args := acquireHandles()
	defer releaseHandles(args)
	*args = append(*args, fn.Applied...)
	for i := 0; i < nargs; i++ {
		mark := e.arena.Top()
		if err := push(i); err != nil {
			return 0, err
		}
		*args = append(*args, mark)
	}

	return c.call(ctx, e, fn, *args, loc)
}

// callable selects the implementation variant of a function value.
func (e *Evaluator) callable(fn arena.Function, loc types.Location) (callable, error) {
	switch fn.Kind {
	case arena.FuncAST:
		if int(fn.Impl) < len(e.lambdas) {
			return lambda{node: e.lambdas[fn.Impl]}, nil
		}
	case arena.FuncNative:
		if int(fn.Impl) < len(e.natives) {
			return native{def: e.natives[fn.Impl]}, nil
		}
	case arena.FuncForeign:
		if int(fn.Impl) < len(e.foreign) {
			return foreign{def: e.foreign[fn.Impl]}, nil
		}
	}
	return nil, types.Errorf(types.ErrInternal, types.SubsystemCall, "dangling %s implementation %d", fn.Kind, fn.Impl).At(loc)
}

// callable is the closed set of function implementations.
type callable interface {
	kind() arena.FuncKind
	call(ctx context.Context, e *Evaluator, fn arena.Function, args []arena.Handle, loc types.Location) (arena.Handle, error)
}

// lambda is an AST-backed function.
type lambda struct {
	node *types.Node
}

func (lambda) kind() arena.FuncKind { return arena.FuncAST }

// call binds captures in a frame under the global scope, binds the
// parameters in a nested frame and evaluates the body there.
func (l lambda) call(ctx context.Context, e *Evaluator, fn arena.Function, args []arena.Handle, _ types.Location) (arena.Handle, error) {
	var result arena.Handle
	err := withScope(e.global, func(captures *Scope) error {
		for _, c := range fn.Captures {
			captures.Insert(c.Name, c.Value, l.node.Loc)
		}
		return withScope(captures, func(params *Scope) error {
			for i, p := range l.node.Params {
				if err := e.bindPattern(p, args[i], params); err != nil {
					return types.Wrap(err, types.SubsystemCall, &p.Loc, "binding parameter")
				}
			}
			h, err := e.eval(ctx, l.node.Body, params)
			result = h
			return err
		})
	})
	return result, err
}

// native is a fixed-arity built-in.
type native struct {
	def *NativeDef
}

func (native) kind() arena.FuncKind { return arena.FuncNative }

func (n native) call(ctx context.Context, e *Evaluator, _ arena.Function, args []arena.Handle, loc types.Location) (arena.Handle, error) {
	top := e.arena.Top()
	c := &Call{Ctx: ctx, Arena: e.arena, Name: n.def.Name, Loc: loc, ev: e}
	var err error
	switch fn := n.def.fn.(type) {
	case Native1:
		err = fn(c, args[0])
	case Native2:
		err = fn(c, args[0], args[1])
	case Native3:
		err = fn(c, args[0], args[1], args[2])
	default:
		err = types.Errorf(types.ErrInternal, types.SubsystemBuiltin, "%s: unsupported native signature", n.def.Name)
	}
	if err != nil {
		if e.arena.Top() > top {
			e.arena.Truncate(top)
		}
		return 0, err
	}
	if e.arena.Top() == top {
		return 0, types.Errorf(types.ErrInternal, types.SubsystemBuiltin, "%s pushed no result", n.def.Name).At(loc)
	}
	return top, nil
}

// foreign is a host function reached through value marshalling.
type foreign struct {
	def functions.ForeignFunctionDef
}

func (foreign) kind() arena.FuncKind { return arena.FuncForeign }

func (f foreign) call(ctx context.Context, e *Evaluator, _ arena.Function, args []arena.Handle, loc types.Location) (arena.Handle, error) {
	in := make([]functions.Value, len(args))
	for i, h := range args {
		v, err := e.toValue(h)
		if err != nil {
			return 0, err
		}
		in[i] = v
	}

	out, err := f.def.Fn(ctx, in...)
	if err != nil {
		return 0, types.Errorf(types.ErrForeignFailure, types.SubsystemForeign, "%s: %v", f.def.Name, err).WithCause(err).At(loc)
	}

	h, err := e.fromValue(out)
	if err != nil {
		return 0, types.Wrap(err, types.SubsystemForeign, &loc, "converting result of "+f.def.Name)
	}
	return h, nil
}

// Call invokes the function bound to name in the global scope with host
// arguments. Missing arguments yield a curried function value.
func (e *Evaluator) Call(ctx context.Context, name string, args ...functions.Value) (res *Result, err error) {
	b, ok := e.global.Find(name)
	if !ok {
		return nil, unbound(name, types.Location{})
	}
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}
	e.releasePending()
	e.depth = 0
	e.steps = 0

	base := e.arena.Top()
	defer e.recoverArena(base, types.Location{Source: "<host>"}, &err)
	h, err := e.apply(ctx, b.Handle, len(args), func(i int) error {
		_, err := e.fromValue(args[i])
		return err
	}, types.Location{Source: "<host>"})
	if err != nil {
		if e.arena.Top() > base {
			e.arena.Truncate(base)
		}
		return nil, err
	}
	return e.finish(e.slide(base, h), false)
}
