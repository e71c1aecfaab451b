package evaluator

import (
	"context"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// Evaluate evaluates node in scope and returns the handle of its single
// result, which starts at the arena top recorded on entry. On failure every
// byte pushed since entry is collapsed and no handle is returned.
//
// Evaluate is the entry point for hosts that drive the evaluator node by
// node; Eval is the usual entry point for whole programs.
func (e *Evaluator) Evaluate(ctx context.Context, node *types.Node, scope *Scope) (h arena.Handle, err error) {
	if node == nil {
		return 0, types.NewError(types.ErrInternal, types.SubsystemEval, "invalid node")
	}
	if scope == nil {
		scope = e.global
	}
	defer e.recoverArena(e.arena.Top(), node.Loc, &err)
	return e.eval(ctx, node, scope)
}

// recoverArena turns an arena panic into an ErrInternal error and collapses
// everything pushed above top. Other panics are re-raised.
func (e *Evaluator) recoverArena(top arena.Handle, loc types.Location, err *error) {
	r := recover()
	if r == nil {
		return
	}
	ae, ok := r.(*arena.Error)
	if !ok {
		panic(r)
	}
	if e.arena.Top() > top {
		e.arena.Truncate(top)
	}
	*err = types.NewError(types.ErrInternal, types.SubsystemArena, ae.Error()).WithCause(ae).At(loc)
}

// eval is the dispatcher. Every sub-expression is evaluated through it so
// that the record top / dispatch / collapse-on-failure discipline applies at
// every nesting level.
func (e *Evaluator) eval(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	top := e.arena.Top()

	if err := e.enter(ctx, node); err != nil {
		return 0, err
	}
	defer func() { e.depth-- }()

	if e.opts.Trace.Enter != nil {
		e.opts.Trace.Enter(node, e.depth)
	}
	if e.opts.Debug {
		e.logger.Debug("evaluating node",
			"type", node.Type,
			"loc", node.Loc.String(),
			"depth", e.depth,
			"top", top)
	}

	h, err := e.dispatch(ctx, node, scope)
	if err != nil {
		if e.arena.Top() > top {
			e.arena.Truncate(top)
		}
		err = e.frame(err, node)
	}

	if e.opts.Trace.Exit != nil {
		e.opts.Trace.Exit(node, e.arena, h, err == nil, e.depth)
	}
	return h, err
}

// enter checks cancellation and the depth and step limits, and increments
// the depth counter on success.
func (e *Evaluator) enter(ctx context.Context, node *types.Node) error {
	select {
	case <-ctx.Done():
		return types.NewError(types.ErrCancelled, types.SubsystemEval, ctx.Err().Error()).WithCause(ctx.Err()).At(node.Loc)
	default:
	}

	if e.opts.MaxDepth > 0 && e.depth >= e.opts.MaxDepth {
		return types.Errorf(types.ErrMaxDepth, types.SubsystemEval, "maximum evaluation depth %d exceeded", e.opts.MaxDepth).At(node.Loc)
	}
	e.steps++
	if e.opts.MaxSteps > 0 && e.steps > e.opts.MaxSteps {
		return types.Errorf(types.ErrStepLimit, types.SubsystemEval, "step limit %d exceeded", e.opts.MaxSteps).At(node.Loc)
	}
	e.depth++
	return nil
}

func (e *Evaluator) dispatch(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	switch node.Type {
	case types.NodeBool, types.NodeChar, types.NodeInt, types.NodeReal, types.NodeString, types.NodeUnit:
		return e.evalLiteral(node), nil
	case types.NodeArray:
		return e.evalCompound(ctx, node, scope, arena.TagArray)
	case types.NodeTuple:
		return e.evalCompound(ctx, node, scope, arena.TagTuple)
	case types.NodeSymbol:
		return e.evalSymbol(node, scope)
	case types.NodeFunc:
		return e.evalFunc(node, scope)
	case types.NodeCall:
		return e.evalCall(ctx, node, scope)
	case types.NodeDo:
		return e.evalDo(ctx, node, scope)
	case types.NodeBind:
		return e.evalBind(ctx, node, scope)
	case types.NodeIf:
		return e.evalIf(ctx, node, scope)
	case types.NodeWhile:
		return e.evalWhile(ctx, node, scope)
	case types.NodeMatch:
		return e.evalMatch(ctx, node, scope)
	case types.NodeAnd:
		return e.evalLogic(ctx, node, scope, false)
	case types.NodeOr:
		return e.evalLogic(ctx, node, scope, true)
	case types.NodePtr:
		return e.evalPtr(node, scope)
	case types.NodePeek:
		return e.evalPeek(ctx, node, scope)
	case types.NodePoke:
		return e.evalPoke(ctx, node, scope)
	case types.NodeBegin:
		return e.evalBoundary(node, scope, false)
	case types.NodeEnd:
		return e.evalBoundary(node, scope, true)
	case types.NodeInc:
		return e.evalInc(node, scope)
	case types.NodeSucc:
		return e.evalSucc(ctx, node, scope)
	default:
		return 0, types.Errorf(types.ErrInternal, types.SubsystemEval, "unknown node type %q", node.Type).At(node.Loc)
	}
}

// evalTemp evaluates a node whose value is consumed and collapsed by the
// caller. Bindings made inside it go to a throwaway frame so that no scope
// entry outlives the value it points to.
func (e *Evaluator) evalTemp(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	var h arena.Handle
	err := withScope(scope, func(tmp *Scope) error {
		var err error
		h, err = e.eval(ctx, node, tmp)
		return err
	})
	return h, err
}

// frame adds an eval frame describing node to err. Leaf nodes report their
// own failures, so they get no extra frame.
func (e *Evaluator) frame(err error, node *types.Node) error {
	switch node.Type {
	case types.NodeSymbol, types.NodeBool, types.NodeChar, types.NodeInt, types.NodeReal, types.NodeString, types.NodeUnit:
		return err
	}
	var loc *types.Location
	if !node.Loc.IsZero() {
		l := node.Loc
		loc = &l
	}
	return types.Wrap(err, types.SubsystemEval, loc, "failed evaluating "+describe(node))
}

func describe(node *types.Node) string {
	switch node.Type {
	case types.NodeCall:
		if node.Callee != nil && node.Callee.Type == types.NodeSymbol {
			return "call to " + node.Callee.Name
		}
		return "call"
	case types.NodeFunc:
		return "function literal"
	case types.NodeArray:
		return "array literal"
	case types.NodeTuple:
		return "tuple literal"
	case types.NodeDo:
		return "do block"
	case types.NodeBind:
		if node.Pattern != nil && node.Pattern.Kind == types.PatternSymbol {
			return "bind " + node.Pattern.Name
		}
		return "bind"
	case types.NodePtr, types.NodeBegin, types.NodeEnd, types.NodeInc:
		return string(node.Type) + " " + node.Name
	}
	return string(node.Type)
}
