package evaluator

import (
	"context"
	"errors"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// evalPtr pushes a reference to the value bound to node.Name.
func (e *Evaluator) evalPtr(node *types.Node, scope *Scope) (arena.Handle, error) {
	b, ok := scope.Find(node.Name)
	if !ok {
		return 0, unbound(node.Name, node.Loc)
	}
	return e.arena.PushReference(b.Handle), nil
}

// evalBoundary pushes a reference to the first child (begin) or one past the
// last child (end) of a compound binding.
func (e *Evaluator) evalBoundary(node *types.Node, scope *Scope, isEnd bool) (arena.Handle, error) {
	b, ok := scope.Find(node.Name)
	if !ok {
		return 0, unbound(node.Name, node.Loc)
	}
	if tag := e.arena.PeekType(b.Handle); !tag.IsCompound() {
		return 0, typeMismatch(node.Loc, "%s requires an array or tuple, %q is %s", node.Type, node.Name, tag)
	}
	target := e.arena.FirstChild(b.Handle)
	if isEnd {
		target = e.arena.Next(b.Handle)
	}
	return e.arena.PushReference(target), nil
}

// evalReference evaluates node into a temporary reference and returns the
// handle of the reference and of its referent. The referent must be a live
// value below the reference that no collapse has touched since the reference
// was taken.
func (e *Evaluator) evalReference(ctx context.Context, node *types.Node, scope *Scope, form types.NodeType) (arena.Handle, arena.Handle, error) {
	r, err := e.evalTemp(ctx, node, scope)
	if err != nil {
		return 0, 0, err
	}
	if tag := e.arena.PeekType(r); tag != arena.TagReference {
		return 0, 0, typeMismatch(node.Loc, "%s requires a reference, got %s", form, tag)
	}
	target := e.arena.PeekReference(r)
	if e.arena.ReferenceStale(r) {
		return 0, 0, staleReference(form, target, node.Loc)
	}
	if target >= r || !e.arena.Valid(target) {
		return 0, 0, types.Errorf(types.ErrInvalidReference, types.SubsystemEval,
			"%s through a reference to @%d that does not address a value", form, target).At(node.Loc)
	}
	return r, target, nil
}

// evalPeek copies the referent of a reference.
func (e *Evaluator) evalPeek(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	base := e.arena.Top()
	_, target, err := e.evalReference(ctx, node.Expr, scope, node.Type)
	if err != nil {
		return 0, err
	}
	e.arena.Truncate(base)
	return e.arena.Copy(target), nil
}

// evalPoke overwrites the referent in place. The new value must have the
// referent's shape and encoded size. The result is unit.
func (e *Evaluator) evalPoke(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	base := e.arena.Top()
	_, target, err := e.evalReference(ctx, node.Expr, scope, node.Type)
	if err != nil {
		return 0, err
	}
	v, err := e.evalTemp(ctx, node.Value, scope)
	if err != nil {
		return 0, err
	}
	if err := e.arena.Overwrite(target, v); err != nil {
		if errors.Is(err, arena.ErrShapeMismatch) {
			return 0, types.Errorf(types.ErrShapeMismatch, types.SubsystemEval,
				"cannot poke %s over %s", e.arena.Format(v), e.arena.Format(target)).At(node.Loc)
		}
		return 0, err
	}
	e.arena.Truncate(base)
	return e.arena.PushUnit(), nil
}

// evalInc advances a reference binding in place to the next value and
// pushes a copy of the updated reference.
func (e *Evaluator) evalInc(node *types.Node, scope *Scope) (arena.Handle, error) {
	b, ok := scope.Find(node.Name)
	if !ok {
		return 0, unbound(node.Name, node.Loc)
	}
	if tag := e.arena.PeekType(b.Handle); tag != arena.TagReference {
		return 0, typeMismatch(node.Loc, "inc requires a reference, %q is %s", node.Name, tag)
	}
	next, err := e.advance(b.Handle, node)
	if err != nil {
		return 0, err
	}
	e.arena.SetReference(b.Handle, next)
	return e.arena.Copy(b.Handle), nil
}

// evalSucc pushes a reference advanced by one value without touching the
// original.
func (e *Evaluator) evalSucc(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	r, err := e.evalTemp(ctx, node.Expr, scope)
	if err != nil {
		return 0, err
	}
	if tag := e.arena.PeekType(r); tag != arena.TagReference {
		return 0, typeMismatch(node.Loc, "succ requires a reference, got %s", tag)
	}
	next, err := e.advance(r, node)
	if err != nil {
		return 0, err
	}
	e.arena.SetReference(r, next)
	return r, nil
}

func (e *Evaluator) advance(ref arena.Handle, node *types.Node) (arena.Handle, error) {
	target := e.arena.PeekReference(ref)
	if e.arena.ReferenceStale(ref) {
		return 0, staleReference(node.Type, target, node.Loc)
	}
	if target == ref || !e.arena.Valid(target) {
		return 0, types.Errorf(types.ErrInvalidReference, types.SubsystemEval,
			"cannot advance past @%d", target).At(node.Loc)
	}
	return e.arena.Next(target), nil
}

func staleReference(form types.NodeType, target arena.Handle, loc types.Location) error {
	return types.Errorf(types.ErrInvalidReference, types.SubsystemEval,
		"%s through a reference to @%d whose referent no longer exists", form, target).At(loc)
}
