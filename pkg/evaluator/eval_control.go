package evaluator

import (
	"context"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// evalCondition evaluates a test expression, requires a boolean and collapses
// the temporary.
func (e *Evaluator) evalCondition(ctx context.Context, node *types.Node, scope *Scope, form string) (bool, error) {
	h, err := e.evalTemp(ctx, node, scope)
	if err != nil {
		return false, err
	}
	if tag := e.arena.PeekType(h); tag != arena.TagBool {
		e.arena.Truncate(h)
		return false, types.Errorf(types.ErrNonBoolean, types.SubsystemEval, "%s requires a bool, got %s", form, tag).At(node.Loc)
	}
	v := e.arena.PeekBool(h)
	e.arena.Truncate(h)
	return v, nil
}

func (e *Evaluator) evalIf(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	cond, err := e.evalCondition(ctx, node.Test, scope, "if")
	if err != nil {
		return 0, err
	}
	if cond {
		return e.eval(ctx, node.Then, scope)
	}
	return e.eval(ctx, node.Else, scope)
}

// evalWhile keeps only the most recent body value. The test of each
// iteration is evaluated above the previous body value; once it passes, the
// previous value is dropped and the body runs in its own scope.
func (e *Evaluator) evalWhile(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	base := e.arena.Top()
	ran := false
	for {
		cond, err := e.evalCondition(ctx, node.Test, scope, "while")
		if err != nil {
			return 0, err
		}
		if !cond {
			break
		}
		if ran {
			e.arena.Truncate(base)
		}
		if _, err := e.evalTemp(ctx, node.Body, scope); err != nil {
			return 0, err
		}
		ran = true
	}
	if !ran {
		return e.arena.PushUnit(), nil
	}
	return base, nil
}

// evalMatch binds the scrutinee against each arm in turn. A pattern mismatch
// moves on to the next arm; any other failure aborts the match.
func (e *Evaluator) evalMatch(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	base := e.arena.Top()
	v, err := e.evalTemp(ctx, node.Expr, scope)
	if err != nil {
		return 0, err
	}

	for _, arm := range node.Arms {
		var (
			result  arena.Handle
			matched bool
		)
		err := withScope(scope, func(armScope *Scope) error {
			if err := e.bindPattern(arm.Pattern, v, armScope); err != nil {
				if types.HasCode(err, types.ErrPatternMismatch) {
					return nil
				}
				return err
			}
			matched = true
			h, err := e.eval(ctx, arm.Expr, armScope)
			result = h
			return err
		})
		if err != nil {
			return 0, err
		}
		if matched {
			return e.slide(base, result), nil
		}
	}
	return 0, types.Errorf(types.ErrNoMatch, types.SubsystemPattern, "no case matched %s", e.arena.Format(v)).At(node.Loc)
}

// evalLogic implements and (stopOn == false) and or (stopOn == true).
func (e *Evaluator) evalLogic(ctx context.Context, node *types.Node, scope *Scope, stopOn bool) (arena.Handle, error) {
	form := string(node.Type)
	for _, op := range node.Children {
		v, err := e.evalCondition(ctx, op, scope, form)
		if err != nil {
			return 0, err
		}
		if v == stopOn {
			return e.arena.PushBool(stopOn), nil
		}
	}
	return e.arena.PushBool(!stopOn), nil
}
