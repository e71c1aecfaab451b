package evaluator

import (
	"context"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

func (e *Evaluator) evalLiteral(node *types.Node) arena.Handle {
	switch node.Type {
	case types.NodeBool:
		return e.arena.PushBool(node.Bool)
	case types.NodeChar:
		return e.arena.PushChar(node.Char)
	case types.NodeInt:
		return e.arena.PushInt(node.Int)
	case types.NodeReal:
		return e.arena.PushReal(node.Real)
	case types.NodeString:
		return e.arena.PushString(node.Str)
	default:
		return e.arena.PushUnit()
	}
}

// evalCompound builds an array or tuple literal. Children are evaluated in
// order directly into the compound payload.
func (e *Evaluator) evalCompound(ctx context.Context, node *types.Node, scope *Scope, tag arena.Tag) (arena.Handle, error) {
	b := e.arena.BeginCompound(tag)
	err := withScope(scope, func(tmp *Scope) error {
		for _, child := range node.Children {
			if _, err := e.eval(ctx, child, tmp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		b.Abort()
		return 0, err
	}
	h := b.Commit()
	if tag == arena.TagArray && !e.arena.Homogeneous(h) {
		return 0, types.NewError(types.ErrHeterogeneousArray, types.SubsystemEval,
			"array elements must all have the same shape: "+e.arena.Format(h)).At(node.Loc)
	}
	return h, nil
}

// evalSymbol pushes a copy of the bound value.
func (e *Evaluator) evalSymbol(node *types.Node, scope *Scope) (arena.Handle, error) {
	b, ok := scope.Find(node.Name)
	if !ok {
		return 0, unbound(node.Name, node.Loc)
	}
	return e.arena.Copy(b.Handle), nil
}

func unbound(name string, loc types.Location) error {
	return types.Errorf(types.ErrUnboundSymbol, types.SubsystemScope, "symbol %q is not bound", name).At(loc)
}

func typeMismatch(loc types.Location, format string, args ...interface{}) error {
	return types.Errorf(types.ErrTypeMismatch, types.SubsystemEval, format, args...).At(loc)
}
