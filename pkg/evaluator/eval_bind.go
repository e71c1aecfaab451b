package evaluator

import (
	"context"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// evalBind evaluates the expression and binds it into the current scope.
// The bound value is the result and stays on the arena for as long as the
// enclosing block keeps it.
func (e *Evaluator) evalBind(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	h, err := e.evalTemp(ctx, node.Expr, scope)
	if err != nil {
		return 0, err
	}
	if err := e.bindPattern(node.Pattern, h, scope); err != nil {
		return 0, err
	}
	return h, nil
}

// bindPattern destructures the value at h into scope. Names already bound in
// the same frame are rejected. On failure every name inserted by this call is
// removed again.
func (e *Evaluator) bindPattern(p *types.Pattern, h arena.Handle, scope *Scope) error {
	var inserted []string
	err := e.matchPattern(p, h, func(name string, loc types.Location, v arena.Handle) error {
		if scope.Has(name) {
			return types.Errorf(types.ErrRebind, types.SubsystemScope, "symbol %q is already bound in this scope", name).At(loc)
		}
		scope.Insert(name, v, loc)
		inserted = append(inserted, name)
		return nil
	})
	if err != nil {
		for _, name := range inserted {
			scope.Remove(name)
		}
	}
	return err
}

// matchPattern walks p and the value at h together and calls visit for every
// symbol. Structural disagreement yields an ErrPatternMismatch error.
func (e *Evaluator) matchPattern(p *types.Pattern, h arena.Handle, visit func(string, types.Location, arena.Handle) error) error {
	switch p.Kind {
	case types.PatternSymbol:
		return visit(p.Name, p.Loc, h)

	case types.PatternWildcard:
		return nil

	case types.PatternLiteral:
		if !e.literalMatches(p.Literal, h) {
			return mismatch(p, "value %s does not match literal", e.arena.Format(h))
		}
		return nil

	case types.PatternArray, types.PatternTuple:
		want := arena.TagArray
		if p.Kind == types.PatternTuple {
			want = arena.TagTuple
		}
		if got := e.arena.PeekType(h); got != want {
			return mismatch(p, "expected %s, got %s", want, got)
		}
		kids := e.arena.Children(h)
		if len(kids) != len(p.Children) {
			return mismatch(p, "expected %s of %d elements, got %d", want, len(p.Children), len(kids))
		}
		for i, child := range p.Children {
			if err := e.matchPattern(child, kids[i], visit); err != nil {
				return err
			}
		}
		return nil
	}
	return types.Errorf(types.ErrInternal, types.SubsystemPattern, "unknown pattern kind %s", p.Kind).At(p.Loc)
}

func mismatch(p *types.Pattern, format string, args ...interface{}) error {
	return types.Errorf(types.ErrPatternMismatch, types.SubsystemPattern, "%s pattern: "+format,
		append([]interface{}{p.Kind}, args...)...).At(p.Loc)
}

// literalMatches compares an atomic or string literal with the value at h
// without pushing the literal.
func (e *Evaluator) literalMatches(lit *types.Node, h arena.Handle) bool {
	a := e.arena
	tag := a.PeekType(h)
	switch lit.Type {
	case types.NodeBool:
		return tag == arena.TagBool && a.PeekBool(h) == lit.Bool
	case types.NodeChar:
		return tag == arena.TagChar && a.PeekChar(h) == lit.Char
	case types.NodeInt:
		return tag == arena.TagInt && a.PeekInt(h) == lit.Int
	case types.NodeReal:
		return tag == arena.TagReal && a.PeekReal(h) == lit.Real
	case types.NodeUnit:
		return tag == arena.TagUnit
	case types.NodeString:
		return tag == arena.TagArray && a.IsString(h) && a.PeekString(h) == lit.Str
	}
	return false
}

// evalDo evaluates a block in a child scope. Intermediate results are
// collapsed unless they created bindings; the last result is slid down to
// the start of the block once the scope is gone.
func (e *Evaluator) evalDo(ctx context.Context, node *types.Node, scope *Scope) (arena.Handle, error) {
	base := e.arena.Top()
	if len(node.Children) == 0 {
		return e.arena.PushUnit(), nil
	}

	var result arena.Handle
	err := withScope(scope, func(inner *Scope) error {
		last := len(node.Children) - 1
		for i, child := range node.Children {
			before := inner.Len()
			h, err := e.eval(ctx, child, inner)
			if err != nil {
				return err
			}
			switch {
			case i == last:
				result = h
			case inner.Len() == before:
				e.arena.Truncate(h)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return e.slide(base, result), nil
}

// slide moves the value at h down to base, discarding everything between.
// It returns the new handle of the value.
func (e *Evaluator) slide(base, h arena.Handle) arena.Handle {
	if h > base {
		e.arena.Collapse(base, h)
	}
	return base
}
