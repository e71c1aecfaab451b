package parser

import (
	"math"
	"strconv"

	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// keywords are the heads of special forms. They cannot be bound.
var keywords = map[string]types.NodeType{
	"do":    types.NodeDo,
	"bind":  types.NodeBind,
	"if":    types.NodeIf,
	"while": types.NodeWhile,
	"match": types.NodeMatch,
	"and":   types.NodeAnd,
	"or":    types.NodeOr,
	"func":  types.NodeFunc,
	"ptr":   types.NodePtr,
	"peek":  types.NodePeek,
	"poke":  types.NodePoke,
	"begin": types.NodeBegin,
	"end":   types.NodeEnd,
	"inc":   types.NodeInc,
	"succ":  types.NodeSucc,
}

// IsKeyword reports whether name is the head of a special form.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// builder converts DOM trees into AST nodes.
type builder struct {
	nodes *types.NodeArena
}

func (b *builder) malformed(d *Dom, format string, args ...interface{}) error {
	return types.Errorf(types.ErrMalformedForm, types.SubsystemParse, format, args...).At(d.Loc)
}

// expr builds the expression node of d.
func (b *builder) expr(d *Dom) (*types.Node, error) {
	switch d.Kind {
	case DomAtom:
		return b.atom(d)
	case DomBracket, DomBrace:
		typ := types.NodeArray
		if d.Kind == DomBrace {
			typ = types.NodeTuple
		}
		n := b.nodes.Alloc(typ, d.Loc)
		kids, err := b.exprs(d.Children)
		if err != nil {
			return nil, err
		}
		n.Children = kids
		return n, nil
	}

	if len(d.Children) == 0 {
		return b.nodes.Alloc(types.NodeUnit, d.Loc), nil
	}
	head := d.Children[0]
	if head.Kind == DomAtom && head.Token.Type == TokenSymbol {
		if typ, ok := keywords[head.Token.Value]; ok {
			return b.special(typ, d)
		}
	}

	n := b.nodes.Alloc(types.NodeCall, d.Loc)
	callee, err := b.expr(head)
	if err != nil {
		return nil, err
	}
	args, err := b.exprs(d.Children[1:])
	if err != nil {
		return nil, err
	}
	n.Callee = callee
	n.Children = args
	return n, nil
}

func (b *builder) exprs(ds []*Dom) ([]*types.Node, error) {
	if len(ds) == 0 {
		return nil, nil
	}
	out := make([]*types.Node, len(ds))
	for i, d := range ds {
		n, err := b.expr(d)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// atom builds a literal or symbol node.
func (b *builder) atom(d *Dom) (*types.Node, error) {
	t := d.Token
	switch t.Type {
	case TokenInt:
		v, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return nil, types.Errorf(types.ErrNumberOutOfRange, types.SubsystemParse, "integer %s out of range", t.Value).At(t.Loc)
		}
		n := b.nodes.Alloc(types.NodeInt, t.Loc)
		n.Int = v
		return n, nil
	case TokenReal:
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil || math.IsInf(v, 0) {
			return nil, types.Errorf(types.ErrNumberOutOfRange, types.SubsystemParse, "real %s out of range", t.Value).At(t.Loc)
		}
		n := b.nodes.Alloc(types.NodeReal, t.Loc)
		n.Real = v
		return n, nil
	case TokenChar:
		n := b.nodes.Alloc(types.NodeChar, t.Loc)
		n.Char = []rune(t.Value)[0]
		return n, nil
	case TokenString:
		n := b.nodes.Alloc(types.NodeString, t.Loc)
		n.Str = t.Value
		return n, nil
	}

	switch t.Value {
	case "true", "false":
		n := b.nodes.Alloc(types.NodeBool, t.Loc)
		n.Bool = t.Value == "true"
		return n, nil
	}
	if IsKeyword(t.Value) {
		return nil, types.Errorf(types.ErrMalformedForm, types.SubsystemParse, "%s must appear at the head of a form", t.Value).At(t.Loc)
	}
	n := b.nodes.Alloc(types.NodeSymbol, t.Loc)
	n.Name = t.Value
	return n, nil
}

// special builds a special form. d.Children[0] is the keyword.
func (b *builder) special(typ types.NodeType, d *Dom) (*types.Node, error) {
	args := d.Children[1:]
	n := b.nodes.Alloc(typ, d.Loc)

	arity := func(want int) error {
		if len(args) != want {
			return b.malformed(d, "%s takes %d operands, got %d", typ, want, len(args))
		}
		return nil
	}

	var err error
	switch typ {
	case types.NodeDo, types.NodeAnd, types.NodeOr:
		n.Children, err = b.exprs(args)

	case types.NodeBind:
		if err = arity(2); err != nil {
			return nil, err
		}
		if n.Pattern, err = b.pattern(args[0]); err != nil {
			return nil, err
		}
		n.Expr, err = b.expr(args[1])

	case types.NodeIf:
		if err = arity(3); err != nil {
			return nil, err
		}
		if n.Test, err = b.expr(args[0]); err != nil {
			return nil, err
		}
		if n.Then, err = b.expr(args[1]); err != nil {
			return nil, err
		}
		n.Else, err = b.expr(args[2])

	case types.NodeWhile:
		if err = arity(2); err != nil {
			return nil, err
		}
		if n.Test, err = b.expr(args[0]); err != nil {
			return nil, err
		}
		n.Body, err = b.expr(args[1])

	case types.NodeMatch:
		if len(args) < 3 || len(args)%2 == 0 {
			return nil, b.malformed(d, "match takes an expression followed by pattern/expression pairs")
		}
		if n.Expr, err = b.expr(args[0]); err != nil {
			return nil, err
		}
		for i := 1; i < len(args); i += 2 {
			p, err := b.pattern(args[i])
			if err != nil {
				return nil, err
			}
			e, err := b.expr(args[i+1])
			if err != nil {
				return nil, err
			}
			n.Arms = append(n.Arms, types.MatchArm{Pattern: p, Expr: e})
		}

	case types.NodeFunc:
		if err = arity(2); err != nil {
			return nil, err
		}
		params := args[0]
		if params.Kind != DomParen {
			return nil, b.malformed(params, "func parameters must be a list, got %s", params.Kind)
		}
		n.Params = make([]*types.Pattern, len(params.Children))
		for i, pd := range params.Children {
			if n.Params[i], err = b.pattern(pd); err != nil {
				return nil, err
			}
		}
		n.Body, err = b.expr(args[1])

	case types.NodePtr, types.NodeBegin, types.NodeEnd, types.NodeInc:
		if err = arity(1); err != nil {
			return nil, err
		}
		if args[0].Kind != DomAtom || args[0].Token.Type != TokenSymbol || IsKeyword(args[0].Token.Value) {
			return nil, b.malformed(args[0], "%s requires a symbol", typ)
		}
		n.Name = args[0].Token.Value

	case types.NodePeek, types.NodeSucc:
		if err = arity(1); err != nil {
			return nil, err
		}
		n.Expr, err = b.expr(args[0])

	case types.NodePoke:
		if err = arity(2); err != nil {
			return nil, err
		}
		if n.Expr, err = b.expr(args[0]); err != nil {
			return nil, err
		}
		n.Value, err = b.expr(args[1])
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// pattern builds a destructuring pattern.
func (b *builder) pattern(d *Dom) (*types.Pattern, error) {
	p := &types.Pattern{Loc: d.Loc}
	switch d.Kind {
	case DomBracket, DomBrace:
		p.Kind = types.PatternArray
		if d.Kind == DomBrace {
			p.Kind = types.PatternTuple
		}
		for _, cd := range d.Children {
			c, err := b.pattern(cd)
			if err != nil {
				return nil, err
			}
			p.Children = append(p.Children, c)
		}
		return p, nil

	case DomParen:
		if len(d.Children) != 0 {
			return nil, types.NewError(types.ErrInvalidPattern, types.SubsystemParse, "a list is not a valid pattern").At(d.Loc)
		}
		p.Kind = types.PatternLiteral
		p.Literal = b.nodes.Alloc(types.NodeUnit, d.Loc)
		return p, nil
	}

	t := d.Token
	if t.Type == TokenSymbol {
		switch {
		case t.Value == "_":
			p.Kind = types.PatternWildcard
			return p, nil
		case IsKeyword(t.Value):
			return nil, types.Errorf(types.ErrInvalidPattern, types.SubsystemParse, "cannot bind keyword %s", t.Value).At(t.Loc)
		case t.Value != "true" && t.Value != "false":
			p.Kind = types.PatternSymbol
			p.Name = t.Value
			return p, nil
		}
	}

	lit, err := b.atom(d)
	if err != nil {
		return nil, err
	}
	p.Kind = types.PatternLiteral
	p.Literal = lit
	return p, nil
}
