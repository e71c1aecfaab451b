package parser

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// DomKind classifies a DOM node.
type DomKind uint8

const (
	DomAtom    DomKind = iota // a single literal or symbol token
	DomParen                  // ( ... )
	DomBracket                // [ ... ]
	DomBrace                  // { ... }
)

func (k DomKind) String() string {
	switch k {
	case DomAtom:
		return "atom"
	case DomParen:
		return "list"
	case DomBracket:
		return "array"
	case DomBrace:
		return "tuple"
	}
	return "unknown"
}

// Dom is the S-expression tree read from the token stream, before any
// special form is recognised.
type Dom struct {
	Kind     DomKind
	Token    Token // atoms only
	Children []*Dom
	Loc      types.Location
}

// IsSymbol reports whether d is the symbol atom name.
func (d *Dom) IsSymbol(name string) bool {
	return d.Kind == DomAtom && d.Token.Type == TokenSymbol && d.Token.Value == name
}

// reader builds DOM trees from a lexer.
type reader struct {
	lex      *Lexer
	maxDepth int
	depth    int
}

// readAll reads every top-level DOM node until end of input.
func (r *reader) readAll() ([]*Dom, error) {
	var out []*Dom
	for {
		t := r.lex.Next()
		if t.Type == TokenEOF {
			return out, nil
		}
		d, err := r.read(t)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
}

// read builds the DOM node starting with token t.
func (r *reader) read(t Token) (*Dom, error) {
	switch t.Type {
	case TokenError:
		return nil, r.lex.Error()
	case TokenInt, TokenReal, TokenChar, TokenString, TokenSymbol:
		return &Dom{Kind: DomAtom, Token: t, Loc: t.Loc}, nil
	case TokenParenOpen, TokenBracketOpen, TokenBraceOpen:
		return r.compound(t)
	case TokenEOF:
		return nil, types.NewError(types.ErrUnexpectedEnd, types.SubsystemParse, "unexpected end of input").At(t.Loc)
	}
	return nil, types.Errorf(types.ErrUnexpectedToken, types.SubsystemParse, "unexpected %s", t.Type).At(t.Loc)
}

func (r *reader) compound(open Token) (*Dom, error) {
	r.depth++
	defer func() { r.depth-- }()
	if r.maxDepth > 0 && r.depth > r.maxDepth {
		return nil, types.Errorf(types.ErrMalformedForm, types.SubsystemParse, "nesting deeper than %d", r.maxDepth).At(open.Loc)
	}

	kind := DomParen
	switch open.Type {
	case TokenBracketOpen:
		kind = DomBracket
	case TokenBraceOpen:
		kind = DomBrace
	}
	d := &Dom{Kind: kind, Loc: open.Loc}
	want := closing(open.Type)
	for {
		t := r.lex.Next()
		switch t.Type {
		case want:
			return d, nil
		case TokenEOF:
			return nil, types.Errorf(types.ErrUnexpectedEnd, types.SubsystemParse, "unclosed %s opened at %s", open.Type, open.Loc).At(t.Loc)
		case TokenParenClose, TokenBracketClose, TokenBraceClose:
			return nil, types.Errorf(types.ErrUnexpectedToken, types.SubsystemParse, "expected %s, got %s", want, t.Type).At(t.Loc)
		}
		child, err := r.read(t)
		if err != nil {
			return nil, err
		}
		d.Children = append(d.Children, child)
	}
}
