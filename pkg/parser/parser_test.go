package parser_test

import (
	"testing"

	"github.com/k-stachowiak/game-script-sub000/pkg/parser"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

func mustParseExpr(t *testing.T, src string) *types.Node {
	t.Helper()
	n, err := parser.ParseExpression(src)
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", src, err)
	}
	return n
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		src  string
		typ  types.NodeType
		want func(n *types.Node) bool
	}{
		{"42", types.NodeInt, func(n *types.Node) bool { return n.Int == 42 }},
		{"-3", types.NodeInt, func(n *types.Node) bool { return n.Int == -3 }},
		{"2.5", types.NodeReal, func(n *types.Node) bool { return n.Real == 2.5 }},
		{"'x'", types.NodeChar, func(n *types.Node) bool { return n.Char == 'x' }},
		{`"ab"`, types.NodeString, func(n *types.Node) bool { return n.Str == "ab" }},
		{"true", types.NodeBool, func(n *types.Node) bool { return n.Bool }},
		{"false", types.NodeBool, func(n *types.Node) bool { return !n.Bool }},
		{"()", types.NodeUnit, func(n *types.Node) bool { return true }},
		{"foo", types.NodeSymbol, func(n *types.Node) bool { return n.Name == "foo" }},
		{"[1 2]", types.NodeArray, func(n *types.Node) bool { return len(n.Children) == 2 }},
		{"{1 'a'}", types.NodeTuple, func(n *types.Node) bool { return len(n.Children) == 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n := mustParseExpr(t, tt.src)
			if n.Type != tt.typ {
				t.Fatalf("type = %s, want %s", n.Type, tt.typ)
			}
			if !tt.want(n) {
				t.Errorf("unexpected node contents for %q", tt.src)
			}
		})
	}
}

func TestParseSpecialForms(t *testing.T) {
	tests := []struct {
		src  string
		typ  types.NodeType
		want func(n *types.Node) bool
	}{
		{"(do 1 2 3)", types.NodeDo, func(n *types.Node) bool { return len(n.Children) == 3 }},
		{"(do)", types.NodeDo, func(n *types.Node) bool { return len(n.Children) == 0 }},
		{"(bind x 1)", types.NodeBind, func(n *types.Node) bool {
			return n.Pattern.Kind == types.PatternSymbol && n.Pattern.Name == "x" && n.Expr.Int == 1
		}},
		{"(bind [a _ {b c}] v)", types.NodeBind, func(n *types.Node) bool {
			p := n.Pattern
			return p.Kind == types.PatternArray && len(p.Children) == 3 &&
				p.Children[1].Kind == types.PatternWildcard &&
				p.Children[2].Kind == types.PatternTuple
		}},
		{"(if c 1 2)", types.NodeIf, func(n *types.Node) bool { return n.Test.Name == "c" && n.Else.Int == 2 }},
		{"(while c (f))", types.NodeWhile, func(n *types.Node) bool { return n.Body.Type == types.NodeCall }},
		{"(match v 0 'z' _ 'n')", types.NodeMatch, func(n *types.Node) bool {
			return len(n.Arms) == 2 && n.Arms[0].Pattern.Kind == types.PatternLiteral && n.Arms[1].Pattern.Kind == types.PatternWildcard
		}},
		{"(and a b)", types.NodeAnd, func(n *types.Node) bool { return len(n.Children) == 2 }},
		{"(or)", types.NodeOr, func(n *types.Node) bool { return len(n.Children) == 0 }},
		{"(func (x y) (+ x y))", types.NodeFunc, func(n *types.Node) bool { return len(n.Params) == 2 && n.Body.Type == types.NodeCall }},
		{"(func () 1)", types.NodeFunc, func(n *types.Node) bool { return len(n.Params) == 0 }},
		{"(ptr x)", types.NodePtr, func(n *types.Node) bool { return n.Name == "x" }},
		{"(peek r)", types.NodePeek, func(n *types.Node) bool { return n.Expr.Name == "r" }},
		{"(poke r 5)", types.NodePoke, func(n *types.Node) bool { return n.Expr.Name == "r" && n.Value.Int == 5 }},
		{"(begin xs)", types.NodeBegin, func(n *types.Node) bool { return n.Name == "xs" }},
		{"(end xs)", types.NodeEnd, func(n *types.Node) bool { return n.Name == "xs" }},
		{"(inc it)", types.NodeInc, func(n *types.Node) bool { return n.Name == "it" }},
		{"(succ (ptr x))", types.NodeSucc, func(n *types.Node) bool { return n.Expr.Type == types.NodePtr }},
		{"((f 1) 2)", types.NodeCall, func(n *types.Node) bool { return n.Callee.Type == types.NodeCall && len(n.Children) == 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n := mustParseExpr(t, tt.src)
			if n.Type != tt.typ {
				t.Fatalf("type = %s, want %s", n.Type, tt.typ)
			}
			if !tt.want(n) {
				t.Errorf("unexpected node contents for %q", tt.src)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		code types.ErrorCode
	}{
		{"(+ 1", types.ErrUnexpectedEnd},
		{"(+ 1]", types.ErrUnexpectedToken},
		{")", types.ErrUnexpectedToken},
		{"(if a b)", types.ErrMalformedForm},
		{"(bind 1)", types.ErrMalformedForm},
		{"(match v 1)", types.ErrMalformedForm},
		{"(func x x)", types.ErrMalformedForm},
		{"(ptr (f))", types.ErrMalformedForm},
		{"(bind (f x) 1)", types.ErrInvalidPattern},
		{"(bind if 1)", types.ErrInvalidPattern},
		{"(f do)", types.ErrMalformedForm},
		{"99999999999999999999", types.ErrNumberOutOfRange},
		{`"open`, types.ErrStringNotClosed},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := parser.Parse(tt.src)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want %s", tt.src, tt.code)
			}
			if code := types.CodeOf(err); code != tt.code {
				t.Errorf("code = %s, want %s (%v)", code, tt.code, err)
			}
		})
	}
}

func TestParseProgram(t *testing.T) {
	src := `
; greatest common divisor
(bind gcd (func (x y) (if (= y 0) x (gcd y (% x y)))))
(gcd 54 24)
`
	prog, err := parser.Parse(src, parser.WithSourceName("gcd.gs"))
	if err != nil {
		t.Fatal(err)
	}
	exprs := prog.Expressions()
	if len(exprs) != 2 {
		t.Fatalf("got %d expressions, want 2", len(exprs))
	}
	if loc := exprs[1].Loc; loc.Source != "gcd.gs" || loc.Line != 4 || loc.Column != 1 {
		t.Errorf("location = %v, want gcd.gs:4:1", loc)
	}
	if prog.NodeCount() == 0 {
		t.Error("expected nodes to come from the program arena")
	}
}

func TestParseExpressionCount(t *testing.T) {
	if _, err := parser.ParseExpression("1 2"); err == nil {
		t.Error("expected an error for two expressions")
	}
	if _, err := parser.ParseExpression("  ; nothing\n"); err == nil {
		t.Error("expected an error for no expression")
	}
}

func TestParseMaxDepth(t *testing.T) {
	src := ""
	for i := 0; i < 20; i++ {
		src += "["
	}
	for i := 0; i < 20; i++ {
		src += "]"
	}
	if _, err := parser.Parse(src, parser.WithMaxDepth(10)); err == nil {
		t.Error("expected nesting limit error")
	}
	if _, err := parser.Parse(src, parser.WithMaxDepth(20)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReadDom(t *testing.T) {
	doms, err := parser.ReadDom("(a [b] {c}) d")
	if err != nil {
		t.Fatal(err)
	}
	if len(doms) != 2 || doms[0].Kind != parser.DomParen || !doms[1].IsSymbol("d") {
		t.Fatalf("unexpected DOM: %+v", doms)
	}
	kids := doms[0].Children
	if kids[1].Kind != parser.DomBracket || kids[2].Kind != parser.DomBrace {
		t.Errorf("unexpected child kinds: %s %s", kids[1].Kind, kids[2].Kind)
	}
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		`(+ 1 2)`,
		`(bind [a b] [1 2])`,
		`(match x 0 'a' _ 'b')`,
		`(func (x) (* x x))`,
		`"str\n"`,
		`'c'`,
		`(`,
		`]`,
		``,
		`; comment`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		_, _ = parser.Parse(input)
	})
}
