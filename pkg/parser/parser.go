// Package parser implements the gamescript front end.
//
// Source text goes through three stages:
//   - Lexer: tokenizes the input into delimiters, literals and symbols
//   - Reader: groups tokens into a DOM of atoms, lists, arrays and tuples
//   - Builder: recognises special forms and patterns and produces the AST
//
// # Syntax
//
//	42 -7 3.5 1e3            ints and reals
//	'a' '\n' "text"          chars and strings (arrays of chars)
//	true false ()            booleans and unit
//	[1 2 3] {1 'a' "b"}      arrays and tuples
//	(f x y)                  call
//	(bind [x y] pair)        special form
//	; comment                to end of line
//
// # Example
//
//	prog, err := parser.Parse(`(bind sq (func (x) (* x x))) (sq 7)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(prog.Expressions())) // 2
package parser

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// DefaultMaxDepth is the default limit on nesting of lists, arrays and tuples.
const DefaultMaxDepth = 1000

// ParseOption configures parsing behavior.
type ParseOption func(*ParseOptions)

// ParseOptions holds parser configuration.
type ParseOptions struct {
	// SourceName is attached to every location, e.g. a file name.
	SourceName string
	// MaxDepth limits nesting to prevent stack overflow.
	MaxDepth int
}

// WithSourceName sets the source name reported in locations.
func WithSourceName(name string) ParseOption {
	return func(opts *ParseOptions) {
		opts.SourceName = name
	}
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) ParseOption {
	return func(opts *ParseOptions) {
		opts.MaxDepth = depth
	}
}

// Parse parses a whole program: zero or more top-level expressions.
//
// Example:
//
//	prog, err := parser.Parse("(+ 1 2)", parser.WithSourceName("inline"))
//	if err != nil {
//	    fmt.Println(err) // multi-line trace with S0xxx code and location
//	    return
//	}
func Parse(src string, opts ...ParseOption) (*types.Program, error) {
	options := ParseOptions{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&options)
	}

	r := &reader{lex: NewLexer(src, options.SourceName), maxDepth: options.MaxDepth}
	doms, err := r.readAll()
	if err != nil {
		return nil, err
	}

	b := &builder{nodes: types.NewNodeArena()}
	exprs, err := b.exprs(doms)
	if err != nil {
		return nil, err
	}
	return types.NewProgram(exprs, src).WithArena(b.nodes), nil
}

// ParseExpression parses source holding exactly one expression.
func ParseExpression(src string, opts ...ParseOption) (*types.Node, error) {
	prog, err := Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	exprs := prog.Expressions()
	switch len(exprs) {
	case 1:
		return exprs[0], nil
	case 0:
		return nil, types.NewError(types.ErrUnexpectedEnd, types.SubsystemParse, "expected an expression")
	}
	return nil, types.Errorf(types.ErrUnexpectedToken, types.SubsystemParse, "expected one expression, got %d", len(exprs)).At(exprs[1].Loc)
}

// ReadDom reads the DOM of src without building the AST. It is useful for
// tools that treat source as data.
func ReadDom(src string, opts ...ParseOption) ([]*Dom, error) {
	options := ParseOptions{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&options)
	}
	r := &reader{lex: NewLexer(src, options.SourceName), maxDepth: options.MaxDepth}
	return r.readAll()
}
