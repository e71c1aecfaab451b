// Package types defines the core type system for gamescript.
//
// This package contains type definitions for:
//   - Program: compiled source, a list of top-level expressions
//   - Node: Abstract Syntax Tree nodes and their locations
//   - Pattern: destructuring targets for bind, parameters and match
//   - Error types: structured errors with codes and a frame trace
package types

// Program represents a compiled script.
//
// A Program can be evaluated multiple times by passing it to
// [evaluator.Evaluator.Eval]. It is immutable after parsing and safe for
// concurrent use by multiple goroutines, although a single Evaluator is not.
type Program struct {
	exprs  []*Node
	source string
	arena  *NodeArena
}

// NewProgram creates a new Program from its top-level expressions.
func NewProgram(exprs []*Node, source string) *Program {
	return &Program{
		exprs:  exprs,
		source: source,
	}
}

// WithArena attaches the allocator that owns the program's nodes.
func (p *Program) WithArena(a *NodeArena) *Program {
	p.arena = a
	return p
}

// Expressions returns the top-level expressions in source order.
func (p *Program) Expressions() []*Node {
	return p.exprs
}

// Source returns the original source code of the program.
func (p *Program) Source() string {
	return p.source
}

// NodeCount returns the number of AST nodes allocated for the program, or
// zero when the program was built by hand.
func (p *Program) NodeCount() int {
	if p.arena == nil {
		return 0
	}
	return p.arena.Len()
}

// String returns the program source.
func (p *Program) String() string {
	return p.source
}
