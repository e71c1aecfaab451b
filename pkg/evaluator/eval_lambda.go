package evaluator

import (
	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// evalFunc builds an AST-backed function value. Every free name of the body
// that resolves below the global frame is captured by copy; parameters and
// globals are not captured.
func (e *Evaluator) evalFunc(node *types.Node, scope *Scope) (arena.Handle, error) {
	impl := e.registerLambda(node)
	fb := e.arena.BeginFunction(len(node.Params), arena.FuncAST, impl)
	for _, name := range e.freeNames(node) {
		if b, ok := scope.FindExcludingGlobal(name); ok {
			fb.Capture(name, b.Handle)
		}
	}
	return fb.Commit(), nil
}

// registerLambda returns the stable implementation index of a function
// literal node.
func (e *Evaluator) registerLambda(node *types.Node) uint32 {
	if id, ok := e.lambdaIDs[node]; ok {
		return id
	}
	id := uint32(len(e.lambdas))
	e.lambdas = append(e.lambdas, node)
	e.lambdaIDs[node] = id
	return id
}

// freeNames returns the names referenced in the body of a function literal
// that are not its parameters, in order of first appearance. The result is
// memoized per node.
func (e *Evaluator) freeNames(fn *types.Node) []string {
	if names, ok := e.freeVars[fn]; ok {
		return names
	}
	c := &freeCollector{seen: make(map[string]bool)}
	c.function(fn, nil)
	e.freeVars[fn] = c.names
	return c.names
}

type freeCollector struct {
	seen  map[string]bool
	names []string
}

// function walks a function literal with the parameter names of every
// enclosing literal in bound.
func (c *freeCollector) function(fn *types.Node, bound map[string]bool) {
	inner := make(map[string]bool, len(bound)+len(fn.Params))
	for k := range bound {
		inner[k] = true
	}
	for _, p := range fn.Params {
		for _, name := range p.Symbols() {
			inner[name] = true
		}
	}
	c.node(fn.Body, inner)
}

func (c *freeCollector) ref(name string, bound map[string]bool) {
	if bound[name] || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.names = append(c.names, name)
}

func (c *freeCollector) node(n *types.Node, bound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type {
	case types.NodeSymbol, types.NodePtr, types.NodeBegin, types.NodeEnd, types.NodeInc:
		c.ref(n.Name, bound)
		return
	case types.NodeFunc:
		c.function(n, bound)
		return
	}
	c.node(n.Callee, bound)
	for _, child := range n.Children {
		c.node(child, bound)
	}
	c.node(n.Expr, bound)
	c.node(n.Value, bound)
	c.node(n.Test, bound)
	c.node(n.Then, bound)
	c.node(n.Else, bound)
	c.node(n.Body, bound)
	for _, arm := range n.Arms {
		c.node(arm.Expr, bound)
	}
}
