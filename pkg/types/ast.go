package types

import "fmt"

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types.
const (
	// Literals
	NodeBool   NodeType = "bool"
	NodeChar   NodeType = "char"
	NodeInt    NodeType = "int"
	NodeReal   NodeType = "real"
	NodeString NodeType = "string"
	NodeUnit   NodeType = "unit"

	// Compound literals
	NodeArray NodeType = "array" // [...]
	NodeTuple NodeType = "tuple" // {...}

	// References and calls
	NodeSymbol NodeType = "symbol"
	NodeCall   NodeType = "call" // (f args...)
	NodeFunc   NodeType = "func" // (func (params...) body)

	// Special forms
	NodeDo    NodeType = "do"
	NodeBind  NodeType = "bind"
	NodeIf    NodeType = "if"
	NodeWhile NodeType = "while"
	NodeMatch NodeType = "match"
	NodeAnd   NodeType = "and"
	NodeOr    NodeType = "or"

	// Reference family
	NodePtr   NodeType = "ptr"
	NodePeek  NodeType = "peek"
	NodePoke  NodeType = "poke"
	NodeBegin NodeType = "begin"
	NodeEnd   NodeType = "end"
	NodeInc   NodeType = "inc"
	NodeSucc  NodeType = "succ"
)

// Location identifies a position in source text. It is only used to attach
// context to errors.
type Location struct {
	Source string
	Line   int
	Column int
}

// IsZero reports whether the location carries no information.
func (l Location) IsZero() bool {
	return l.Line == 0 && l.Column == 0 && l.Source == ""
}

func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	if l.Source == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// Node is a node of the abstract syntax tree consumed by the evaluator.
//
// Which fields are meaningful depends on Type:
//
//	literals        Bool, Char, Int, Real, Str
//	NodeSymbol      Name
//	NodeArray/Tuple Children
//	NodeCall        Callee, Children (arguments)
//	NodeFunc        Params, Body
//	NodeDo          Children
//	NodeBind        Pattern, Expr
//	NodeIf          Test, Then, Else
//	NodeWhile       Test, Body
//	NodeMatch       Expr, Arms
//	NodeAnd/Or      Children
//	NodePtr/Begin/End/Inc  Name
//	NodePeek/Succ   Expr
//	NodePoke        Expr (reference), Value
type Node struct {
	Type NodeType
	Loc  Location

	Name string
	Bool bool
	Char rune
	Int  int64
	Real float64
	Str  string

	Callee   *Node
	Children []*Node
	Expr     *Node
	Value    *Node
	Test     *Node
	Then     *Node
	Else     *Node
	Body     *Node
	Pattern  *Pattern
	Params   []*Pattern
	Arms     []MatchArm
}

// MatchArm is a single pattern/expression pair of a match form.
type MatchArm struct {
	Pattern *Pattern
	Expr    *Node
}

// NewNode creates a new AST node of the specified type.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewNode(nodeType NodeType, loc Location) *Node {
	return &Node{
		Type: nodeType,
		Loc:  loc,
	}
}

// IsLiteral reports whether the node is an atomic literal.
func (n *Node) IsLiteral() bool {
	switch n.Type {
	case NodeBool, NodeChar, NodeInt, NodeReal, NodeString, NodeUnit:
		return true
	}
	return false
}

// String returns a string representation of the node type.
func (n *Node) String() string {
	if n.Type == NodeSymbol {
		return string(n.Type) + " " + n.Name
	}
	return string(n.Type)
}

// PatternKind identifies the shape of a pattern.
type PatternKind uint8

const (
	PatternSymbol   PatternKind = iota // binds the whole value to a name
	PatternWildcard                    // _
	PatternArray                       // [p...]
	PatternTuple                       // {p...}
	PatternLiteral                     // atomic literal or string, matched by equality
)

func (k PatternKind) String() string {
	switch k {
	case PatternSymbol:
		return "symbol"
	case PatternWildcard:
		return "wildcard"
	case PatternArray:
		return "array"
	case PatternTuple:
		return "tuple"
	case PatternLiteral:
		return "literal"
	}
	return "unknown"
}

// Pattern is a destructuring target used by bind, function parameters and
// match arms.
type Pattern struct {
	Kind     PatternKind
	Loc      Location
	Name     string
	Children []*Pattern
	Literal  *Node
}

// Symbols returns every name bound by the pattern, in source order.
func (p *Pattern) Symbols() []string {
	var out []string
	p.collect(&out)
	return out
}

func (p *Pattern) collect(out *[]string) {
	switch p.Kind {
	case PatternSymbol:
		*out = append(*out, p.Name)
	case PatternArray, PatternTuple:
		for _, c := range p.Children {
			c.collect(out)
		}
	}
}

// arenaChunkSize is the number of Node values pre-allocated per arena chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for Node values.
//
// The arena MUST stay alive as long as any pointer returned by Alloc is
// reachable. Attaching the arena to the [Program] achieves this.
//
// NodeArena is NOT thread-safe. Each parser owns its own arena.
type NodeArena struct {
	chunks [][]Node
	pos    int
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]Node{make([]Node, arenaChunkSize)},
	}
}

// Alloc returns a pointer to a zero-valued Node inside the arena with Type
// and Loc set.
func (a *NodeArena) Alloc(nodeType NodeType, loc Location) *Node {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]Node, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Loc = loc
	return n
}

// Len returns the number of nodes handed out so far.
func (a *NodeArena) Len() int {
	return (len(a.chunks)-1)*arenaChunkSize + a.pos
}
