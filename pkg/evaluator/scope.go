package evaluator

import (
	"fmt"
	"sort"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// Binding is a scope entry: the handle of the bound value and where the name
// was bound.
type Binding struct {
	Handle arena.Handle
	Loc    types.Location
}

// Scope is one frame of the lexical scope chain. Frames are linked to their
// parent up to a single global frame.
//
// Frames other than the global one are short-lived: they are created right
// before a block, loop iteration, match arm or function body and released
// right after it (see withScope). A frame never outlives its construct, and
// closures copy what they need into the function value instead of keeping a
// pointer to the frame.
type Scope struct {
	parent *Scope
	global bool
	names  map[string]Binding
}

// NewGlobalScope creates a root frame.
func NewGlobalScope() *Scope {
	return &Scope{global: true, names: make(map[string]Binding)}
}

// NewScope creates a frame nested in parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

// Parent returns the enclosing frame, or nil for the global frame.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsGlobal reports whether s is the root frame.
func (s *Scope) IsGlobal() bool {
	return s.global
}

// Insert binds name in this frame.
func (s *Scope) Insert(name string, h arena.Handle, loc types.Location) {
	if s.names == nil {
		s.names = make(map[string]Binding)
	}
	s.names[name] = Binding{Handle: h, Loc: loc}
}

// Has reports whether name is bound in this frame, ignoring parents.
func (s *Scope) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Remove unbinds name from this frame.
func (s *Scope) Remove(name string) {
	delete(s.names, name)
}

// Find walks the chain up to and including the global frame.
func (s *Scope) Find(name string) (Binding, bool) {
	for f := s; f != nil; f = f.parent {
		if b, ok := f.names[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// FindExcludingGlobal walks the chain but stops below the global frame. It
// decides whether a free name of a function body must be captured.
func (s *Scope) FindExcludingGlobal(name string) (Binding, bool) {
	for f := s; f != nil && !f.global; f = f.parent {
		if b, ok := f.names[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Len returns the number of names bound in this frame.
func (s *Scope) Len() int {
	return len(s.names)
}

// Names returns the names bound in this frame, sorted.
func (s *Scope) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Depth returns the number of frames above the global one.
func (s *Scope) Depth() int {
	d := 0
	for f := s; f != nil && !f.global; f = f.parent {
		d++
	}
	return d
}

// String returns a string representation of the frame.
func (s *Scope) String() string {
	return fmt.Sprintf("Scope{depth=%d, bindings=%d, global=%t}", s.Depth(), len(s.names), s.global)
}

// reset clears the frame for reuse, keeping the map allocation.
func (s *Scope) reset() {
	for k := range s.names {
		delete(s.names, k)
	}
	s.parent = nil
	s.global = false
}
