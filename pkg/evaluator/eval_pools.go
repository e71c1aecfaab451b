package evaluator

import (
	"sync"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
)

// scopePool recycles scope frames. Blocks, loop iterations, match arms and
// calls each open a frame, so frame allocation sits on the hot path.
//
// THREAD-SAFETY AUDIT: safe.
//   - sync.Pool is designed for concurrent use.
//   - A frame is owned by exactly one construct between acquireScope and
//     releaseScope; frames are never shared.
//   - releaseScope clears the frame before putting it back.
var scopePool = sync.Pool{
	New: func() interface{} { return &Scope{} },
}

func acquireScope(parent *Scope) *Scope {
	s := scopePool.Get().(*Scope)
	s.parent = parent
	return s
}

func releaseScope(s *Scope) {
	s.reset()
	scopePool.Put(s)
}

// withScope runs fn with a fresh frame nested in parent and releases the
// frame on every exit path.
func withScope(parent *Scope, fn func(*Scope) error) error {
	s := acquireScope(parent)
	defer releaseScope(s)
	return fn(s)
}

// handlesPool recycles argument handle slices used by the call protocol.
var handlesPool = sync.Pool{
	New: func() interface{} {
		s := make([]arena.Handle, 0, 4)
		return &s
	},
}

func acquireHandles() *[]arena.Handle {
	p := handlesPool.Get().(*[]arena.Handle)
	*p = (*p)[:0]
	return p
}

func releaseHandles(p *[]arena.Handle) {
	if cap(*p) > 64 {
		return
	}
	handlesPool.Put(p)
}
