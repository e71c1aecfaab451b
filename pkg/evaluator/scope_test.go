package evaluator_test

import (
	"testing"

	"github.com/k-stachowiak/game-script-sub000/pkg/evaluator"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

func TestScopeChain(t *testing.T) {
	global := evaluator.NewGlobalScope()
	global.Insert("g", 1, types.Location{})

	outer := evaluator.NewScope(global)
	outer.Insert("x", 10, types.Location{})
	inner := evaluator.NewScope(outer)
	inner.Insert("x", 20, types.Location{})

	if b, ok := inner.Find("x"); !ok || b.Handle != 20 {
		t.Errorf("inner x = %v, %v; want shadowing binding 20", b.Handle, ok)
	}
	if b, ok := inner.Find("g"); !ok || b.Handle != 1 {
		t.Errorf("inner g = %v, %v; want global binding", b.Handle, ok)
	}
	if _, ok := inner.FindExcludingGlobal("g"); ok {
		t.Error("FindExcludingGlobal reached the global frame")
	}
	if inner.Has("g") || !global.Has("g") {
		t.Error("Has must only look at its own frame")
	}
	if inner.Depth() != 2 || global.Depth() != 0 {
		t.Errorf("depths = %d/%d, want 2/0", inner.Depth(), global.Depth())
	}
	if !global.IsGlobal() || outer.IsGlobal() {
		t.Error("IsGlobal mismatch")
	}

	inner.Remove("x")
	if b, _ := inner.Find("x"); b.Handle != 10 {
		t.Errorf("after Remove, x = %d, want outer binding 10", b.Handle)
	}
}

func TestScopeNames(t *testing.T) {
	s := evaluator.NewScope(nil)
	for _, n := range []string{"b", "c", "a"} {
		s.Insert(n, 0, types.Location{})
	}
	got := s.Names()
	if len(got) != 3 || got[0] != "a" || got[2] != "c" || s.Len() != 3 {
		t.Errorf("Names = %v", got)
	}
}
