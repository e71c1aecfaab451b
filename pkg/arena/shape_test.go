package arena_test

import (
	"errors"
	"math"
	"testing"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
)

func pushIntArray(a *arena.Arena, vs ...int64) arena.Handle {
	b := a.BeginCompound(arena.TagArray)
	for _, v := range vs {
		a.PushInt(v)
	}
	return b.Commit()
}

func TestSameShape(t *testing.T) {
	a := arena.New(0)
	i1 := a.PushInt(1)
	i2 := a.PushInt(2)
	r := a.PushReal(1)
	arr12 := pushIntArray(a, 1, 2)
	arr3 := pushIntArray(a, 3)
	empty := pushIntArray(a)
	str := a.PushString("ab")

	tup := a.BeginCompound(arena.TagTuple)
	a.PushInt(1)
	a.PushChar('x')
	t1 := tup.Commit()

	tup = a.BeginCompound(arena.TagTuple)
	a.PushInt(7)
	a.PushChar('y')
	t2 := tup.Commit()

	tup = a.BeginCompound(arena.TagTuple)
	a.PushInt(7)
	t3 := tup.Commit()

	tests := []struct {
		name string
		x, y arena.Handle
		want bool
	}{
		{"ints", i1, i2, true},
		{"int vs real", i1, r, false},
		{"int arrays of different length", arr12, arr3, true},
		{"empty array matches", empty, str, true},
		{"int array vs string", arr12, str, false},
		{"tuples", t1, t2, true},
		{"tuples of different length", t1, t3, false},
		{"array vs tuple", arr3, t3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.SameShape(tt.x, tt.y); got != tt.want {
				t.Fatalf("SameShape = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHomogeneous(t *testing.T) {
	a := arena.New(0)

	b := a.BeginCompound(arena.TagArray)
	a.PushInt(1)
	a.PushInt(2)
	ok := b.Commit()
	if !a.Homogeneous(ok) {
		t.Fatal("expected int array to be homogeneous")
	}

	b = a.BeginCompound(arena.TagArray)
	a.PushInt(1)
	a.PushReal(2)
	bad := b.Commit()
	if a.Homogeneous(bad) {
		t.Fatal("expected mixed array to be heterogeneous")
	}

	// [[] [1] ['a']] is rejected although [] matches each element.
	b = a.BeginCompound(arena.TagArray)
	pushIntArray(a)
	pushIntArray(a, 1)
	a.PushString("a")
	nested := b.Commit()
	if a.Homogeneous(nested) {
		t.Fatal("expected nested mixed array to be heterogeneous")
	}
}

func TestEqual(t *testing.T) {
	a := arena.New(0)
	x := a.PushString("hello")
	y := a.PushString("hello")
	z := a.PushString("help")
	if !a.Equal(x, y) {
		t.Fatal("expected equal strings")
	}
	if a.Equal(x, z) {
		t.Fatal("expected different strings")
	}
	if !a.Equal(a.PushReal(0), a.PushReal(math.Copysign(0, -1))) {
		t.Fatal("expected reals to compare numerically")
	}
	if a.Equal(a.PushInt(1), a.PushReal(1)) {
		t.Fatal("expected int and real to differ")
	}
}

func TestOverwrite(t *testing.T) {
	a := arena.New(0)
	dst := a.PushInt(1)
	src := a.PushInt(2)
	if err := a.Overwrite(dst, src); err != nil {
		t.Fatal(err)
	}
	if a.PeekInt(dst) != 2 {
		t.Fatalf("expected 2, got %d", a.PeekInt(dst))
	}

	wrong := a.PushReal(3)
	err := a.Overwrite(dst, wrong)
	if !errors.Is(err, arena.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
	if a.PeekInt(dst) != 2 {
		t.Fatal("expected referent untouched after failed overwrite")
	}

	long := a.PushString("abc")
	short := a.PushString("ab")
	if err := a.Overwrite(long, short); !errors.Is(err, arena.ErrShapeMismatch) {
		t.Fatalf("expected size mismatch to be rejected, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	a := arena.New(0)
	b := a.BeginCompound(arena.TagTuple)
	a.PushInt(1)
	a.PushReal(2)
	a.PushString("s")
	a.PushChar('c')
	a.PushBool(true)
	a.PushUnit()
	pushIntArray(a, 4, 5)
	h := b.Commit()

	want := `{1 2.0 "s" 'c' true () [4 5]}`
	if got := a.Format(h); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestFunctionShapeIgnoresArity(t *testing.T) {
	a := arena.New(0)
	arr := a.BeginCompound(arena.TagArray)
	one := a.BeginFunction(1, arena.FuncNative, 0).Commit()
	three := a.BeginFunction(3, arena.FuncNative, 1).Commit()
	h := arr.Commit()

	if !a.SameShape(one, three) {
		t.Fatal("functions are expected to match on tag alone")
	}
	if !a.Homogeneous(h) {
		t.Fatal("expected an array of functions to be homogeneous")
	}
}

func TestEqualReferencesCompareTargets(t *testing.T) {
	a := arena.New(0)
	target := a.PushInt(1)
	x := a.PushReference(target)
	tmp := a.PushUnit()
	a.Truncate(tmp)
	y := a.PushReference(target)

	if !a.Equal(x, y) {
		t.Fatal("references taken in different generations must compare by target")
	}
	if a.Equal(x, a.PushReference(x)) {
		t.Fatal("expected references to different targets to differ")
	}
}
