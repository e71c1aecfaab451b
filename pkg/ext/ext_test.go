package ext_test

import (
	"testing"

	gamescript "github.com/k-stachowiak/game-script-sub000"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extnumeric"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

func eval(t *testing.T, src string, opts ...gamescript.EvalOption) functions.Value {
	t.Helper()
	res, err := gamescript.Eval(src, opts...)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", src, err)
	}
	return res.Value
}

type evalCase struct {
	src  string
	want functions.Value
}

func runCases(t *testing.T, tests []evalCase, opts ...gamescript.EvalOption) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := eval(t, tt.src, opts...)
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func ints(ns ...int64) functions.Value {
	items := make([]functions.Value, len(ns))
	for i, n := range ns {
		items[i] = functions.Int(n)
	}
	return functions.Array(items...)
}

// ── WithAll ────────────────────────────────────────────────────────────────

func TestWithAll_StringFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{`(upper "abc")`, functions.String("ABC")},
		{`(lower "AbC")`, functions.String("abc")},
		{`(trim "  hi  ")`, functions.String("hi")},
		{`(split "a,b,c" ",")`, functions.Strings("a", "b", "c")},
		{`(join ["ab" "c"] "-")`, functions.String("ab-c")},
		{`(contains? "hello" "ell")`, functions.Bool(true)},
		{`(starts-with? "hello" "he")`, functions.Bool(true)},
		{`(ends-with? "hello" "he")`, functions.Bool(false)},
		{`(index-of "héllo" "l")`, functions.Int(2)},
		{`(index-of "abc" "z")`, functions.Int(-1)},
		{`(capitalize "hELLO")`, functions.String("Hello")},
		{`(snake-case "helloWorld")`, functions.String("hello_world")},
		{`(repeat "ab" 3)`, functions.String("ababab")},
		{`(words " a  b ")`, functions.Strings("a", "b")},
		{`(template "{{who}} has {{hp}} hp" [{"who" "Orc"} {"hp" "12"}])`, functions.String("Orc has 12 hp")},
		{`(upper (format 12))`, functions.String("12")},
	}, ext.WithAll())
}

func TestWithAll_NumericFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{"(min 3 7)", functions.Int(3)},
		{"(max 3.5 1.5)", functions.Real(3.5)},
		{"(clamp 150 0 100)", functions.Int(100)},
		{"(clamp -5 0 100)", functions.Int(0)},
		{"(clamp 50 0 100)", functions.Int(50)},
		{"(sign -5)", functions.Int(-1)},
		{"(sign 0.0)", functions.Real(0)},
		{"(pow 2 10)", functions.Int(1024)},
		{"(pow 2.0 0.5)", functions.Real(1.4142135623730951)},
		{"(hypot 3.0 4.0)", functions.Real(5)},
		{"(trunc -3.7)", functions.Real(-3)},
		{"(lerp 0.0 10.0 0.25)", functions.Real(2.5)},
		{"(> (pi) 3.14)", functions.Bool(true)},
		{"((clamp 5) 0 3)", functions.Int(3)},
	}, ext.WithAll())
}

func TestWithAll_ArrayFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{"(first [1 2 3])", functions.Int(1)},
		{"(last [1 2 3])", functions.Int(3)},
		{"(take [1 2 3 4 5] 3)", ints(1, 2, 3)},
		{"(take [1 2] 10)", ints(1, 2)},
		{"(skip [1 2 3 4 5] 2)", ints(3, 4, 5)},
		{"(flatten [[1] [] [2 3]])", ints(1, 2, 3)},
		{"(chunk [1 2 3 4 5] 2)", functions.Array(ints(1, 2), ints(3, 4), ints(5))},
		{"(window [1 2 3 4] 2 1)", functions.Array(ints(1, 2), ints(2, 3), ints(3, 4))},
		{"(zip [1 2 3] \"ab\")", functions.Array(
			functions.Tuple(functions.Int(1), functions.Char('a')),
			functions.Tuple(functions.Int(2), functions.Char('b')),
		)},
		{"(range 0 5 2)", ints(0, 2, 4)},
		{"(range 3 0 -1)", ints(3, 2, 1)},
		{"(distinct [1 2 1 3 2])", ints(1, 2, 3)},
		{"(has? [1 2 3] 2)", functions.Bool(true)},
		{`(first "xyz")`, functions.Char('x')},
	}, ext.WithAll())
}

func TestWithAll_TypeFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{"(int? 1)", functions.Bool(true)},
		{"(int? 1.0)", functions.Bool(false)},
		{"(real? 1.0)", functions.Bool(true)},
		{"(number? 'a')", functions.Bool(false)},
		{`(string? "s")`, functions.Bool(true)},
		{"(string? [])", functions.Bool(true)},
		{"(array? [1])", functions.Bool(true)},
		{"(tuple? {1 2})", functions.Bool(true)},
		{"(unit? ())", functions.Bool(true)},
		{"(function? +)", functions.Bool(true)},
		{"(bind x 1) (reference? (ptr x))", functions.Bool(true)},
		{"(empty-value? {})", functions.Bool(true)},
		{"(default () 5)", functions.Int(5)},
		{"(default 1 5)", functions.Int(1)},
		{"(identity [1])", ints(1)},
	}, ext.WithAll())
}

// ── By category ────────────────────────────────────────────────────────────

func TestCategoryOptions(t *testing.T) {
	eval(t, `(upper "x")`, ext.WithString())
	eval(t, "(min 1 2)", ext.WithNumeric())
	eval(t, "(first [1])", ext.WithArray())
	eval(t, "(int? 1)", ext.WithTypes())

	_, err := gamescript.Eval("(min 1 2)", ext.WithString())
	if types.CodeOf(err) != types.ErrUnboundSymbol {
		t.Errorf("err = %v, want %s", err, types.ErrUnboundSymbol)
	}
}

func TestSingleFunction(t *testing.T) {
	got := eval(t, "(clamp 9 1 5)", gamescript.WithForeignFunctions(extnumeric.Clamp()))
	if !got.Equal(functions.Int(5)) {
		t.Errorf("got %v", got)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		src  string
		code types.ErrorCode
	}{
		{"(min 1 2.0)", types.ErrForeignFailure},
		{"(clamp 1 5 0)", types.ErrForeignFailure},
		{"(pow 2 -1)", types.ErrForeignFailure},
		{"(pow 10 40)", types.ErrForeignFailure},
		{"(first [])", types.ErrForeignFailure},
		{"(range 0 1 0)", types.ErrForeignFailure},
		{`(repeat "a" -1)`, types.ErrForeignFailure},
		{`(join [1 2] ",")`, types.ErrForeignFailure},
		{"(identity +)", types.ErrUnsupportedForeign},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := gamescript.Eval(tt.src, ext.WithAll())
			if code := types.CodeOf(err); code != tt.code {
				t.Errorf("code = %s, want %s (%v)", code, tt.code, err)
			}
		})
	}
}

func TestAllNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range ext.All() {
		if err := def.Validate(); err != nil {
			t.Errorf("invalid definition: %v", err)
		}
		if seen[def.Name] {
			t.Errorf("duplicate name %q", def.Name)
		}
		seen[def.Name] = true
	}
}
