package evaluator_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/evaluator"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
	"github.com/k-stachowiak/game-script-sub000/pkg/parser"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// Helper functions

func run(t *testing.T, ev *evaluator.Evaluator, src string) *evaluator.Result {
	t.Helper()

	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", src, err)
	}
	res, err := ev.Eval(context.Background(), prog)
	if err != nil {
		t.Fatalf("Failed to eval %q: %v", src, err)
	}
	return res
}

func eval(t *testing.T, src string, opts ...evaluator.EvalOption) functions.Value {
	t.Helper()
	return run(t, evaluator.New(opts...), src).Value
}

func evalExpectError(t *testing.T, src string, code types.ErrorCode, opts ...evaluator.EvalOption) error {
	t.Helper()

	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", src, err)
	}
	_, err = evaluator.New(opts...).Eval(context.Background(), prog)
	if err == nil {
		t.Fatalf("eval %q succeeded, want error %s", src, code)
	}
	if got := types.CodeOf(err); got != code {
		t.Fatalf("eval %q: code = %s, want %s\n%v", src, got, code, err)
	}
	return err
}

func compareValue(t *testing.T, got, want functions.Value) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// Literal tests

func TestEvalLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want functions.Value
	}{
		{"int", "42", functions.Int(42)},
		{"real", "2.5", functions.Real(2.5)},
		{"char", "'z'", functions.Char('z')},
		{"bool", "true", functions.Bool(true)},
		{"unit", "()", functions.Unit()},
		{"string", `"hello"`, functions.String("hello")},
		{"empty array", "[]", functions.Array()},
		{"array", "[1 2 3]", functions.Array(functions.Int(1), functions.Int(2), functions.Int(3))},
		{"tuple", `{1 'a' "b"}`, functions.Tuple(functions.Int(1), functions.Char('a'), functions.String("b"))},
		{"nested", "[[1] [] [2 3]]", functions.Array(
			functions.Array(functions.Int(1)),
			functions.Array(),
			functions.Array(functions.Int(2), functions.Int(3)),
		)},
		{"empty program", "", functions.Unit()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compareValue(t, eval(t, tt.src), tt.want)
		})
	}
}

func TestEvalResultText(t *testing.T) {
	res := run(t, evaluator.New(), `{[1 2] 3.0 "s" ()}`)
	if want := `{[1 2] 3.0 "s" ()}`; res.String() != want {
		t.Errorf("text = %s, want %s", res.String(), want)
	}
}

// Scenarios

func TestEvalGcdLcm(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, `
		(bind gcd (func (x y) (if (= y 0) x (gcd y (% x y)))))
		(bind lcm (func (x y) (* (/ x (gcd x y)) y)))
	`)
	compareValue(t, run(t, ev, "(gcd 54 24)").Value, functions.Int(6))
	compareValue(t, run(t, ev, "(lcm 21 6)").Value, functions.Int(42))
}

func TestEvalClosure(t *testing.T) {
	got := eval(t, `
		(bind make_doubler (func () (do (bind lhs 2) (func (rhs) (* lhs rhs)))))
		((make_doubler) 4)
	`)
	compareValue(t, got, functions.Int(8))
}

func TestEvalClosureCapturesByCopy(t *testing.T) {
	got := eval(t, `
		(bind adders (func (n) (func (x) (+ x n))))
		(bind add5 (adders 5))
		(bind add7 (adders 7))
		{(add5 1) (add7 1)}
	`)
	compareValue(t, got, functions.Tuple(functions.Int(6), functions.Int(8)))
}

func TestEvalCurrying(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, "(bind add3 (func (x y z) (+ x (+ y z))))")

	for _, src := range []string{
		"(((add3 1) 2) 3)",
		"((add3 1 2) 3)",
		"((add3 1) 2 3)",
		"(add3 1 2 3)",
	} {
		t.Run(src, func(t *testing.T) {
			compareValue(t, run(t, ev, src).Value, functions.Int(6))
		})
	}

	partial := run(t, ev, "(add3 1)").Value
	if partial.Kind != functions.KindFunction || partial.Int != 2 {
		t.Errorf("partial application = %v, want a function of remaining arity 2", partial)
	}
}

func TestEvalCurryingNatives(t *testing.T) {
	compareValue(t, eval(t, "((+ 1) 2)"), functions.Int(3))
	compareValue(t, eval(t, "(map (* 2) [1 2 3])"),
		functions.Array(functions.Int(2), functions.Int(4), functions.Int(6)))
}

func TestEvalMatch(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want functions.Value
	}{
		{"fallthrough", "(match [1 2] {a b} 0 [x y] (+ x y))", functions.Int(3)},
		{"literal", `(match 0 0 "zero" n "other")`, functions.String("zero")},
		{"binding", "(match 5 0 0 n (* n 2))", functions.Int(10)},
		{"wildcard", "(match {1 2} {_ b} b)", functions.Int(2)},
		{"length mismatch", "(match [1 2 3] [a b] 0 [a b c] c)", functions.Int(3)},
		{"string literal", `(match "hi" "ho" 1 "hi" 2)`, functions.Int(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compareValue(t, eval(t, tt.src), tt.want)
		})
	}

	evalExpectError(t, "(match 3 0 'a' 1 'b')", types.ErrNoMatch)
}

func TestEvalBindDestructuring(t *testing.T) {
	compareValue(t, eval(t, "(bind [p q] [{1 2} {3 4}]) (match q {x y} (+ x y))"), functions.Int(7))
	compareValue(t, eval(t, "(do (bind {a [b c]} {1 [2 3]}) (+ a (+ b c)))"), functions.Int(6))
	compareValue(t, eval(t, "((func ([a b]) (+ a b)) [3 4])"), functions.Int(7))
	evalExpectError(t, "(bind {a b} [1 2])", types.ErrPatternMismatch)
	evalExpectError(t, "((func ({a b}) a) [1 2])", types.ErrPatternMismatch)
}

func TestEvalControlFlow(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want functions.Value
	}{
		{"if true", "(if true 1 2)", functions.Int(1)},
		{"if false", "(if (< 3 2) 1 2)", functions.Int(2)},
		{"and", "(and true (< 1 2))", functions.Bool(true)},
		{"and short circuit", "(and false (error \"unreached\"))", functions.Bool(false)},
		{"or short circuit", "(or true (error \"unreached\"))", functions.Bool(true)},
		{"empty and", "(and)", functions.Bool(true)},
		{"empty or", "(or)", functions.Bool(false)},
		{"empty do", "(do)", functions.Unit()},
		{"do keeps last", "(do (bind a 1) (bind b 2) (+ a b))", functions.Int(3)},
		{"while never runs", "(while false 1)", functions.Unit()},
		{"while keeps last body", `
			(bind n 0)
			(bind p (ptr n))
			(while (< (peek p) 3) (do (poke p (+ (peek p) 1)) (* 10 (peek p))))`, functions.Int(30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compareValue(t, eval(t, tt.src), tt.want)
		})
	}
}

func TestEvalWhileCounter(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, `
		(bind counter 0)
		(bind p (ptr counter))
		(while (< (peek p) 5) (poke p (+ (peek p) 1)))
	`)
	compareValue(t, run(t, ev, "counter").Value, functions.Int(5))
}

// References

func TestEvalReferenceMutation(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, "(bind x 10) (bind r (ptr x))")
	run(t, ev, "(poke r 42)")
	compareValue(t, run(t, ev, "(peek r)").Value, functions.Int(42))

	prog, _ := parser.Parse("(poke r 1.5)")
	_, err := ev.Eval(context.Background(), prog)
	if types.CodeOf(err) != types.ErrShapeMismatch {
		t.Fatalf("poke with a real: err = %v, want %s", err, types.ErrShapeMismatch)
	}
	compareValue(t, run(t, ev, "x").Value, functions.Int(42))
}

func TestEvalReferenceIteration(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, `
		(bind xs [1 2 3 4])
		(bind total 0)
		(bind tp (ptr total))
		(bind it (begin xs))
		(bind stop (end xs))
		(while (/= it stop)
			(do
				(poke tp (+ (peek tp) (peek it)))
				(inc it)))
	`)
	compareValue(t, run(t, ev, "total").Value, functions.Int(10))
	compareValue(t, run(t, ev, "(peek (succ (begin xs)))").Value, functions.Int(2))
}

func TestEvalReferenceErrors(t *testing.T) {
	evalExpectError(t, "(bind xs [1 2]) (peek (end xs))", types.ErrInvalidReference)
	evalExpectError(t, "(peek 5)", types.ErrTypeMismatch)
	evalExpectError(t, "(bind n 1) (begin n)", types.ErrTypeMismatch)
	evalExpectError(t, "(ptr nope)", types.ErrUnboundSymbol)
	evalExpectError(t, `(bind s "ab") (bind r (ptr s)) (poke r "abc")`, types.ErrShapeMismatch)
	evalExpectError(t, "(bind r (do (bind a 1) (ptr a))) (peek r)", types.ErrInvalidReference)
	evalExpectError(t, "(bind r (match [1 2] [a _] (ptr a))) (inc r)", types.ErrInvalidReference)
}

func TestEvalReferenceOutlivesReferent(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, `
		(bind mk (func () (do (bind a 1) (bind b 2) (ptr b))))
		(bind r (mk))
		(bind y 99)
	`)

	for _, src := range []string{"(peek r)", "(poke r 7)", "(succ r)"} {
		prog, err := parser.Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ev.Eval(context.Background(), prog); types.CodeOf(err) != types.ErrInvalidReference {
			t.Errorf("%s: err = %v, want %s", src, err, types.ErrInvalidReference)
		}
	}
	compareValue(t, run(t, ev, "y").Value, functions.Int(99))

	// References that stay within the block of their referent keep working.
	compareValue(t, run(t, ev, "(do (bind a 1) (bind p (ptr a)) (poke p 5) (peek p))").Value, functions.Int(5))
	compareValue(t, run(t, ev, "(bind g 3) ((func (q) (peek q)) (ptr g))").Value, functions.Int(3))
}

// Errors

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code types.ErrorCode
	}{
		{"unbound", "(+ nope 1)", types.ErrUnboundSymbol},
		{"unbound callee", "(nope 1)", types.ErrUnboundSymbol},
		{"rebind", "(do (bind x 1) (bind x 2))", types.ErrRebind},
		{"mixed arithmetic", "(+ 1 2.0)", types.ErrTypeMismatch},
		{"non-boolean if", "(if 1 2 3)", types.ErrNonBoolean},
		{"non-boolean while", "(while 0 1)", types.ErrNonBoolean},
		{"non-boolean and", "(and true 1)", types.ErrNonBoolean},
		{"heterogeneous", "[1 'a']", types.ErrHeterogeneousArray},
		{"nested heterogeneous", "[[1] ['a']]", types.ErrHeterogeneousArray},
		{"too many args", "((func (x) x) 1 2)", types.ErrArityMismatch},
		{"not callable", "(1 2)", types.ErrNotCallable},
		{"division by zero", "(/ 1 0)", types.ErrDivisionByZero},
		{"index range", "(at [1 2] 2)", types.ErrIndexRange},
		{"user error", `(error "boom")`, types.ErrUserError},
		{"assertion", `(assert (= 1 2) "math")`, types.ErrAssertion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalExpectError(t, tt.src, tt.code)
		})
	}
}

func TestEvalNilInput(t *testing.T) {
	ev := evaluator.New()
	if _, err := ev.Eval(context.Background(), nil); types.CodeOf(err) != types.ErrInternal {
		t.Errorf("Eval(nil) err = %v, want %s", err, types.ErrInternal)
	}
	if _, err := ev.Evaluate(context.Background(), nil, nil); types.CodeOf(err) != types.ErrInternal {
		t.Errorf("Evaluate(nil) err = %v, want %s", err, types.ErrInternal)
	}
}

func TestEvalErrorTrace(t *testing.T) {
	err := evalExpectError(t, `
		(bind f (func (x) (do (+ x missing))))
		(f 1)
	`, types.ErrUnboundSymbol)

	var te *types.Error
	if !errors.As(err, &te) {
		t.Fatalf("error is %T, want *types.Error", err)
	}
	if len(te.Frames) < 3 {
		t.Errorf("got %d frames, want at least 3:\n%v", len(te.Frames), err)
	}
	msg := err.Error()
	for _, part := range []string{"G0101", "missing", "call to f", "do block"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error text lacks %q:\n%s", part, msg)
		}
	}
}

func TestEvalFailureRestoresArena(t *testing.T) {
	ev := evaluator.New()
	before := ev.Arena().Top()
	for _, src := range []string{
		"[1 'a']",
		"[1 2 (+ 1 'x')]",
		"{1 (do (bind a 2) (error \"x\"))}",
		"(map (func (x) (/ 1 x)) [1 0])",
	} {
		prog, err := parser.Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ev.Eval(context.Background(), prog); err == nil {
			t.Fatalf("eval %q succeeded, want failure", src)
		}
		if got := ev.Arena().Top(); got != before {
			t.Errorf("after %q: top = %d, want %d", src, got, before)
		}
	}
}

func TestEvalNoImplicitPromotion(t *testing.T) {
	compareValue(t, eval(t, "(+ (real 1) 2.0)"), functions.Real(3))
	compareValue(t, eval(t, "(int 3.9)"), functions.Int(3))
	compareValue(t, eval(t, "(int 'A')"), functions.Int(65))
}

// Built-ins

func TestEvalBuiltins(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want functions.Value
	}{
		{"sub", "(- 10 4)", functions.Int(6)},
		{"mod", "(% 10 4)", functions.Int(2)},
		{"real div", "(/ 1.0 4.0)", functions.Real(0.25)},
		{"neg", "(neg 3)", functions.Int(-3)},
		{"abs", "(abs -2.5)", functions.Real(2.5)},
		{"sqrt", "(sqrt 9.0)", functions.Real(3)},
		{"floor", "(floor 2.7)", functions.Real(2)},
		{"ceil", "(ceil 2.1)", functions.Real(3)},
		{"eq arrays", "(= [1 2] [1 2])", functions.Bool(true)},
		{"neq types", "(/= 1 1.0)", functions.Bool(true)},
		{"char order", "(< 'a' 'b')", functions.Bool(true)},
		{"ge", "(>= 2 2)", functions.Bool(true)},
		{"not", "(not false)", functions.Bool(true)},
		{"xor", "(xor true true)", functions.Bool(false)},
		{"length", `(length "abc")`, functions.Int(3)},
		{"length tuple", "(length {1 'a'})", functions.Int(2)},
		{"at", "(at [5 6 7] 1)", functions.Int(6)},
		{"slice", "(slice [1 2 3 4] 1 3)", functions.Array(functions.Int(2), functions.Int(3))},
		{"cat strings", `(cat "ab" "cd")`, functions.String("abcd")},
		{"cat empty", "(cat [] [1])", functions.Array(functions.Int(1))},
		{"push-back", "(push-back [1] 2)", functions.Array(functions.Int(1), functions.Int(2))},
		{"reverse", `(reverse "abc")`, functions.String("cba")},
		{"empty?", "(empty? [])", functions.Bool(true)},
		{"map", "(map (func (x) (* x x)) [1 2 3])", functions.Array(functions.Int(1), functions.Int(4), functions.Int(9))},
		{"filter", "(filter (func (x) (> x 1)) [1 2 3])", functions.Array(functions.Int(2), functions.Int(3))},
		{"fold", "(fold + 0 [1 2 3 4])", functions.Int(10)},
		{"fold empty", "(fold + 7 [])", functions.Int(7)},
		{"format", "(format [1 2])", functions.String("[1 2]")},
		{"parse-int", `(parse-int " 42 ")`, functions.Int(42)},
		{"parse-real", `(parse-real "1.5")`, functions.Real(1.5)},
		{"type-of string", `(type-of "x")`, functions.String("string")},
		{"type-of func", "(type-of +)", functions.String("function")},
		{"char", "(char 97)", functions.Char('a')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compareValue(t, eval(t, tt.src), tt.want)
		})
	}

	evalExpectError(t, "(cat [1] ['a'])", types.ErrHeterogeneousArray)
	evalExpectError(t, `(parse-int "x")`, types.ErrParseValue)
	evalExpectError(t, "(filter (func (x) x) [1])", types.ErrNonBoolean)
}

func TestEvalPrint(t *testing.T) {
	var buf bytes.Buffer
	got := eval(t, `(do (print "a") (print 'b') (println [1 2]))`, evaluator.WithOutput(&buf))
	compareValue(t, got, functions.Unit())
	if buf.String() != "ab[1 2]\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestEvalRandSeeded(t *testing.T) {
	src := "[(rand-int 1 6) (rand-int 1 6) (rand-int 1 6)]"
	a := eval(t, src, evaluator.WithRandSeed(7))
	b := eval(t, src, evaluator.WithRandSeed(7))
	compareValue(t, a, b)
	for _, it := range a.Items {
		if it.Int < 1 || it.Int > 6 {
			t.Errorf("rand-int out of range: %d", it.Int)
		}
	}
	evalExpectError(t, "(rand-int 3 1)", types.ErrInvalidArgument)
}

// Evaluator lifecycle

func TestEvalBindingsPersist(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, "(bind base 100)")
	run(t, ev, "(bind f (func (x) (+ x base)))")
	compareValue(t, run(t, ev, "(f 1)").Value, functions.Int(101))

	v, ok := ev.Lookup("base")
	if !ok || !v.Equal(functions.Int(100)) {
		t.Errorf("Lookup(base) = %v, %v", v, ok)
	}

	ev.Reset()
	if _, ok := ev.Lookup("base"); ok {
		t.Error("Reset kept a user binding")
	}
	if _, ok := ev.Lookup("+"); !ok {
		t.Error("Reset dropped the built-ins")
	}
}

func TestEvalResultHandleGoesStale(t *testing.T) {
	ev := evaluator.New()
	res := run(t, ev, "[1 2 3]")
	if _, err := res.Handle(); err != nil {
		t.Fatalf("fresh result: %v", err)
	}
	run(t, ev, "(+ 1 2)")
	if _, err := res.Handle(); err == nil {
		t.Error("expected a stale handle after the next Eval")
	}
}

func TestEvalTopLevelReleasesTemporaries(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, "(bind x 1)")
	top := ev.Arena().Top()
	for i := 0; i < 10; i++ {
		run(t, ev, "[1 2 3] (+ x 1)")
	}
	run(t, ev, "x")
	// only the pending result of the last Eval remains above the bindings
	if got, max := ev.Arena().Top(), top+32; got > max {
		t.Errorf("arena grew to %d, want at most %d", got, max)
	}
}

func TestEvalSourceCaching(t *testing.T) {
	ev := evaluator.New(evaluator.WithCaching(true))
	for i := 0; i < 3; i++ {
		res, err := ev.EvalSource(context.Background(), "(* 6 7)")
		if err != nil {
			t.Fatal(err)
		}
		compareValue(t, res.Value, functions.Int(42))
	}
	stats := ev.Cache().Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits and 1 miss", stats)
	}
}

// Limits

func TestEvalMaxDepth(t *testing.T) {
	evalExpectError(t, "(bind f (func (x) (f x))) (f 1)", types.ErrMaxDepth, evaluator.WithMaxDepth(200))
}

func TestEvalMaxSteps(t *testing.T) {
	evalExpectError(t, "(while true ())", types.ErrStepLimit, evaluator.WithMaxSteps(1000))
}

func TestEvalCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prog, _ := parser.Parse("(+ 1 2)")
	_, err := evaluator.New().Eval(ctx, prog)
	if types.CodeOf(err) != types.ErrCancelled {
		t.Fatalf("err = %v, want %s", err, types.ErrCancelled)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("cancellation error does not wrap context.Canceled")
	}
}

// Hooks

func TestEvalTraceHooks(t *testing.T) {
	var enters, exits, failures int
	hooks := evaluator.TraceHooks{
		Enter: func(*types.Node, int) { enters++ },
		Exit: func(_ *types.Node, a *arena.Arena, h arena.Handle, ok bool, _ int) {
			exits++
			if !ok {
				failures++
				return
			}
			if !a.Valid(h) {
				t.Errorf("exit hook got invalid handle %d", h)
			}
		},
	}

	eval(t, "(+ 1 (* 2 3))", evaluator.WithTraceHooks(hooks))
	// call, 1, call, 2, 3
	if enters != 5 || exits != 5 || failures != 0 {
		t.Errorf("enters=%d exits=%d failures=%d, want 5 5 0", enters, exits, failures)
	}

	enters, exits, failures = 0, 0, 0
	evalExpectError(t, "(+ 1 nope)", types.ErrUnboundSymbol, evaluator.WithTraceHooks(hooks))
	if enters != exits || failures != 2 {
		t.Errorf("enters=%d exits=%d failures=%d, want balanced with 2 failures", enters, exits, failures)
	}
}

func TestEvalIndentTracer(t *testing.T) {
	var buf bytes.Buffer
	eval(t, "(- 5 2)", evaluator.WithTraceHooks(evaluator.NewIndentTracer(&buf)))
	out := buf.String()
	for _, want := range []string{"> call", "  > int", "  < int = 5", "< call = 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace lacks %q:\n%s", want, out)
		}
	}
}

// Foreign functions

func TestEvalForeignFunctions(t *testing.T) {
	greet := functions.Unary("greet", func(_ context.Context, x functions.Value) (functions.Value, error) {
		return functions.String("Hello, " + x.Str + "!"), nil
	})
	clamp := functions.ForeignFunctionDef{
		Name:  "clamp",
		Arity: 3,
		Fn: func(_ context.Context, args ...functions.Value) (functions.Value, error) {
			v, lo, hi := args[0].Int, args[1].Int, args[2].Int
			if v < lo {
				v = lo
			}
			if v > hi {
				v = hi
			}
			return functions.Int(v), nil
		},
	}
	ev := evaluator.New(evaluator.WithForeignFunctions(greet, clamp))

	compareValue(t, run(t, ev, `(greet "gamer")`).Value, functions.String("Hello, gamer!"))
	compareValue(t, run(t, ev, "(clamp 15 0 10)").Value, functions.Int(10))
	compareValue(t, run(t, ev, "(map (func (x) (clamp x 0 10)) [-5 5 50])").Value,
		functions.Array(functions.Int(0), functions.Int(5), functions.Int(10)))
	compareValue(t, run(t, ev, "(((clamp -1) 0) 3)").Value, functions.Int(0))
}

func TestEvalForeignValues(t *testing.T) {
	var seen []functions.Value
	record := functions.ForeignFunctionDef{
		Name:  "record",
		Arity: 1,
		Fn: func(_ context.Context, args ...functions.Value) (functions.Value, error) {
			seen = append(seen, args[0])
			return functions.Tuple(functions.Bool(true), functions.Strings("a", "b")), nil
		},
	}
	ev := evaluator.New(evaluator.WithForeignFunctions(record))
	got := run(t, ev, `(record {1 2.5 'c' "str" [] ()})`).Value
	compareValue(t, got, functions.Tuple(functions.Bool(true), functions.Strings("a", "b")))

	want := functions.Tuple(functions.Int(1), functions.Real(2.5), functions.Char('c'),
		functions.String("str"), functions.Array(), functions.Unit())
	if len(seen) != 1 || !seen[0].Equal(want) {
		t.Errorf("foreign function received %v, want %v", seen, want)
	}

	run(t, ev, "(record +)")
	if fn := seen[1]; fn.Kind != functions.KindFunction || fn.Int != 2 {
		t.Errorf("function argument = %v, want an opaque function of arity 2", fn)
	}
}

func TestEvalForeignErrors(t *testing.T) {
	boom := errors.New("boom")
	defs := evaluator.WithForeignFunctions(
		functions.Unary("fail", func(context.Context, functions.Value) (functions.Value, error) {
			return functions.Value{}, boom
		}),
		functions.Unary("mixed", func(context.Context, functions.Value) (functions.Value, error) {
			return functions.Array(functions.Int(1), functions.Char('x')), nil
		}),
		functions.Unary("leak", func(context.Context, functions.Value) (functions.Value, error) {
			return functions.Value{Kind: functions.KindFunction, Int: 1}, nil
		}),
	)

	err := evalExpectError(t, "(fail 1)", types.ErrForeignFailure, defs)
	if !errors.Is(err, boom) {
		t.Errorf("error does not wrap the host error: %v", err)
	}
	evalExpectError(t, "(mixed 1)", types.ErrHeterogeneousArray, defs)
	evalExpectError(t, "(leak 1)", types.ErrUnsupportedForeign, defs)
}

func TestEvalForeignInvalidDefinitionSkipped(t *testing.T) {
	ev := evaluator.New(evaluator.WithForeignFunction("bad name", 1, nil))
	if _, ok := ev.Lookup("bad name"); ok {
		t.Error("invalid foreign function was installed")
	}
}

// Host calls

func TestCall(t *testing.T) {
	ev := evaluator.New()
	run(t, ev, "(bind area (func ({w h}) (* w h)))")
	run(t, ev, "(bind add (func (x y) (+ x y)))")

	res, err := ev.Call(context.Background(), "area", functions.Tuple(functions.Int(3), functions.Int(4)))
	if err != nil {
		t.Fatal(err)
	}
	compareValue(t, res.Value, functions.Int(12))

	res, err = ev.Call(context.Background(), "add", functions.Int(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.Kind != functions.KindFunction {
		t.Errorf("partial host call = %v, want a function", res.Value)
	}

	top := ev.Arena().Top()
	if _, err := ev.Call(context.Background(), "add", functions.Int(1), functions.Real(2)); types.CodeOf(err) != types.ErrTypeMismatch {
		t.Errorf("err = %v, want %s", err, types.ErrTypeMismatch)
	}
	if _, err := ev.Call(context.Background(), "missing"); types.CodeOf(err) != types.ErrUnboundSymbol {
		t.Errorf("err = %v, want %s", err, types.ErrUnboundSymbol)
	}
	if ev.Arena().Top() > top {
		t.Errorf("failed calls leaked %d bytes", ev.Arena().Top()-top)
	}
}

// Fuzz and benchmarks

func FuzzEval(f *testing.F) {
	seeds := []string{
		"(+ 1 2)",
		"(bind [a b] [1 2]) (* a b)",
		"(match {1 'x'} {n c} c)",
		"(fold + 0 (map (func (x) (* x x)) [1 2 3]))",
		"(bind x 1) (bind r (ptr x)) (poke r 2) x",
		"(peek (begin \"ab\"))",
		"[1 'a']",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		prog, err := parser.Parse(src)
		if err != nil {
			return
		}
		ev := evaluator.New(evaluator.WithMaxSteps(10000), evaluator.WithMaxDepth(200), evaluator.WithOutput(io.Discard))
		_, _ = ev.Eval(context.Background(), prog)
		next, _ := parser.Parse("(+ 1 2)")
		res, err := ev.Eval(context.Background(), next)
		if err != nil || !res.Value.Equal(functions.Int(3)) {
			t.Fatalf("evaluator unusable after %q: %v", src, err)
		}
	})
}

func BenchmarkEvalGcd(b *testing.B) {
	prog, err := parser.Parse(`
		(bind gcd (func (x y) (if (= y 0) x (gcd y (% x y)))))
		(gcd 1071 462)
	`)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev := evaluator.New()
		if _, err := ev.Eval(context.Background(), prog); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvalFold(b *testing.B) {
	ev := evaluator.New()
	prog, err := parser.Parse("(fold + 0 (map (func (x) (* x x)) [1 2 3 4 5 6 7 8 9 10]))")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ev.Eval(context.Background(), prog); err != nil {
			b.Fatal(err)
		}
	}
}
