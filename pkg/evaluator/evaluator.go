// Package evaluator implements the gamescript tree-walking interpreter.
//
// The evaluator walks the AST produced by the parser and stores every value
// in a byte arena (see package arena). It provides:
//   - Lexical scoping with closure capture
//   - Function calls with currying, built-in natives and foreign host functions
//   - Special forms: do, bind, if, while, match, and, or
//   - Raw references: ptr, peek, poke, begin, end, inc, succ
//   - Rollback of partial arena writes on failure
//   - Timeout, cancellation, depth and step limits via context.Context
//
// # Example
//
//	ev := evaluator.New()
//	prog, _ := parser.Parse("(bind sq (func (x) (* x x))) (sq 7)")
//	res, err := ev.Eval(ctx, prog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Value) // 49
//
// # Concurrency
//
// An Evaluator owns its arena and global scope and is NOT safe for
// concurrent use. Create one Evaluator per goroutine.
package evaluator

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/k-stachowiak/game-script-sub000/pkg/arena"
	"github.com/k-stachowiak/game-script-sub000/pkg/cache"
	"github.com/k-stachowiak/game-script-sub000/pkg/functions"
	"github.com/k-stachowiak/game-script-sub000/pkg/parser"
	"github.com/k-stachowiak/game-script-sub000/pkg/types"
)

// Evaluator evaluates gamescript programs.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when Caching is enabled

	arena  *arena.Arena
	global *Scope
	rng    *rand.Rand

	// implementation tables referenced by function values
	natives   []*NativeDef
	foreign   []functions.ForeignFunctionDef
	lambdas   []*types.Node
	lambdaIDs map[*types.Node]uint32
	freeVars  map[*types.Node][]string

	// per-evaluation counters
	depth int
	steps int64

	// result of the previous Eval, released at the start of the next one
	pending    arena.Pin
	hasPending bool
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables caching of compiled programs in EvalSource.
	Caching bool
	// CacheSize sets the maximum number of cached programs.
	// Only used when Caching is true and no explicit Cache is provided.
	CacheSize int
	// Cache is a custom program cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// MaxDepth limits evaluation nesting depth.
	MaxDepth int
	// MaxSteps limits the number of evaluated nodes per Eval; 0 means no limit.
	MaxSteps int64
	// Timeout sets the evaluation timeout; 0 means no timeout.
	Timeout time.Duration
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// ForeignFunctions holds host functions bound in the global scope.
	ForeignFunctions []functions.ForeignFunctionDef
	// Trace receives entry and exit callbacks for every evaluated node.
	Trace TraceHooks
	// Output receives text written by print and println. Defaults to os.Stdout.
	Output io.Writer
	// RandSeed seeds rand-int and rand-real when RandSeeded is true.
	RandSeed   int64
	RandSeeded bool
	// ArenaCapacity is the initial arena capacity in bytes.
	ArenaCapacity int
}

// defaultMaxDepth is lowered on WebAssembly targets, see evaluator_wasm.go.
var defaultMaxDepth = 10000

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth:      defaultMaxDepth,
		Timeout:       30 * time.Second,
		ArenaCapacity: arena.DefaultCapacity,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if !options.RandSeeded {
		options.RandSeed = time.Now().UnixNano()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	e := &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  c,
		rng:    rand.New(rand.NewSource(options.RandSeed)),
	}
	e.Reset()
	return e
}

// Reset discards every value and global binding and reinstalls the built-ins
// and foreign functions.
func (e *Evaluator) Reset() {
	if e.arena == nil {
		e.arena = arena.New(e.opts.ArenaCapacity)
	} else {
		e.arena.Reset()
	}
	e.global = NewGlobalScope()
	e.natives = nil
	e.foreign = nil
	e.lambdas = nil
	e.lambdaIDs = make(map[*types.Node]uint32)
	e.freeVars = make(map[*types.Node][]string)
	e.hasPending = false

	for _, def := range builtins() {
		e.installNative(def)
	}
	for _, def := range e.opts.ForeignFunctions {
		if err := def.Validate(); err != nil {
			e.logger.Warn("skipping foreign function", "name", def.Name, "error", err)
			continue
		}
		e.installForeign(def)
	}
}

func (e *Evaluator) installNative(def *NativeDef) {
	impl := uint32(len(e.natives))
	e.natives = append(e.natives, def)
	h := e.arena.BeginFunction(def.Arity, arena.FuncNative, impl).Commit()
	e.global.Insert(def.Name, h, types.Location{Source: "<builtin>"})
}

// installForeign binds def in the global scope. A foreign function may
// shadow a built-in of the same name.
func (e *Evaluator) installForeign(def functions.ForeignFunctionDef) {
	impl := uint32(len(e.foreign))
	e.foreign = append(e.foreign, def)
	h := e.arena.BeginFunction(def.Arity, arena.FuncForeign, impl).Commit()
	e.global.Remove(def.Name)
	e.global.Insert(def.Name, h, types.Location{Source: "<foreign>"})
}

// Cache returns the program cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Arena returns the evaluator's value arena.
func (e *Evaluator) Arena() *arena.Arena {
	return e.arena
}

// Global returns the global scope.
func (e *Evaluator) Global() *Scope {
	return e.global
}

// Result is the outcome of a successful Eval.
type Result struct {
	// Value is the result converted to a host value.
	Value functions.Value
	// Text is the result rendered in script notation.
	Text string

	pin arena.Pin
	ev  *Evaluator
}

// Handle returns the arena handle of the result. It fails once the arena has
// been collapsed since the result was produced, which happens at the latest
// on the next Eval.
func (r *Result) Handle() (arena.Handle, error) {
	return r.ev.arena.Resolve(r.pin)
}

// String returns the rendered result.
func (r *Result) String() string {
	return r.Text
}

// Eval evaluates every top-level expression of prog in the global scope and
// returns the value of the last one. Top-level binds persist across calls.
func (e *Evaluator) Eval(ctx context.Context, prog *types.Program) (*Result, error) {
	if prog == nil {
		return nil, types.NewError(types.ErrInternal, types.SubsystemEval, "invalid program")
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	e.releasePending()
	e.depth = 0
	e.steps = 0

	exprs := prog.Expressions()
	if len(exprs) == 0 {
		return e.finish(e.arena.PushUnit(), false)
	}

	var last arena.Handle
	bound := false
	for i, node := range exprs {
		before := e.global.Len()
		h, err := e.Evaluate(ctx, node, e.global)
		if err != nil {
			return nil, err
		}
		bound = e.global.Len() != before
		if i < len(exprs)-1 && !bound {
			e.arena.Truncate(h)
			continue
		}
		last = h
	}
	return e.finish(last, bound)
}

// EvalSource parses src, going through the program cache when caching is
// enabled, and evaluates it.
func (e *Evaluator) EvalSource(ctx context.Context, src string, opts ...parser.ParseOption) (*Result, error) {
	compile := func() (*types.Program, error) {
		return parser.Parse(src, opts...)
	}
	var (
		prog *types.Program
		err  error
	)
	if e.cache != nil {
		prog, err = e.cache.GetOrCompile(src, compile)
	} else {
		prog, err = compile()
	}
	if err != nil {
		return nil, err
	}
	return e.Eval(ctx, prog)
}

// finish converts the value at h into a Result. Unbound results are released
// at the start of the next Eval.
func (e *Evaluator) finish(h arena.Handle, bound bool) (*Result, error) {
	v, err := e.toValue(h)
	if err != nil {
		return nil, err
	}
	pin := e.arena.Pin(h)
	if !bound {
		e.pending = pin
		e.hasPending = true
	}
	return &Result{Value: v, Text: e.arena.Format(h), pin: pin, ev: e}, nil
}

func (e *Evaluator) releasePending() {
	if !e.hasPending {
		return
	}
	e.hasPending = false
	if h, err := e.arena.Resolve(e.pending); err == nil && e.arena.Next(h) == e.arena.Top() {
		e.arena.Truncate(h)
	}
}

// Lookup returns the host value of a global binding.
func (e *Evaluator) Lookup(name string) (functions.Value, bool) {
	b, ok := e.global.Find(name)
	if !ok {
		return functions.Value{}, false
	}
	v, err := e.toValue(b.Handle)
	if err != nil {
		return functions.Value{}, false
	}
	return v, true
}

// Value converts the value at h into a host value.
func (e *Evaluator) Value(h arena.Handle) (functions.Value, error) {
	if !e.arena.Valid(h) {
		return functions.Value{}, &arena.Error{Op: "value", Handle: h, Err: arena.ErrInvalidHandle}
	}
	return e.toValue(h)
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables program caching in EvalSource.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached programs.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external program cache.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum evaluation depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithMaxSteps limits the number of nodes evaluated by a single Eval.
func WithMaxSteps(steps int64) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxSteps = steps
	}
}

// WithForeignFunction binds a host function of the given arity in the
// global scope.
//
// Example:
//
//	evaluator.New(evaluator.WithForeignFunction("greet", 1,
//	    func(ctx context.Context, args ...functions.Value) (functions.Value, error) {
//	        return functions.String("Hello, " + args[0].Str), nil
//	    }))
func WithForeignFunction(name string, arity int, fn functions.ForeignFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.ForeignFunctions = append(opts.ForeignFunctions, functions.ForeignFunctionDef{
			Name:  name,
			Arity: arity,
			Fn:    fn,
		})
	}
}

// WithForeignFunctions binds several host functions at once.
func WithForeignFunctions(defs ...functions.ForeignFunctionDef) EvalOption {
	return func(opts *EvalOptions) {
		opts.ForeignFunctions = append(opts.ForeignFunctions, defs...)
	}
}

// WithTraceHooks installs entry and exit callbacks.
func WithTraceHooks(h TraceHooks) EvalOption {
	return func(opts *EvalOptions) {
		opts.Trace = h
	}
}

// WithOutput sets the writer used by print and println.
func WithOutput(w io.Writer) EvalOption {
	return func(opts *EvalOptions) {
		opts.Output = w
	}
}

// WithRandSeed makes rand-int and rand-real deterministic.
func WithRandSeed(seed int64) EvalOption {
	return func(opts *EvalOptions) {
		opts.RandSeed = seed
		opts.RandSeeded = true
	}
}

// WithArenaCapacity sets the initial arena capacity in bytes.
func WithArenaCapacity(n int) EvalOption {
	return func(opts *EvalOptions) {
		opts.ArenaCapacity = n
	}
}
