package arena

// Builder writes a compound value in two phases: the header is reserved with
// a placeholder size, children are pushed by any means, and Commit backpatches
// the size. Exactly one of Commit or Abort must be called.
type Builder struct {
	a     *Arena
	tag   Tag
	start Handle
	done  bool
}

// BeginCompound reserves the header of a compound value of the given tag.
func (a *Arena) BeginCompound(tag Tag) *Builder {
	h, b := a.reserve(HeaderSize)
	b[0] = byte(tag)
	order.PutUint32(b[1:HeaderSize], 0)
	return &Builder{a: a, tag: tag, start: h}
}

// Handle returns the handle the value will have once committed.
func (b *Builder) Handle() Handle {
	return b.start
}

// Commit backpatches the payload size and returns the handle of the value.
func (b *Builder) Commit() Handle {
	b.ensureOpen("commit")
	size := len(b.a.buf) - int(b.start) - HeaderSize
	order.PutUint32(b.a.buf[b.start+1:], uint32(size))
	b.done = true
	return b.start
}

// Abort discards the reservation and everything pushed after it. It is a
// no-op on a builder that was already committed or aborted.
func (b *Builder) Abort() {
	if b.done {
		return
	}
	b.done = true
	if int(b.start) <= len(b.a.buf) {
		b.a.Truncate(b.start)
	}
}

func (b *Builder) ensureOpen(op string) {
	if b.done {
		panic(&Error{Op: op, Handle: b.start, Err: ErrBuilderState})
	}
	if int(b.start)+HeaderSize > len(b.a.buf) || Tag(b.a.buf[b.start]) != b.tag {
		panic(&Error{Op: op, Handle: b.start, Err: ErrInvalidHandle})
	}
}

// FuncKind selects how a function value is executed.
type FuncKind uint8

const (
	FuncAST     FuncKind = iota // body is a syntax tree evaluated in a fresh scope
	FuncNative                  // fixed-arity built-in
	FuncForeign                 // host handler reached through value marshalling
)

func (k FuncKind) String() string {
	switch k {
	case FuncAST:
		return "ast"
	case FuncNative:
		return "native"
	case FuncForeign:
		return "foreign"
	}
	return "invalid"
}

// Function payload layout:
//
//	arity u32 | kind u8 | impl u32 | ncap u32 | (len u32, name, value)* | napp u32 | value*
const (
	offArity    = 0
	offKind     = 4
	offImpl     = 5
	offCapCount = 9
	funcFixed   = 13
)

type funcPhase uint8

const (
	phaseCaptures funcPhase = iota
	phaseApplied
)

// FunctionBuilder writes a function value: fixed fields, a counted capture
// list and a counted applied-argument list.
type FunctionBuilder struct {
	b          *Builder
	phase      funcPhase
	appCountAt Handle
	captures   uint32
	applied    uint32
}

// BeginFunction reserves a function value with the given arity, execution
// kind and implementation index.
func (a *Arena) BeginFunction(arity int, kind FuncKind, impl uint32) *FunctionBuilder {
	b := a.BeginCompound(TagFunction)
	_, p := a.reserve(funcFixed)
	order.PutUint32(p[offArity:], uint32(arity))
	p[offKind] = byte(kind)
	order.PutUint32(p[offImpl:], impl)
	order.PutUint32(p[offCapCount:], 0)
	return &FunctionBuilder{b: b}
}

// Capture appends a captured binding, copying the value at h.
func (f *FunctionBuilder) Capture(name string, h Handle) {
	f.b.ensureOpen("capture")
	if f.phase != phaseCaptures {
		panic(&Error{Op: "capture", Handle: f.b.start, Err: ErrBuilderState})
	}
	a := f.b.a
	_, p := a.reserve(4 + len(name))
	order.PutUint32(p, uint32(len(name)))
	copy(p[4:], name)
	a.Copy(h)
	f.captures++
}

// BeginApplied closes the capture list and opens the applied-argument list.
// Values pushed directly after this call must be counted with Applied.
func (f *FunctionBuilder) BeginApplied() {
	f.b.ensureOpen("begin applied")
	if f.phase != phaseCaptures {
		return
	}
	a := f.b.a
	order.PutUint32(a.buf[f.b.start+HeaderSize+offCapCount:], f.captures)
	h, p := a.reserve(4)
	order.PutUint32(p, 0)
	f.appCountAt = h
	f.phase = phaseApplied
}

// Apply appends a copy of the value at h to the applied-argument list.
func (f *FunctionBuilder) Apply(h Handle) {
	f.BeginApplied()
	f.b.a.Copy(h)
	f.applied++
}

// Applied counts one value that the caller pushed directly onto the arena
// after BeginApplied.
func (f *FunctionBuilder) Applied() {
	f.b.ensureOpen("applied")
	if f.phase != phaseApplied {
		panic(&Error{Op: "applied", Handle: f.b.start, Err: ErrBuilderState})
	}
	f.applied++
}

// Commit backpatches both counts and the payload size.
func (f *FunctionBuilder) Commit() Handle {
	f.BeginApplied()
	order.PutUint32(f.b.a.buf[f.appCountAt:], f.applied)
	return f.b.Commit()
}

// Abort discards the partially written function.
func (f *FunctionBuilder) Abort() {
	f.b.Abort()
}

// Capture is a decoded captured binding.
type Capture struct {
	Name  string
	Value Handle
}

// Function is a decoded view of a function value. Its handles point into the
// arena and share its lifetime rules.
type Function struct {
	Arity    int
	Kind     FuncKind
	Impl     uint32
	Captures []Capture
	Applied  []Handle
}

// Remaining returns how many arguments are still needed to execute.
func (f Function) Remaining() int {
	return f.Arity - len(f.Applied)
}

// PeekFunction decodes the function value at h.
func (a *Arena) PeekFunction(h Handle) Function {
	a.payload("peek function", h, TagFunction)
	p := int(h) + HeaderSize
	fn := Function{
		Arity: int(order.Uint32(a.buf[p+offArity:])),
		Kind:  FuncKind(a.buf[p+offKind]),
		Impl:  order.Uint32(a.buf[p+offImpl:]),
	}
	ncap := int(order.Uint32(a.buf[p+offCapCount:]))
	cur := p + funcFixed
	for i := 0; i < ncap; i++ {
		l := int(order.Uint32(a.buf[cur:]))
		name := string(a.buf[cur+4 : cur+4+l])
		cur += 4 + l
		fn.Captures = append(fn.Captures, Capture{Name: name, Value: Handle(cur)})
		cur = int(a.Next(Handle(cur)))
	}
	napp := int(order.Uint32(a.buf[cur:]))
	cur += 4
	for i := 0; i < napp; i++ {
		fn.Applied = append(fn.Applied, Handle(cur))
		cur = int(a.Next(Handle(cur)))
	}
	return fn
}
