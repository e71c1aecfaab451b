// Package arena implements the byte arena that stores every runtime value.
//
// Values live in a single growable byte buffer and are referenced by
// [Handle], an integer byte offset. Memory is reclaimed only by [Arena.Collapse],
// which removes a byte range and slides the tail down. The package also owns
// the value encoding (see codec.go): nothing outside it knows byte layouts.
//
// # Handle lifetime
//
// A handle is valid until a collapse removes bytes at or before it. Raw
// handles are used by the evaluator under a strict nesting discipline; hosts
// that keep a result across evaluations should hold a [Pin] instead, which
// reports [ErrStaleHandle] once any collapse has happened since it was taken.
//
// Reference values carry the generation they were taken in. The arena keeps
// the lowest collapse offset seen since each generation, so [Arena.Moved]
// can tell whether bytes at or below a target were removed in the meantime.
//
// An Arena is NOT safe for concurrent use.
package arena

import (
	"errors"
	"fmt"
	"sort"
)

// Handle is a byte offset into an arena.
type Handle int

// DefaultCapacity is the initial buffer capacity used by New when the
// requested capacity is not positive.
const DefaultCapacity = 4096

var (
	// ErrInvalidHandle is returned or raised when a handle does not address a
	// complete value below the arena top.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrStaleHandle is returned when a pinned handle was invalidated by a collapse.
	ErrStaleHandle = errors.New("stale handle")
	// ErrTypeMismatch is raised when a value is peeked as the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrShapeMismatch is returned when an in-place overwrite would change the
	// referent's shape or size.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidRange is raised on a collapse of a malformed range.
	ErrInvalidRange = errors.New("invalid range")
	// ErrBuilderState is raised when a builder is used out of order.
	ErrBuilderState = errors.New("builder used out of order")
)

// Error describes an arena failure. Misuse of the arena (peeking garbage,
// collapsing a malformed range) is a programming error and is raised with
// panic(*Error); recoverable failures are returned.
type Error struct {
	Op     string
	Handle Handle
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("arena: %s @%d: %v", e.Op, e.Handle, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Arena is a growable byte buffer with a single high-water mark.
// Everything at or above Top is free space.
type Arena struct {
	buf []byte
	gen uint64
	// floors lists the collapses that reached lower than every later one.
	// Both gen and begin increase strictly along the slice.
	floors []floor
}

type floor struct {
	gen   uint64
	begin Handle
}

// New creates an arena with the given initial capacity.
func New(capacity int) *Arena {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Arena{buf: make([]byte, 0, capacity)}
}

// Top returns the handle one past the last byte in use.
func (a *Arena) Top() Handle {
	return Handle(len(a.buf))
}

// Cap returns the current buffer capacity.
func (a *Arena) Cap() int {
	return cap(a.buf)
}

// Generation returns the number of collapses performed so far.
func (a *Arena) Generation() uint64 {
	return a.gen
}

// Push appends raw bytes and returns the handle of the first of them.
func (a *Arena) Push(b []byte) Handle {
	h, dst := a.reserve(len(b))
	copy(dst, b)
	return h
}

// reserve extends the buffer by n bytes and returns the handle and a
// writable view of the new region. The view is only valid until the next
// append.
func (a *Arena) reserve(n int) (Handle, []byte) {
	a.grow(n)
	h := len(a.buf)
	a.buf = a.buf[:h+n]
	return Handle(h), a.buf[h : h+n]
}

// grow ensures room for n more bytes, growing geometrically by about 1.5x.
func (a *Arena) grow(n int) {
	need := len(a.buf) + n
	if need <= cap(a.buf) {
		return
	}
	newCap := cap(a.buf) + cap(a.buf)/2
	if newCap < need {
		newCap = need
	}
	nb := make([]byte, len(a.buf), newCap)
	copy(nb, a.buf)
	a.buf = nb
}

// Collapse removes the byte range [begin, end) and slides everything above
// end down to begin. Handles at or above begin are invalidated.
func (a *Arena) Collapse(begin, end Handle) {
	if begin < 0 || begin > end || int(end) > len(a.buf) {
		panic(&Error{Op: "collapse", Handle: begin, Err: fmt.Errorf("%w: [%d,%d) with top %d", ErrInvalidRange, begin, end, len(a.buf))})
	}
	if begin == end {
		return
	}
	n := copy(a.buf[begin:], a.buf[end:])
	a.buf = a.buf[:int(begin)+n]
	a.record(begin)
}

// Truncate collapses everything from h to the top.
func (a *Arena) Truncate(h Handle) {
	a.Collapse(h, a.Top())
}

// Reset discards every value.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
	a.record(0)
}

// record logs a collapse starting at begin and bumps the generation. Entries
// at or above begin are dropped: for any generation that saw them, the new
// entry is a lower floor.
func (a *Arena) record(begin Handle) {
	n := len(a.floors)
	for n > 0 && a.floors[n-1].begin >= begin {
		n--
	}
	a.floors = append(a.floors[:n], floor{gen: a.gen, begin: begin})
	a.gen++
}

// Moved reports whether a collapse performed since generation gen started at
// or below h, i.e. whether a handle taken in gen no longer addresses the
// same bytes.
func (a *Arena) Moved(h Handle, gen uint64) bool {
	i := sort.Search(len(a.floors), func(i int) bool { return a.floors[i].gen >= gen })
	return i < len(a.floors) && a.floors[i].begin <= h
}

// Pin is a handle bound to the arena generation it was taken in.
type Pin struct {
	h   Handle
	gen uint64
}

// Pin captures h together with the current generation.
func (a *Arena) Pin(h Handle) Pin {
	return Pin{h: h, gen: a.gen}
}

// Resolve returns the handle of p if no collapse happened since it was
// taken. The check is conservative: a collapse strictly above the handle
// also invalidates the pin.
func (a *Arena) Resolve(p Pin) (Handle, error) {
	if p.gen != a.gen {
		return 0, &Error{Op: "resolve", Handle: p.h, Err: ErrStaleHandle}
	}
	if !a.Valid(p.h) {
		return 0, &Error{Op: "resolve", Handle: p.h, Err: ErrInvalidHandle}
	}
	return p.h, nil
}

// Valid reports whether h addresses a complete value below the top.
func (a *Arena) Valid(h Handle) bool {
	if h < 0 || int(h)+HeaderSize > len(a.buf) {
		return false
	}
	if Tag(a.buf[h]) == TagInvalid || Tag(a.buf[h]) > tagMax {
		return false
	}
	size := int(order.Uint32(a.buf[h+1:]))
	return int(h)+HeaderSize+size <= len(a.buf)
}

// Raw returns a copy of the encoded bytes of the value at h.
func (a *Arena) Raw(h Handle) []byte {
	n := a.span(h)
	out := make([]byte, n)
	copy(out, a.buf[h:int(h)+n])
	return out
}

// check panics unless h addresses a complete value.
func (a *Arena) check(op string, h Handle) {
	if !a.Valid(h) {
		panic(&Error{Op: op, Handle: h, Err: ErrInvalidHandle})
	}
}
