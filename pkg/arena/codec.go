package arena

import (
	"encoding/binary"
	"math"
)

// Tag is the type tag stored in every value header.
type Tag uint8

const (
	TagInvalid Tag = iota
	TagBool
	TagChar
	TagInt
	TagReal
	TagUnit
	TagArray
	TagTuple
	TagFunction
	TagReference

	tagMax = TagReference
)

func (t Tag) String() string {
	switch t {
	case TagBool:
		return "bool"
	case TagChar:
		return "char"
	case TagInt:
		return "int"
	case TagReal:
		return "real"
	case TagUnit:
		return "unit"
	case TagArray:
		return "array"
	case TagTuple:
		return "tuple"
	case TagFunction:
		return "function"
	case TagReference:
		return "reference"
	}
	return "invalid"
}

// IsCompound reports whether values of this type hold child values.
func (t Tag) IsCompound() bool {
	return t == TagArray || t == TagTuple
}

// HeaderSize is the encoded size of a value header: one tag byte followed by
// a little-endian uint32 payload size.
const HeaderSize = 5

var order = binary.LittleEndian

// Payload sizes of the atomic types.
const (
	sizeBool      = 1
	sizeChar      = 4
	sizeInt       = 8
	sizeReal      = 8
	sizeUnit      = 0
	sizeReference = 16
)

func (a *Arena) pushAtomic(tag Tag, size int) (Handle, []byte) {
	h, b := a.reserve(HeaderSize + size)
	b[0] = byte(tag)
	order.PutUint32(b[1:HeaderSize], uint32(size))
	return h, b[HeaderSize:]
}

// PushBool pushes a boolean value.
func (a *Arena) PushBool(v bool) Handle {
	h, p := a.pushAtomic(TagBool, sizeBool)
	if v {
		p[0] = 1
	} else {
		p[0] = 0
	}
	return h
}

// PushChar pushes a character value.
func (a *Arena) PushChar(r rune) Handle {
	h, p := a.pushAtomic(TagChar, sizeChar)
	order.PutUint32(p, uint32(r))
	return h
}

// PushInt pushes an integer value.
func (a *Arena) PushInt(v int64) Handle {
	h, p := a.pushAtomic(TagInt, sizeInt)
	order.PutUint64(p, uint64(v))
	return h
}

// PushReal pushes a real value.
func (a *Arena) PushReal(v float64) Handle {
	h, p := a.pushAtomic(TagReal, sizeReal)
	order.PutUint64(p, math.Float64bits(v))
	return h
}

// PushUnit pushes the unit value.
func (a *Arena) PushUnit() Handle {
	h, _ := a.pushAtomic(TagUnit, sizeUnit)
	return h
}

// PushReference pushes a reference to the value at target, stamped with the
// current generation.
func (a *Arena) PushReference(target Handle) Handle {
	h, p := a.pushAtomic(TagReference, sizeReference)
	order.PutUint64(p, uint64(target))
	order.PutUint64(p[8:], a.gen)
	return h
}

// PushString pushes s as an array of characters.
func (a *Arena) PushString(s string) Handle {
	b := a.BeginCompound(TagArray)
	for _, r := range s {
		a.PushChar(r)
	}
	return b.Commit()
}

// header returns the tag and payload size of the value at h.
func (a *Arena) header(op string, h Handle) (Tag, int) {
	a.check(op, h)
	return Tag(a.buf[h]), int(order.Uint32(a.buf[h+1:]))
}

// payload returns the payload of the value at h, which must have tag want.
func (a *Arena) payload(op string, h Handle, want Tag) []byte {
	tag, size := a.header(op, h)
	if tag != want {
		panic(&Error{Op: op, Handle: h, Err: ErrTypeMismatch})
	}
	start := int(h) + HeaderSize
	return a.buf[start : start+size]
}

// span returns the total encoded length of the value at h.
func (a *Arena) span(h Handle) int {
	_, size := a.header("span", h)
	return HeaderSize + size
}

// PeekType returns the type tag of the value at h.
func (a *Arena) PeekType(h Handle) Tag {
	tag, _ := a.header("peek type", h)
	return tag
}

// PeekSize returns the payload size of the value at h.
func (a *Arena) PeekSize(h Handle) int {
	_, size := a.header("peek size", h)
	return size
}

// PeekBool returns the boolean at h.
func (a *Arena) PeekBool(h Handle) bool {
	return a.payload("peek bool", h, TagBool)[0] != 0
}

// PeekChar returns the character at h.
func (a *Arena) PeekChar(h Handle) rune {
	return rune(order.Uint32(a.payload("peek char", h, TagChar)))
}

// PeekInt returns the integer at h.
func (a *Arena) PeekInt(h Handle) int64 {
	return int64(order.Uint64(a.payload("peek int", h, TagInt)))
}

// PeekReal returns the real at h.
func (a *Arena) PeekReal(h Handle) float64 {
	return math.Float64frombits(order.Uint64(a.payload("peek real", h, TagReal)))
}

// PeekReference returns the target handle of the reference at h.
func (a *Arena) PeekReference(h Handle) Handle {
	return Handle(order.Uint64(a.payload("peek reference", h, TagReference)))
}

// PeekString decodes the character array at h.
func (a *Arena) PeekString(h Handle) string {
	if !a.IsString(h) {
		panic(&Error{Op: "peek string", Handle: h, Err: ErrTypeMismatch})
	}
	var rs []rune
	for c := a.FirstChild(h); c < a.Next(h); c = a.Next(c) {
		rs = append(rs, a.PeekChar(c))
	}
	return string(rs)
}

// SetReference retargets the reference at h in place and restamps it with
// the current generation.
func (a *Arena) SetReference(h Handle, target Handle) {
	p := a.payload("set reference", h, TagReference)
	order.PutUint64(p, uint64(target))
	order.PutUint64(p[8:], a.gen)
}

// ReferenceStale reports whether the target of the reference at h was
// removed or shifted by a collapse after the reference was taken.
func (a *Arena) ReferenceStale(h Handle) bool {
	p := a.payload("peek reference", h, TagReference)
	return a.Moved(Handle(order.Uint64(p)), order.Uint64(p[8:]))
}

// Next returns the handle immediately following the value at h.
func (a *Arena) Next(h Handle) Handle {
	return h + Handle(a.span(h))
}

// FirstChild returns the handle of the first child of the compound at h.
// For an empty compound it equals Next(h).
func (a *Arena) FirstChild(h Handle) Handle {
	return h + HeaderSize
}

// CompoundLength counts the children of the compound at h.
func (a *Arena) CompoundLength(h Handle) int {
	n := 0
	end := a.Next(h)
	for c := a.FirstChild(h); c < end; c = a.Next(c) {
		n++
	}
	return n
}

// Children returns the handles of every child of the compound at h.
func (a *Arena) Children(h Handle) []Handle {
	var out []Handle
	end := a.Next(h)
	for c := a.FirstChild(h); c < end; c = a.Next(c) {
		out = append(out, c)
	}
	return out
}

// Child returns the i-th child of the compound at h.
func (a *Arena) Child(h Handle, i int) (Handle, bool) {
	if i < 0 {
		return 0, false
	}
	end := a.Next(h)
	for c := a.FirstChild(h); c < end; c = a.Next(c) {
		if i == 0 {
			return c, true
		}
		i--
	}
	return 0, false
}

// IsString reports whether h is an array whose first child, if any, is a
// character.
func (a *Arena) IsString(h Handle) bool {
	if a.PeekType(h) != TagArray {
		return false
	}
	if a.PeekSize(h) == 0 {
		return true
	}
	return a.PeekType(a.FirstChild(h)) == TagChar
}

// Copy pushes a byte copy of the value at h and returns the new handle.
func (a *Arena) Copy(h Handle) Handle {
	n := a.span(h)
	dst, b := a.reserve(n)
	copy(b, a.buf[h:int(h)+n])
	return dst
}

// Overwrite replaces the value at dst with the value at src in place. The two
// values must have the same shape and the same encoded size; otherwise
// ErrShapeMismatch is returned and dst is left untouched.
func (a *Arena) Overwrite(dst, src Handle) error {
	if !a.SameShape(dst, src) || a.span(dst) != a.span(src) {
		return &Error{Op: "overwrite", Handle: dst, Err: ErrShapeMismatch}
	}
	n := a.span(src)
	copy(a.buf[dst:int(dst)+n], a.buf[src:int(src)+n])
	return nil
}
