package arena

import "bytes"

// SameShape reports whether the values at x and y have the same structural
// type. Atomic values match on tag alone. Tuples must have the same length
// and pairwise matching children. Arrays match when their elements do; an
// empty array matches any array. Functions and references match on tag.
func (a *Arena) SameShape(x, y Handle) bool {
	tx, ty := a.PeekType(x), a.PeekType(y)
	if tx != ty {
		return false
	}
	switch tx {
	case TagArray:
		if a.PeekSize(x) == 0 || a.PeekSize(y) == 0 {
			return true
		}
		return a.SameShape(a.FirstChild(x), a.FirstChild(y))
	case TagTuple:
		xs, ys := a.Children(x), a.Children(y)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !a.SameShape(xs[i], ys[i]) {
				return false
			}
		}
	}
	return true
}

// Homogeneous reports whether every child of the array at h has the same
// shape.
func (a *Arena) Homogeneous(h Handle) bool {
	kids := a.Children(h)
	if len(kids) < 2 {
		return true
	}
	first := a.PeekType(kids[0])
	if !first.IsCompound() {
		for _, k := range kids[1:] {
			if a.PeekType(k) != first {
				return false
			}
		}
		return true
	}
	// Compatibility with empty arrays is not transitive, so compound
	// elements are compared pairwise.
	for i := 1; i < len(kids); i++ {
		for j := 0; j < i; j++ {
			if !a.SameShape(kids[j], kids[i]) {
				return false
			}
		}
	}
	return true
}

// Equal reports whether x and y have the same shape and the same contents.
// Reals compare numerically, references compare their targets and functions
// compare their raw encodings.
func (a *Arena) Equal(x, y Handle) bool {
	tx, ty := a.PeekType(x), a.PeekType(y)
	if tx != ty {
		return false
	}
	switch tx {
	case TagReal:
		return a.PeekReal(x) == a.PeekReal(y)
	case TagReference:
		return a.PeekReference(x) == a.PeekReference(y)
	case TagArray, TagTuple:
		xs, ys := a.Children(x), a.Children(y)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !a.Equal(xs[i], ys[i]) {
				return false
			}
		}
		return true
	}
	nx, ny := a.span(x), a.span(y)
	return bytes.Equal(a.buf[x:int(x)+nx], a.buf[y:int(y)+ny])
}
