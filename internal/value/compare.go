package value

import (
	"cmp"
	"strings"
)

// Compare orders two values ascending: errors first, then nulls, then
// numbers, dates, strings and opaque values. Ints and floats compare
// numerically against each other.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch {
	case a.kind == KindError || a.kind == KindNull:
		return 0
	case a.IsNumeric():
		if a.kind == KindInt && b.kind == KindInt {
			return cmp.Compare(a.i, b.i)
		}
		return cmp.Compare(a.asFloat(), b.asFloat())
	case a.kind == KindDate:
		return a.t.Compare(b.t)
	case a.kind == KindString:
		return strings.Compare(a.s, b.s)
	default:
		return strings.Compare(a.String(), b.String())
	}
}

// CompareSorted is Compare with an optional reversal that keeps errors at
// the front in both directions.
func CompareSorted(a, b Value, desc bool) int {
	ae, be := a.kind == KindError, b.kind == KindError
	switch {
	case ae && be:
		return 0
	case ae:
		return -1
	case be:
		return 1
	}
	c := Compare(a, b)
	if desc {
		return -c
	}
	return c
}

func rank(v Value) int {
	switch v.kind {
	case KindError:
		return 0
	case KindNull:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindDate:
		return 3
	case KindString:
		return 4
	default:
		return 5
	}
}

func (v Value) asFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}
