package fx

import (
	"math"
	"reflect"
)

// hasChanged reports whether a write of b over a is observable.
// NaN is treated as unchanged when replacing NaN.
func hasChanged(a, b any) bool {
	return !sameValueZero(a, b)
}

// sameValueZero compares like Map keys and Includes: NaN equals NaN.
func sameValueZero(a, b any) bool {
	if isNaN(a) && isNaN(b) {
		return true
	}
	return strictEqual(a, b)
}

// strictEqual compares like IndexOf: NaN never equals anything.
// Uncomparable values (slices, maps, funcs) are equal only when they
// share backing storage.
func strictEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	if b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}

	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

// searchMatch is the comparison used by the array search shims: identity
// first, then the raw targets behind proxies on either side. A stored
// *Ref also matches its own raw value.
func searchMatch(eq func(a, b any) bool) func(elem, want any) bool {
	return func(elem, want any) bool {
		if eq(elem, want) {
			return true
		}
		rawWant := ToRaw(want)
		if r, ok := elem.(*Ref); ok && r != nil {
			if _, wantRef := want.(*Ref); !wantRef && eq(r.raw(), rawWant) {
				return true
			}
		}
		rawElem := ToRaw(elem)
		if rawElem == nil && rawWant == nil {
			return false
		}
		return eq(rawElem, rawWant)
	}
}
