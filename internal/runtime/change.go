package runtime

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// DataField is the only input and state field compared by value.
const DataField = "data"

// ShouldUpdate reports whether an instance must re-render.
//
// Every field except DataField is compared by identity: the same scalar, or the
// same map, slice or pointer. DataField is compared structurally, with nil and
// empty collections treated as equal.
func ShouldUpdate(prevProps, nextProps, prevState, nextState map[string]any) bool {
	if !shallowEqual(prevProps, nextProps) || !shallowEqual(prevState, nextState) {
		return true
	}
	return !deepEqual(prevProps[DataField], nextProps[DataField]) ||
		!deepEqual(prevState[DataField], nextState[DataField])
}

func shallowEqual(a, b map[string]any) bool {
	if fieldCount(a) != fieldCount(b) {
		return false
	}
	for k, av := range a {
		if k == DataField {
			continue
		}
		bv, ok := b[k]
		if !ok || !sameValue(av, bv) {
			return false
		}
	}
	return true
}

func fieldCount(m map[string]any) int {
	if _, ok := m[DataField]; ok {
		return len(m) - 1
	}
	return len(m)
}

// sameValue is identity equality. Functions are never the same unless both are nil.
func sameValue(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !va.Type().Comparable() {
		return false
	}
	// Interface-typed fields may still hold incomparable values.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

func deepEqual(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}
