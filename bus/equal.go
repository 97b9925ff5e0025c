package bus

import "reflect"

// Shallow reports whether a and b are shallowly equal: scalars and strings
// compare by value, slices by backing array and length, maps, pointers,
// funcs and channels by address. Structs, arrays and interface values are
// compared field by field with the same rule, so a new slice with the same
// elements is a change while a copied struct is not.
func Shallow[T any](a, b T) bool {
	return shallowEqual(reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem())
}

func shallowEqual(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Slice:
		return a.Len() == b.Len() && a.Pointer() == b.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return shallowEqual(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := range a.NumField() {
			if !shallowEqual(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := range a.Len() {
			if !shallowEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	default:
		return a.Equal(b)
	}
}
