package treepath

import (
	"reflect"
	"sort"
)

// absent is the type of the Absent sentinel.
type absent struct{}

func (absent) String() string { return "<absent>" }

// Absent marks the absence of a value, as opposed to an explicit JSON null
// (Go nil). Setting Absent at a path deletes the leaf there, interior array
// holes created by deletion hold Absent, and the default diff filter rejects
// Absent values.
var Absent any = absent{}

// asObject returns v as a reflect map with string keys, if it is one.
func asObject(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return rv, true
	}
	return reflect.Value{}, false
}

// asArray returns v as a reflect slice or array, if it is one.
func asArray(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv, true
	}
	return reflect.Value{}, false
}

// sortedKeys returns the map's string keys in sorted order. Go maps carry no
// insertion order, so sorted order is the deterministic traversal order used
// throughout the package.
func sortedKeys(rv reflect.Value) []string {
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}

// isBuiltinPrimitive reports whether v is an atomic leaf by the built-in
// test: nil, Absent, booleans, strings and all numeric kinds.
func isBuiltinPrimitive(v any) bool {
	if v == nil || v == Absent {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
