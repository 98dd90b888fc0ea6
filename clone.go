package treepath

import (
	"reflect"

	"github.com/huandu/go-clone"
)

// CloneJSON returns a JSON-safe deep clone of v. Objects and arrays are
// rebuilt as map[string]any and []any (exotic map and slice types are
// normalized to the JSON shapes), primitives are returned as-is, Absent
// object members are dropped and Absent array holes become null, matching
// what serializing and re-parsing the tree would produce. Opaque
// non-container values are cloned with the go-clone library so the result
// never aliases mutable state of the input.
func CloneJSON(v any) any {
	if v == Absent {
		return nil
	}
	if isBuiltinPrimitive(v) {
		return v
	}
	if rv, ok := asArray(v); ok {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e := rv.Index(i).Interface()
			if e == Absent {
				out[i] = nil
				continue
			}
			out[i] = CloneJSON(e)
		}
		return out
	}
	if rv, ok := asObject(v); ok {
		out := make(map[string]any, rv.Len())
		for _, key := range sortedKeys(rv) {
			e := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface()
			if e == Absent {
				continue
			}
			out[key] = CloneJSON(e)
		}
		return out
	}
	return clone.Clone(v)
}
