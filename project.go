package treepath

import "reflect"

// Project returns a filtered clone of v. A node is kept when some include
// matcher prefix-matches its path (the node lies inside a denoted subtree)
// and no exclude matcher prefix-matches it; subtrees that no include matcher
// could still match are pruned without being visited. An empty include list
// includes everything not excluded.
//
// Array elements dropped by the selection are removed and the remaining
// elements re-packed to contiguous indexes, as signalled by
// Matcher.AllowsGaps. The result never shares containers with v.
func Project(v any, include, exclude []Matcher) any {
	out, keep := project(Root, v, include, exclude)
	if !keep {
		// Nothing survived; mirror the root's container kind.
		if _, ok := asArray(v); ok {
			return []any{}
		}
		if _, ok := asObject(v); ok {
			return map[string]any{}
		}
		return nil
	}
	return out
}

func project(path Path, v any, include, exclude []Matcher) (any, bool) {
	for _, m := range exclude {
		if m.PrefixMatch(path) {
			return nil, false
		}
	}
	included := len(include) == 0
	reachable := len(include) == 0
	for _, m := range include {
		if m.PrefixMatch(path) {
			included, reachable = true, true
			break
		}
		if m.PartialMatch(path) {
			reachable = true
		}
	}
	if !reachable {
		return nil, false
	}

	if isBuiltinPrimitive(v) {
		if !included {
			return nil, false
		}
		if v == Absent {
			return nil, false
		}
		return v, true
	}
	if rv, ok := asArray(v); ok {
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			child, keep := project(path.Index(i), rv.Index(i).Interface(), include, exclude)
			if keep {
				out = append(out, child)
			}
		}
		if len(out) == 0 && !included {
			return nil, false
		}
		return out, true
	}
	if rv, ok := asObject(v); ok {
		out := make(map[string]any, rv.Len())
		for _, key := range sortedKeys(rv) {
			e := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface()
			child, keep := project(path.Property(key), e, include, exclude)
			if keep {
				out[key] = child
			}
		}
		if len(out) == 0 && !included {
			return nil, false
		}
		return out, true
	}
	// Opaque values behave like primitives for projection purposes.
	if !included {
		return nil, false
	}
	return CloneJSON(v), true
}
