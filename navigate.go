package treepath

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// ErrNotContainer is returned when a set operation would have to descend
// through an existing value that is neither an object nor an array. Existing
// values are never silently replaced.
var ErrNotContainer = errors.New("treepath: existing value is not a container")

// Get resolves the path against root. It returns the value found and true,
// or the zero value and false when the path does not resolve (a property
// component meeting a non-object, an index out of bounds, a hole). A failed
// resolution is not an error. The root path resolves to root itself.
func (p Path) Get(root any) (any, bool) {
	cur := root
	for _, c := range p.comps {
		if cur == nil || cur == Absent {
			return nil, false
		}
		if rv, ok := asObject(cur); ok {
			key, isProp := c.Key()
			if !isProp {
				key = strconv.Itoa(c.idx)
			}
			kv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if !kv.IsValid() {
				return nil, false
			}
			cur = kv.Interface()
			continue
		}
		if rv, ok := asArray(cur); ok {
			idx, isIdx := c.Index()
			if !isIdx {
				n, numeric := canonicalNumeral(c.key)
				if !numeric {
					return nil, false
				}
				idx = n
			}
			if idx >= rv.Len() {
				return nil, false
			}
			cur = rv.Index(idx).Interface()
			continue
		}
		return nil, false
	}
	if cur == Absent {
		return nil, false
	}
	return cur, true
}

// Set writes value at the path inside root, mutating root in place where
// possible and returning the (possibly replaced) root. Missing intermediate
// containers are created: an index component creates or extends an array, a
// property component creates an object. When root itself is nil or Absent a
// fresh container is created and returned.
//
// An existing object is never replaced by an array: index components write
// their numeric key onto it instead. Setting Absent deletes the leaf (see
// Unset). Setting through an existing primitive is refused and leaves the
// tree untouched; use SetChecked to observe the error.
func (p Path) Set(root, value any) any {
	out, _ := p.SetChecked(root, value)
	return out
}

// SetChecked is Set with the refusal made visible: descending through an
// existing non-container value returns root unchanged and an error wrapping
// ErrNotContainer that names the offending path prefix.
func (p Path) SetChecked(root, value any) (any, error) {
	deleting := value == Absent
	out, err := p.setRec(root, 0, value, deleting)
	if err != nil {
		return root, err
	}
	if out == Absent {
		// Nothing was materialized (deleting along a missing path).
		return root, nil
	}
	return out, nil
}

// Unset removes the value at the path, equivalent to Set(root, Absent).
// Removing the last populated index of an array truncates it, along with any
// now-trailing run of Absent holes; removing an interior index leaves an
// Absent hole without shrinking the array.
func (p Path) Unset(root any) any {
	return p.Set(root, Absent)
}

func (p Path) setRec(cur any, depth int, value any, deleting bool) (any, error) {
	if depth == len(p.comps) {
		if deleting {
			return Absent, nil
		}
		return value, nil
	}
	c := p.comps[depth]

	if cur == nil || cur == Absent {
		if deleting {
			return Absent, nil
		}
		if _, isIdx := c.Index(); isIdx {
			cur = []any{}
		} else {
			cur = map[string]any{}
		}
	}

	switch t := cur.(type) {
	case map[string]any:
		key, isProp := c.Key()
		if !isProp {
			// Existing objects keep their type: indexes become numeric keys.
			key = strconv.Itoa(c.idx)
		}
		if deleting && depth == len(p.comps)-1 {
			delete(t, key)
			return t, nil
		}
		child, exists := t[key]
		if !exists {
			child = Absent
		}
		nv, err := p.setRec(child, depth+1, value, deleting)
		if err != nil {
			return nil, err
		}
		if nv == Absent {
			return t, nil
		}
		t[key] = nv
		return t, nil

	case []any:
		idx, isIdx := c.Index()
		if !isIdx {
			n, numeric := canonicalNumeral(c.key)
			if !numeric {
				return nil, fmt.Errorf("%w: cannot set property %q on array at %s",
					ErrNotContainer, c.key, p.prefixString(depth))
			}
			idx = n
		}
		if deleting && depth == len(p.comps)-1 {
			if idx >= len(t) {
				return t, nil
			}
			if idx == len(t)-1 {
				t = t[:idx]
				for len(t) > 0 && t[len(t)-1] == Absent {
					t = t[:len(t)-1]
				}
				return t, nil
			}
			t[idx] = Absent
			return t, nil
		}
		if idx >= len(t) {
			if deleting {
				return t, nil
			}
			for len(t) <= idx {
				t = append(t, Absent)
			}
		}
		nv, err := p.setRec(t[idx], depth+1, value, deleting)
		if err != nil {
			return nil, err
		}
		if nv != Absent {
			t[idx] = nv
		}
		return t, nil

	default:
		return nil, fmt.Errorf("%w: %T at %s", ErrNotContainer, cur, p.prefixString(depth))
	}
}

func (p Path) prefixString(n int) string {
	return Path{comps: p.comps[:n]}.String()
}
