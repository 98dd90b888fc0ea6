package treepath

import (
	"iter"
	"reflect"
)

// Find walks root depth-first in pre-order and invokes visit once per
// concrete path that exactly matches the matcher, with the value found
// there. Only subtrees that can still produce a match are descended into;
// the rest of the tree is pruned. The visitor returns false to stop the
// walk early.
//
// Object properties are visited in sorted key order, array elements in
// index order.
func (m Matcher) Find(root any, visit func(Path, any) bool) {
	m.find(Root, root, visit)
}

// FindFirst returns the first match of the matcher in root, in Find's
// traversal order.
func (m Matcher) FindFirst(root any) (Path, any, bool) {
	var (
		foundPath  Path
		foundValue any
		found      bool
	)
	m.find(Root, root, func(p Path, v any) bool {
		foundPath, foundValue, found = p, v, true
		return false
	})
	return foundPath, foundValue, found
}

// FindValues returns a restartable iterator over the values matched in
// root, in Find's traversal order. Re-invoking the sequence over the same
// tree yields the same values in the same order.
func (m Matcher) FindValues(root any) iter.Seq[any] {
	return func(yield func(any) bool) {
		m.find(Root, root, func(_ Path, v any) bool {
			return yield(v)
		})
	}
}

func (m Matcher) find(path Path, value any, visit func(Path, any) bool) bool {
	if value == Absent {
		// Holes have no value to visit and nothing below them.
		return true
	}
	depth := path.Len()
	if depth == len(m.ms) {
		return visit(path, value)
	}
	if value == nil {
		return true
	}
	slot := m.ms[depth]
	if rv, ok := asArray(value); ok {
		for i := 0; i < rv.Len(); i++ {
			c := Index(i)
			if !slot.matches(c) {
				continue
			}
			if !m.find(path.Child(c), rv.Index(i).Interface(), visit) {
				return false
			}
		}
		return true
	}
	if rv, ok := asObject(value); ok {
		for _, key := range sortedKeys(rv) {
			c := Property(key)
			if !slot.matches(c) {
				continue
			}
			child := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if !m.find(path.Child(c), child.Interface(), visit) {
				return false
			}
		}
		return true
	}
	return true
}
