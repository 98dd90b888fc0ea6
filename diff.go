package treepath

import (
	"fmt"
	"iter"
	"reflect"
)

// UnsupportedTypeError is returned when diff traversal meets a value that is
// neither a primitive, an array, a string-keyed object nor a type claimed by
// a configured primitive predicate. Declare such types with WithPrimitive if
// they are meant to be treated as atomic leaves.
type UnsupportedTypeError struct {
	Type reflect.Type
	Path Path
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("treepath: unsupported type %s at %s (declare it with WithPrimitive to treat it as a leaf)",
		e.Type, e.Path)
}

// DiffOption configures a Differ.
type DiffOption interface {
	applyDiff(*diffConfig)
}

type diffOptionFunc func(*diffConfig)

func (f diffOptionFunc) applyDiff(c *diffConfig) { f(c) }

type diffConfig struct {
	filter     func(Path, any) bool
	primitive  func(any) bool
	equal      func(a, b any) bool
	containers bool
}

// WithFilter installs a pruning predicate applied at every node of both
// trees before recursion. A rejected node's whole subtree is invisible to
// the diff, regardless of which side changed it. The default filter accepts
// everything except Absent.
func WithFilter(filter func(Path, any) bool) DiffOption {
	return diffOptionFunc(func(c *diffConfig) {
		c.filter = filter
	})
}

// WithPrimitive augments the built-in primitive test so that opaque values
// (say, a timestamp type) are treated as atomic leaves instead of being
// recursed into.
func WithPrimitive(primitive func(any) bool) DiffOption {
	return diffOptionFunc(func(c *diffConfig) {
		c.primitive = primitive
	})
}

// WithEqual installs a fallback leaf equality used when the built-in
// comparison does not consider two leaves equal.
func WithEqual(equal func(a, b any) bool) DiffOption {
	return diffOptionFunc(func(c *diffConfig) {
		c.equal = equal
	})
}

// WithContainers makes the diff emit an additional leaf entry for every
// object and array node itself, normalized to an empty object or array, not
// just for scalar descendants.
func WithContainers() DiffOption {
	return diffOptionFunc(func(c *diffConfig) {
		c.containers = true
	})
}

// Container markers recorded during traversal when WithContainers is set.
// They are normalized back to genuine empty containers before leaving the
// package.
type marker int

const (
	objectMarker marker = iota
	arrayMarker
)

// Change records a single difference: the path where it was found and the
// prior and new values. Presence is tracked separately from the values
// themselves: a leaf that did not exist (HasOld/HasNew false) is distinct
// from a leaf holding null.
type Change struct {
	Path   Path
	Old    any
	New    any
	HasOld bool
	HasNew bool
}

// Changeset is an insertion-ordered mapping from canonical path string to
// Change. The canonical string is the stable identity used for lookup,
// deduplication and ordering.
type Changeset struct {
	keys    []string
	changes map[string]Change
}

func newChangeset() *Changeset {
	return &Changeset{changes: make(map[string]Change)}
}

func (cs *Changeset) add(key string, change Change) {
	if _, ok := cs.changes[key]; !ok {
		cs.keys = append(cs.keys, key)
	}
	cs.changes[key] = change
}

// Len returns the number of changes.
func (cs *Changeset) Len() int { return len(cs.keys) }

// Empty reports whether the changeset holds no changes.
func (cs *Changeset) Empty() bool { return len(cs.keys) == 0 }

// Paths returns the canonical path strings in changeset order.
func (cs *Changeset) Paths() []string {
	out := make([]string, len(cs.keys))
	copy(out, cs.keys)
	return out
}

// Get returns the change recorded under a canonical path string.
func (cs *Changeset) Get(key string) (Change, bool) {
	c, ok := cs.changes[key]
	return c, ok
}

// All returns an iterator over the changes in changeset order.
func (cs *Changeset) All() iter.Seq[Change] {
	return func(yield func(Change) bool) {
		for _, key := range cs.keys {
			if !yield(cs.changes[key]) {
				return
			}
		}
	}
}

// PathValues is an ordered mapping from canonical path string to the Path
// and leaf value found there, as produced by a single-tree traversal.
type PathValues struct {
	keys   []string
	byPath map[string]pathValue
}

type pathValue struct {
	path  Path
	value any
}

func newPathValues() *PathValues {
	return &PathValues{byPath: make(map[string]pathValue)}
}

func (pv *PathValues) add(path Path, value any) {
	key := path.String()
	if _, ok := pv.byPath[key]; !ok {
		pv.keys = append(pv.keys, key)
	}
	pv.byPath[key] = pathValue{path: path, value: value}
}

// Len returns the number of recorded leaves.
func (pv *PathValues) Len() int { return len(pv.keys) }

// Paths returns the canonical path strings in traversal order.
func (pv *PathValues) Paths() []string {
	out := make([]string, len(pv.keys))
	copy(out, pv.keys)
	return out
}

// Get returns the Path and value recorded under a canonical path string.
// Container markers are normalized to empty containers.
func (pv *PathValues) Get(key string) (Path, any, bool) {
	e, ok := pv.byPath[key]
	if !ok {
		return Path{}, nil, false
	}
	return e.path, normalizeMarker(e.value), true
}

// All returns an iterator over the recorded leaves in traversal order.
func (pv *PathValues) All() iter.Seq2[Path, any] {
	return func(yield func(Path, any) bool) {
		for _, key := range pv.keys {
			e := pv.byPath[key]
			if !yield(e.path, normalizeMarker(e.value)) {
				return
			}
		}
	}
}

func normalizeMarker(v any) any {
	switch v {
	case any(objectMarker):
		return map[string]any{}
	case any(arrayMarker):
		return []any{}
	default:
		return v
	}
}

// Differ computes structural differences between two snapshots of a
// JSON-shaped tree. Its configuration is fixed at construction and it holds
// no per-call state, so a single Differ may be reused concurrently.
type Differ struct {
	cfg diffConfig
}

// NewDiffer builds a Differ with the given options.
func NewDiffer(opts ...DiffOption) *Differ {
	cfg := diffConfig{
		filter: func(_ Path, v any) bool { return v != Absent },
	}
	for _, opt := range opts {
		opt.applyDiff(&cfg)
	}
	return &Differ{cfg: cfg}
}

// defaultDiffer backs the package-level convenience functions.
var defaultDiffer = NewDiffer()

func (d *Differ) isPrimitive(v any) bool {
	if isBuiltinPrimitive(v) {
		return true
	}
	return d.cfg.primitive != nil && d.cfg.primitive(v)
}

func (d *Differ) leafEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	return d.cfg.equal != nil && d.cfg.equal(a, b)
}

// collect walks value pre-order and records every leaf keyed by its
// canonical path. Object properties are walked in sorted key order.
func (d *Differ) collect(pv *PathValues, path Path, value any) error {
	if !d.cfg.filter(path, value) {
		return nil
	}
	if d.isPrimitive(value) {
		pv.add(path, value)
		return nil
	}
	if rv, ok := asArray(value); ok {
		if d.cfg.containers {
			pv.add(path, arrayMarker)
		}
		for i := 0; i < rv.Len(); i++ {
			if err := d.collect(pv, path.Index(i), rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	if rv, ok := asObject(value); ok {
		if d.cfg.containers {
			pv.add(path, objectMarker)
		}
		for _, key := range sortedKeys(rv) {
			child := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if err := d.collect(pv, path.Property(key), child.Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return &UnsupportedTypeError{Type: reflect.TypeOf(value), Path: path}
}

// PathsAndValues returns the ordered canonical-path-to-leaf mapping of a
// single tree.
func (d *Differ) PathsAndValues(value any) (*PathValues, error) {
	pv := newPathValues()
	if err := d.collect(pv, Root, value); err != nil {
		return nil, err
	}
	return pv, nil
}

// AllPaths returns the canonical leaf path strings reachable in a single
// tree, in traversal order.
func (d *Differ) AllPaths(value any) ([]string, error) {
	pv, err := d.PathsAndValues(value)
	if err != nil {
		return nil, err
	}
	return pv.Paths(), nil
}

// Changeset diffs two snapshots. The resulting order is observable: all
// paths touched in after, in after's pre-order, followed by the paths that
// vanished, in before's pre-order.
func (d *Differ) Changeset(before, after any) (*Changeset, error) {
	beforePV, err := d.PathsAndValues(before)
	if err != nil {
		return nil, err
	}
	afterPV, err := d.PathsAndValues(after)
	if err != nil {
		return nil, err
	}

	cs := newChangeset()
	seen := make(map[string]bool, afterPV.Len())
	for _, key := range afterPV.keys {
		afterEntry := afterPV.byPath[key]
		seen[key] = true
		beforeEntry, existed := beforePV.byPath[key]
		if !existed {
			cs.add(key, Change{
				Path:   afterEntry.path,
				New:    normalizeMarker(afterEntry.value),
				HasNew: true,
			})
			continue
		}
		if d.leafEqual(beforeEntry.value, afterEntry.value) {
			continue
		}
		cs.add(key, Change{
			Path:   afterEntry.path,
			Old:    normalizeMarker(beforeEntry.value),
			New:    normalizeMarker(afterEntry.value),
			HasOld: true,
			HasNew: true,
		})
	}
	for _, key := range beforePV.keys {
		if seen[key] {
			continue
		}
		beforeEntry := beforePV.byPath[key]
		cs.add(key, Change{
			Path:   beforeEntry.path,
			Old:    normalizeMarker(beforeEntry.value),
			HasOld: true,
		})
	}
	return cs, nil
}

// ChangedPaths returns the key set of Changeset(before, after), in changeset
// order.
func (d *Differ) ChangedPaths(before, after any) ([]string, error) {
	cs, err := d.Changeset(before, after)
	if err != nil {
		return nil, err
	}
	return cs.Paths(), nil
}

// Diff diffs two snapshots with a one-off Differ built from opts.
func Diff(before, after any, opts ...DiffOption) (*Changeset, error) {
	if len(opts) == 0 {
		return defaultDiffer.Changeset(before, after)
	}
	return NewDiffer(opts...).Changeset(before, after)
}

// MustDiff is like Diff but panics on traversal errors.
func MustDiff(before, after any, opts ...DiffOption) *Changeset {
	cs, err := Diff(before, after, opts...)
	if err != nil {
		panic(err)
	}
	return cs
}

// AllPaths returns the canonical leaf path strings of a tree using the
// default configuration.
func AllPaths(value any) ([]string, error) {
	return defaultDiffer.AllPaths(value)
}
