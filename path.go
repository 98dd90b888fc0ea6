// Package treepath addresses locations inside JSON-shaped trees (nested
// objects, arrays and primitives) with immutable Path values, matches sets of
// such locations with a pattern language (wildcards, unions) and computes
// structural differences between two snapshots of a tree keyed by those paths.
package treepath

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidComponent is returned when a path is built from a value that is
// neither a property name, a non-negative integer index nor a Component.
var ErrInvalidComponent = errors.New("treepath: invalid path component")

// ComponentKind discriminates the two kinds of path components.
type ComponentKind int

const (
	// KindProperty is an object property key.
	KindProperty ComponentKind = iota
	// KindIndex is a non-negative array index.
	KindIndex
)

// Component is a single step of a Path: either an object property key or a
// non-negative array index. The zero value is the property "".
type Component struct {
	kind ComponentKind
	key  string
	idx  int
}

// Property returns a property-key component.
func Property(name string) Component {
	return Component{kind: KindProperty, key: name}
}

// Index returns an array-index component. It panics if i is negative; use
// NewPath when the index comes from untrusted input.
func Index(i int) Component {
	if i < 0 {
		panic(fmt.Sprintf("treepath: negative index %d", i))
	}
	return Component{kind: KindIndex, idx: i}
}

// Kind returns the component's kind.
func (c Component) Kind() ComponentKind { return c.kind }

// Key returns the property name and true if c is a property component.
func (c Component) Key() (string, bool) {
	return c.key, c.kind == KindProperty
}

// Index returns the array index and true if c is an index component.
func (c Component) Index() (int, bool) {
	return c.idx, c.kind == KindIndex
}

// Equal reports whether two components address the same slot. Components of
// different kinds are compared with index normalization: the property "3"
// equals the index 3 (but "03" does not, as it is not the canonical numeral).
func (c Component) Equal(other Component) bool {
	if c.kind == other.kind {
		if c.kind == KindIndex {
			return c.idx == other.idx
		}
		return c.key == other.key
	}
	prop, idx := c, other
	if prop.kind == KindIndex {
		prop, idx = other, c
	}
	n, ok := canonicalNumeral(prop.key)
	return ok && n == idx.idx
}

// String returns the raw form of the component (the property name or the
// decimal index), without any path punctuation.
func (c Component) String() string {
	if c.kind == KindIndex {
		return strconv.Itoa(c.idx)
	}
	return c.key
}

// canonicalNumeral reports whether s is the canonical decimal form of a
// non-negative integer and returns its value.
func canonicalNumeral(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	if strconv.Itoa(n) != s {
		return 0, false
	}
	return n, true
}

// component converts an arbitrary caller-supplied value into a Component.
func component(part any) (Component, error) {
	switch v := part.(type) {
	case Component:
		return v, nil
	case string:
		return Property(v), nil
	case int:
		return indexComponent(int64(v))
	case int8:
		return indexComponent(int64(v))
	case int16:
		return indexComponent(int64(v))
	case int32:
		return indexComponent(int64(v))
	case int64:
		return indexComponent(v)
	case uint:
		return indexComponent(int64(v))
	case uint8:
		return indexComponent(int64(v))
	case uint16:
		return indexComponent(int64(v))
	case uint32:
		return indexComponent(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return Component{}, fmt.Errorf("%w: index %d out of range", ErrInvalidComponent, v)
		}
		return indexComponent(int64(v))
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return Component{}, fmt.Errorf("%w: non-integer index %v", ErrInvalidComponent, v)
		}
		return indexComponent(int64(v))
	case float32:
		return component(float64(v))
	default:
		return Component{}, fmt.Errorf("%w: %T is neither a property, an index nor a Component", ErrInvalidComponent, part)
	}
}

func indexComponent(i int64) (Component, error) {
	if i < 0 {
		return Component{}, fmt.Errorf("%w: negative index %d", ErrInvalidComponent, i)
	}
	if i > math.MaxInt {
		return Component{}, fmt.Errorf("%w: index %d out of range", ErrInvalidComponent, i)
	}
	return Index(int(i)), nil
}

// Path is an immutable, ordered sequence of components addressing a location
// inside a JSON-shaped tree. The zero value is the root path "$". Paths are
// pure values: every derivation returns a new Path and existing Paths are
// never modified, so they may be shared freely.
type Path struct {
	comps []Component
}

// Root is the empty path, addressing the tree itself.
var Root = Path{}

// NewPath builds a path from strings (property keys), integers (array
// indexes) and Components. It fails with ErrInvalidComponent if any part is
// of the wrong kind or a negative index.
func NewPath(parts ...any) (Path, error) {
	if len(parts) == 0 {
		return Root, nil
	}
	comps := make([]Component, len(parts))
	for i, part := range parts {
		c, err := component(part)
		if err != nil {
			return Path{}, err
		}
		comps[i] = c
	}
	return Path{comps: comps}, nil
}

// MustPath is like NewPath but panics on invalid components.
func MustPath(parts ...any) Path {
	p, err := NewPath(parts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of components in the path.
func (p Path) Len() int { return len(p.comps) }

// IsRoot reports whether p is the empty path.
func (p Path) IsRoot() bool { return len(p.comps) == 0 }

// At returns the i-th component. It panics if i is out of range.
func (p Path) At(i int) Component { return p.comps[i] }

// Last returns the final component and true, or false for the root path.
func (p Path) Last() (Component, bool) {
	if len(p.comps) == 0 {
		return Component{}, false
	}
	return p.comps[len(p.comps)-1], true
}

// Components returns a restartable iterator over the path's components.
// Multiple traversals yield identical sequences.
func (p Path) Components() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		for _, c := range p.comps {
			if !yield(c) {
				return
			}
		}
	}
}

// Child returns a new path with c appended.
func (p Path) Child(c Component) Path {
	comps := make([]Component, len(p.comps)+1)
	copy(comps, p.comps)
	comps[len(p.comps)] = c
	return Path{comps: comps}
}

// Property returns a new path with a property component appended.
func (p Path) Property(name string) Path { return p.Child(Property(name)) }

// Index returns a new path with an index component appended. It panics if i
// is negative.
func (p Path) Index(i int) Path { return p.Child(Index(i)) }

// Parent returns the path with the last component removed. The second return
// value is false for the root path, which has no parent.
func (p Path) Parent() (Path, bool) {
	if len(p.comps) == 0 {
		return Path{}, false
	}
	comps := make([]Component, len(p.comps)-1)
	copy(comps, p.comps[:len(p.comps)-1])
	return Path{comps: comps}, true
}

// Concat returns a new path consisting of p's components followed by other's.
func (p Path) Concat(other Path) Path {
	if len(other.comps) == 0 {
		return p
	}
	comps := make([]Component, 0, len(p.comps)+len(other.comps))
	comps = append(comps, p.comps...)
	comps = append(comps, other.comps...)
	return Path{comps: comps}
}

// ConnectTo returns prefix followed by p.
func (p Path) ConnectTo(prefix Path) Path { return prefix.Concat(p) }

// Equal reports whether both paths have the same length and pairwise equal
// components under index normalization.
func (p Path) Equal(other Path) bool {
	if len(p.comps) != len(other.comps) {
		return false
	}
	for i, c := range p.comps {
		if !c.Equal(other.comps[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix's components are an initial segment of p's.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.comps) > len(p.comps) {
		return false
	}
	for i, c := range prefix.comps {
		if !c.Equal(p.comps[i]) {
			return false
		}
	}
	return true
}

// String returns the canonical encoding of the path. The root is "$";
// identifier-like properties append ".name", any other property appends a
// bracketed double-quoted JSON string, and indexes append "[i]". This string
// is the stable identity of the path: it is used as the Changeset key and
// round-trips through ParsePath.
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, c := range p.comps {
		appendComponent(&b, c)
	}
	return b.String()
}

func appendComponent(b *strings.Builder, c Component) {
	if c.kind == KindIndex {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(c.idx))
		b.WriteByte(']')
		return
	}
	if isIdentifier(c.key) {
		b.WriteByte('.')
		b.WriteString(c.key)
		return
	}
	b.WriteByte('[')
	b.WriteString(jsonQuote(c.key))
	b.WriteByte(']')
}

// isIdentifier reports whether name matches ^[a-zA-Z_][a-zA-Z0-9_]*$.
func isIdentifier(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func jsonQuote(s string) string {
	quoted, err := json.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail.
		panic(err)
	}
	return string(quoted)
}

// MarshalJSON encodes the path as its canonical string.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a canonical path string.
func (p *Path) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePath(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
