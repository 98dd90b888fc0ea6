package treepath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMatcher is returned when a matcher is built from a value that is
// not a literal component, a wildcard marker or a union.
var ErrInvalidMatcher = errors.New("treepath: invalid matcher component")

// Wildcard is a marker accepted by NewMatcher in place of a literal
// component.
type Wildcard int

const (
	// AnyProperty matches any property key and never an array index.
	AnyProperty Wildcard = iota
	// AnyIndex matches any array index and never a property key.
	AnyIndex
)

// UnionOf is a set of literal components, any of which satisfies its slot.
// Build one with Union and pass it to NewMatcher. Mixing properties and
// indexes in one union is legal; the union matches whichever kind the
// actual component is, provided it is a member.
type UnionOf struct {
	parts []any
}

// Union builds a union matcher component from literal properties (strings)
// and indexes (integers). Validation happens in NewMatcher.
func Union(parts ...any) UnionOf {
	return UnionOf{parts: parts}
}

// componentMatcher matches a single path component.
type componentMatcher interface {
	matches(Component) bool
	// allowsGaps reports whether the matcher can select a strict
	// non-contiguous subset of an array's indexes.
	allowsGaps() bool
	encode(b *strings.Builder)
}

type literalMatcher struct {
	c Component
}

func (m literalMatcher) matches(c Component) bool { return m.c.Equal(c) }
func (m literalMatcher) allowsGaps() bool         { return false }
func (m literalMatcher) encode(b *strings.Builder) {
	appendComponent(b, m.c)
}

type anyPropertyMatcher struct{}

func (anyPropertyMatcher) matches(c Component) bool { return c.Kind() == KindProperty }
func (anyPropertyMatcher) allowsGaps() bool         { return false }
func (anyPropertyMatcher) encode(b *strings.Builder) {
	b.WriteString(".*")
}

type anyIndexMatcher struct{}

func (anyIndexMatcher) matches(c Component) bool { return c.Kind() == KindIndex }
func (anyIndexMatcher) allowsGaps() bool         { return true }
func (anyIndexMatcher) encode(b *strings.Builder) {
	b.WriteString("[*]")
}

type unionMatcher struct {
	members []Component
}

func (m unionMatcher) matches(c Component) bool {
	for _, member := range m.members {
		if member.Equal(c) {
			return true
		}
	}
	return false
}

func (m unionMatcher) allowsGaps() bool {
	for _, member := range m.members {
		if _, ok := member.Index(); ok {
			return true
		}
	}
	return false
}

func (m unionMatcher) encode(b *strings.Builder) {
	b.WriteByte('[')
	for i, member := range m.members {
		if i > 0 {
			b.WriteByte(',')
		}
		if idx, ok := member.Index(); ok {
			fmt.Fprintf(b, "%d", idx)
		} else {
			key, _ := member.Key()
			b.WriteString(jsonQuote(key))
		}
	}
	b.WriteByte(']')
}

// Matcher is an immutable pattern over path components. A slot is a literal
// property or index, a wildcard (AnyProperty, AnyIndex) or a union of
// literals. Matchers are constructed once and are safe to share.
type Matcher struct {
	ms []componentMatcher
}

// NewMatcher builds a matcher from literal strings and integers, Components,
// the AnyProperty and AnyIndex markers, and Union values. Invalid parts fail
// at construction with ErrInvalidMatcher, never at use time.
func NewMatcher(parts ...any) (Matcher, error) {
	ms := make([]componentMatcher, len(parts))
	for i, part := range parts {
		m, err := matcherComponent(part)
		if err != nil {
			return Matcher{}, err
		}
		ms[i] = m
	}
	return Matcher{ms: ms}, nil
}

// MustMatcher is like NewMatcher but panics on invalid components.
func MustMatcher(parts ...any) Matcher {
	m, err := NewMatcher(parts...)
	if err != nil {
		panic(err)
	}
	return m
}

func matcherComponent(part any) (componentMatcher, error) {
	switch v := part.(type) {
	case Wildcard:
		switch v {
		case AnyProperty:
			return anyPropertyMatcher{}, nil
		case AnyIndex:
			return anyIndexMatcher{}, nil
		}
		return nil, fmt.Errorf("%w: unknown wildcard %d", ErrInvalidMatcher, int(v))
	case UnionOf:
		if len(v.parts) == 0 {
			return nil, fmt.Errorf("%w: empty union", ErrInvalidMatcher)
		}
		members := make([]Component, len(v.parts))
		for i, part := range v.parts {
			c, err := component(part)
			if err != nil {
				return nil, fmt.Errorf("%w: union member %d: %v", ErrInvalidMatcher, i, err)
			}
			members[i] = c
		}
		return unionMatcher{members: members}, nil
	default:
		c, err := component(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMatcher, err)
		}
		return literalMatcher{c: c}, nil
	}
}

// Len returns the number of component slots.
func (m Matcher) Len() int { return len(m.ms) }

// AllowsGaps reports whether any slot can select a strict non-contiguous
// subset of an array's indexes (an any-index wildcard or an index-bearing
// union). Consumers selecting matches out of arrays may then need to re-pack
// indexes afterwards.
func (m Matcher) AllowsGaps() bool {
	for _, cm := range m.ms {
		if cm.allowsGaps() {
			return true
		}
	}
	return false
}

// Match reports whether path has exactly the matcher's length and every
// component satisfies its slot.
func (m Matcher) Match(path Path) bool {
	if path.Len() != len(m.ms) {
		return false
	}
	return m.matchFirst(path, len(m.ms))
}

// PrefixMatch reports whether the matcher is fully satisfied by the path's
// first Len() components, i.e. whether path lies inside or equals the
// subtree the matcher denotes.
func (m Matcher) PrefixMatch(path Path) bool {
	if path.Len() < len(m.ms) {
		return false
	}
	return m.matchFirst(path, len(m.ms))
}

// PartialMatch reports whether path, which may be shorter than the matcher,
// is consistent with the matcher at every component it has. It is the
// predicate used during top-down descent to decide whether a subtree can
// still produce matches.
func (m Matcher) PartialMatch(path Path) bool {
	if path.Len() > len(m.ms) {
		return false
	}
	return m.matchFirst(path, path.Len())
}

func (m Matcher) matchFirst(path Path, n int) bool {
	for i := 0; i < n; i++ {
		if !m.ms[i].matches(path.At(i)) {
			return false
		}
	}
	return true
}

// String returns the canonical encoding of the matcher: literals encode as
// in Path.String, AnyProperty as ".*", AnyIndex as "[*]" and unions as a
// bracketed comma-separated member list. It round-trips through
// ParseMatcher (a single-member union re-parses as the equivalent literal).
func (m Matcher) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, cm := range m.ms {
		cm.encode(&b)
	}
	return b.String()
}
