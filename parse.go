package treepath

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ErrInvalidPath is returned when a textual path or matcher expression does
// not parse.
var ErrInvalidPath = errors.New("treepath: invalid path expression")

// ParsePath parses a textual path expression into a Path. The grammar is the
// canonical encoding produced by Path.String: "$" followed by ".name"
// segments, bracketed quoted properties and bracketed integer indexes.
// Double-quoted segments use JSON string escaping; single-quoted segments
// are accepted on input with the same escapes. Wildcards and unions are
// rejected here; use ParseMatcher for patterns.
//
// For any Path p, ParsePath(p.String()) yields a Path equal to p.
func ParsePath(s string) (Path, error) {
	segs, err := scanSegments(s)
	if err != nil {
		return Path{}, err
	}
	comps := make([]Component, len(segs))
	for i, seg := range segs {
		switch seg.kind {
		case segProperty:
			comps[i] = Property(seg.key)
		case segIndex:
			comps[i] = Index(seg.idx)
		default:
			return Path{}, fmt.Errorf("%w: pattern component %q at offset %d in a plain path",
				ErrInvalidPath, seg.raw, seg.off)
		}
	}
	return Path{comps: comps}, nil
}

// MustParsePath is like ParsePath but panics on malformed input.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseMatcher parses a textual pattern expression into a Matcher. On top of
// the ParsePath grammar it accepts ".*" (any property), "[*]" (any index)
// and bracketed unions of comma-separated literals, e.g. `["a",'b',3]`.
//
// For any Matcher m, ParseMatcher(m.String()) yields an equivalent matcher
// (a single-member union re-parses as the literal member).
func ParseMatcher(s string) (Matcher, error) {
	segs, err := scanSegments(s)
	if err != nil {
		return Matcher{}, err
	}
	ms := make([]componentMatcher, len(segs))
	for i, seg := range segs {
		switch seg.kind {
		case segProperty:
			ms[i] = literalMatcher{c: Property(seg.key)}
		case segIndex:
			ms[i] = literalMatcher{c: Index(seg.idx)}
		case segAnyProperty:
			ms[i] = anyPropertyMatcher{}
		case segAnyIndex:
			ms[i] = anyIndexMatcher{}
		case segUnion:
			ms[i] = unionMatcher{members: seg.members}
		}
	}
	return Matcher{ms: ms}, nil
}

// MustParseMatcher is like ParseMatcher but panics on malformed input.
func MustParseMatcher(s string) Matcher {
	m, err := ParseMatcher(s)
	if err != nil {
		panic(err)
	}
	return m
}

type segmentKind int

const (
	segProperty segmentKind = iota
	segIndex
	segAnyProperty
	segAnyIndex
	segUnion
)

type segment struct {
	kind    segmentKind
	key     string
	idx     int
	members []Component
	raw     string
	off     int
}

type scanner struct {
	input string
	pos   int
}

func (sc *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrInvalidPath, fmt.Sprintf(format, args...), sc.pos)
}

func scanSegments(s string) ([]segment, error) {
	sc := &scanner{input: s}
	if len(s) == 0 || s[0] != '$' {
		return nil, sc.errorf("expression must start with '$'")
	}
	sc.pos = 1
	var segs []segment
	for sc.pos < len(sc.input) {
		start := sc.pos
		var (
			seg segment
			err error
		)
		switch sc.input[sc.pos] {
		case '.':
			seg, err = sc.scanDot()
		case '[':
			seg, err = sc.scanBracket()
		default:
			return nil, sc.errorf("expected '.' or '[', got %q", sc.input[sc.pos])
		}
		if err != nil {
			return nil, err
		}
		seg.raw = sc.input[start:sc.pos]
		seg.off = start
		segs = append(segs, seg)
	}
	return segs, nil
}

// scanDot scans ".name" or the any-property wildcard ".*".
func (sc *scanner) scanDot() (segment, error) {
	sc.pos++ // '.'
	if sc.pos < len(sc.input) && sc.input[sc.pos] == '*' {
		sc.pos++
		return segment{kind: segAnyProperty}, nil
	}
	start := sc.pos
	for sc.pos < len(sc.input) && isIdentByte(sc.input[sc.pos], sc.pos > start) {
		sc.pos++
	}
	if sc.pos == start {
		return segment{}, sc.errorf("expected property name after '.'")
	}
	return segment{kind: segProperty, key: sc.input[start:sc.pos]}, nil
}

// scanBracket scans "[i]", a quoted property, "[*]" or a union list.
func (sc *scanner) scanBracket() (segment, error) {
	sc.pos++ // '['
	if sc.pos < len(sc.input) && sc.input[sc.pos] == '*' {
		sc.pos++
		if err := sc.expect(']'); err != nil {
			return segment{}, err
		}
		return segment{kind: segAnyIndex}, nil
	}

	var members []Component
	for {
		c, err := sc.scanLiteral()
		if err != nil {
			return segment{}, err
		}
		members = append(members, c)
		if sc.pos >= len(sc.input) {
			return segment{}, sc.errorf("unterminated '['")
		}
		if sc.input[sc.pos] == ',' {
			sc.pos++
			continue
		}
		break
	}
	if err := sc.expect(']'); err != nil {
		return segment{}, err
	}
	if len(members) > 1 {
		return segment{kind: segUnion, members: members}, nil
	}
	if idx, ok := members[0].Index(); ok {
		return segment{kind: segIndex, idx: idx}, nil
	}
	key, _ := members[0].Key()
	return segment{kind: segProperty, key: key}, nil
}

// scanLiteral scans one bracketed literal: a quoted string or a
// non-negative integer.
func (sc *scanner) scanLiteral() (Component, error) {
	if sc.pos >= len(sc.input) {
		return Component{}, sc.errorf("unterminated '['")
	}
	switch q := sc.input[sc.pos]; q {
	case '"', '\'':
		key, err := sc.scanQuoted(q)
		if err != nil {
			return Component{}, err
		}
		return Property(key), nil
	default:
		start := sc.pos
		for sc.pos < len(sc.input) && sc.input[sc.pos] >= '0' && sc.input[sc.pos] <= '9' {
			sc.pos++
		}
		if sc.pos == start {
			return Component{}, sc.errorf("expected index, quoted property or '*'")
		}
		n, err := strconv.Atoi(sc.input[start:sc.pos])
		if err != nil {
			return Component{}, sc.errorf("bad index %q: %v", sc.input[start:sc.pos], err)
		}
		return Index(n), nil
	}
}

func (sc *scanner) expect(b byte) error {
	if sc.pos >= len(sc.input) || sc.input[sc.pos] != b {
		return sc.errorf("expected %q", string(b))
	}
	sc.pos++
	return nil
}

// scanQuoted scans a string delimited by quote (either '"' or '\''),
// decoding JSON string escapes.
func (sc *scanner) scanQuoted(quote byte) (string, error) {
	sc.pos++ // opening quote
	var b strings.Builder
	for sc.pos < len(sc.input) {
		c := sc.input[sc.pos]
		switch c {
		case quote:
			sc.pos++
			return b.String(), nil
		case '\\':
			if err := sc.scanEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			sc.pos++
		}
	}
	return "", sc.errorf("unterminated string")
}

func (sc *scanner) scanEscape(b *strings.Builder) error {
	if sc.pos+1 >= len(sc.input) {
		return sc.errorf("unterminated escape")
	}
	c := sc.input[sc.pos+1]
	switch c {
	case '"', '\'', '\\', '/':
		b.WriteByte(c)
		sc.pos += 2
	case 'b':
		b.WriteByte('\b')
		sc.pos += 2
	case 'f':
		b.WriteByte('\f')
		sc.pos += 2
	case 'n':
		b.WriteByte('\n')
		sc.pos += 2
	case 'r':
		b.WriteByte('\r')
		sc.pos += 2
	case 't':
		b.WriteByte('\t')
		sc.pos += 2
	case 'u':
		r, err := sc.scanUnicodeEscape()
		if err != nil {
			return err
		}
		b.WriteRune(r)
	default:
		return sc.errorf("unknown escape \\%c", c)
	}
	return nil
}

// scanUnicodeEscape decodes \uXXXX, pairing surrogates like JSON does.
func (sc *scanner) scanUnicodeEscape() (rune, error) {
	r1, err := sc.hex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(r1) && sc.pos+1 < len(sc.input) &&
		sc.input[sc.pos] == '\\' && sc.input[sc.pos+1] == 'u' {
		save := sc.pos
		r2, err := sc.hex4()
		if err != nil {
			return 0, err
		}
		if r := utf16.DecodeRune(r1, r2); r != 0xFFFD {
			return r, nil
		}
		sc.pos = save
	}
	return r1, nil
}

// hex4 consumes "\uXXXX" starting at the backslash.
func (sc *scanner) hex4() (rune, error) {
	if sc.pos+6 > len(sc.input) {
		return 0, sc.errorf("short \\u escape")
	}
	n, err := strconv.ParseUint(sc.input[sc.pos+2:sc.pos+6], 16, 32)
	if err != nil {
		return 0, sc.errorf("bad \\u escape: %v", err)
	}
	sc.pos += 6
	return rune(n), nil
}

func isIdentByte(c byte, notFirst bool) bool {
	if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		return true
	}
	return notFirst && c >= '0' && c <= '9'
}

// jsonUnquote is used in tests to cross-check scanQuoted against
// encoding/json for double-quoted segments.
func jsonUnquote(quoted string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(quoted), &s); err != nil {
		return "", err
	}
	return s, nil
}
