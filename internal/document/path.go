package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a map key or a list index.
type Segment struct {
	Key     string
	Index   int
	isIndex bool
}

func keySegment(k string) Segment { return Segment{Key: k} }

func indexSegment(i int) Segment { return Segment{Index: i, isIndex: true} }

// Path addresses a value inside a document.
type Path []Segment

// ParsePath parses a dotted path with optional [n] list indices, e.g.
// "bodies.Earth.ephemeris" or "propagators[0].centralBodies".
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	var p Path
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", s)
		}
		key := part
		var idx []int
		if open := strings.IndexByte(part, '['); open >= 0 {
			key = part[:open]
			rest := part[open:]
			for rest != "" {
				if rest[0] != '[' {
					return nil, fmt.Errorf("invalid path %q: unexpected %q", s, rest)
				}
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					return nil, fmt.Errorf("invalid path %q: unterminated index", s)
				}
				n, err := strconv.Atoi(rest[1:end])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("invalid path %q: bad index %q", s, rest[1:end])
				}
				idx = append(idx, n)
				rest = rest[end+1:]
			}
		}
		if key != "" {
			p = append(p, keySegment(key))
		}
		for _, n := range idx {
			p = append(p, indexSegment(n))
		}
	}
	return p, nil
}

// MustPath is ParsePath for compile-time constant paths. It panics on a
// malformed path.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Key returns a new path extended by a map key.
func (p Path) Key(k string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, keySegment(k))
}

// Index returns a new path extended by a list index.
func (p Path) Index(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, indexSegment(i))
}

// String renders the canonical dotted form used in error messages.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.isIndex {
			fmt.Fprintf(&b, "[%d]", s.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}
