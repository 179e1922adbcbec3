// Package span implements the non-owning source span and the identifier
// interner (C2 of the compiler core).
package span

import "sync"

// Source is a handle to one unit of source text. Spans never own text; they
// only reference a Source by pointer identity plus a byte range.
type Source struct {
	Name string
	Text string
}

func NewSource(name, text string) *Source {
	return &Source{Name: name, Text: text}
}

func (s *Source) Len() int { return len(s.Text) }

// Span is an immutable, non-owning reference into a Source's text. Two spans
// are equal iff their byte ranges are equal (the invariant is start<=end<=len,
// enforced at construction by New).
type Span struct {
	Source *Source
	Start  int
	End    int
}

// New builds a Span, panicking on invariant violation: this is a programmer
// error at every call site (out-of-range spans are never something the core
// should try to recover from).
func New(src *Source, start, end int) Span {
	if start < 0 || end < start || (src != nil && end > src.Len()) {
		panic("span: invalid byte range")
	}
	return Span{Source: src, Start: start, End: end}
}

// Dummy returns a span carrying no source position, used by organizational
// nodes (see reach.Graph) that have no corresponding source text.
func Dummy() Span { return Span{} }

func (s Span) IsDummy() bool { return s.Source == nil && s.Start == 0 && s.End == 0 }

func (s Span) Text() string {
	if s.Source == nil {
		return ""
	}
	return s.Source.Text[s.Start:s.End]
}

// Contains reports whether s strictly contains other: same source, and
// other's range is a proper subset of s's range. Used by dead-code span
// minimality (spec §4.3, §8).
func (s Span) Contains(other Span) bool {
	if s.Source != other.Source || s.Source == nil {
		return false
	}
	if s.Start <= other.Start && other.End <= s.End {
		return s.Start != other.Start || s.End != other.End
	}
	return false
}

// Eq is equality on byte range only, per the data-model invariant in spec §3.
func (s Span) Eq(other Span) bool {
	return s.Start == other.Start && s.End == other.End
}

// Union returns the smallest span covering both s and other; both must share
// a source.
func Union(a, b Span) Span {
	if a.Source == nil {
		return b
	}
	if b.Source == nil {
		return a
	}
	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Span{Source: a.Source, Start: start, End: end}
}

// Symbol is an interned identifier id. Equality of Symbol values is equality
// of identifiers; it never touches string contents.
type Symbol uint32

// Interner stores one canonical copy of each identifier string. It is
// append-only and safe for concurrent use: the single mutex around the table
// is cheap because contention between compilation-core callers is negligible
// (spec §5).
type Interner struct {
	mu      sync.Mutex
	strings []string
	ids     map[string]Symbol
}

func NewInterner() *Interner {
	return &Interner{ids: make(map[string]Symbol)}
}

func (in *Interner) Intern(s string) Symbol {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := Symbol(len(in.strings))
	in.strings = append(in.strings, s)
	in.ids[s] = id
	return id
}

func (in *Interner) Lookup(id Symbol) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if int(id) >= len(in.strings) {
		return ""
	}
	return in.strings[id]
}

// Ident is a span plus an interned symbol. Equality is on the symbol id, not
// the span (spec §3).
type Ident struct {
	Span   Span
	Symbol Symbol
}

func (a Ident) Eq(b Ident) bool { return a.Symbol == b.Symbol }
