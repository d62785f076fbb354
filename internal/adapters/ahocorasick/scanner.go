// Package ahocorasick provides multi-pattern literal matching using an
// Aho-Corasick automaton. It wraps the petar-dambovaliev/aho-corasick library
// for O(n + m + z) scanning of thousands of keywords in a single pass.
package ahocorasick

import (
	aho "github.com/petar-dambovaliev/aho-corasick"
)

// Span is one raw automaton hit with byte offsets into the scanned content.
type Span struct {
	PatternIndex int // index into the original patterns slice
	Start        int // byte offset start (inclusive)
	End          int // byte offset end (exclusive)
}

// SpanScanner wraps an Aho-Corasick automaton for exact-literal keyword
// scanning. It reports overlapping hits with byte offsets; the caller filters
// by word boundaries and resolves overlaps against fuzzy candidates.
type SpanScanner struct {
	automaton aho.AhoCorasick
	patterns  []string
}

// NewSpanScanner builds a scanner from the given patterns. Matching is
// byte-exact: callers normalize case before building and before scanning.
func NewSpanScanner(patterns []string) *SpanScanner {
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	p := make([]string, len(patterns))
	copy(p, patterns)
	return &SpanScanner{
		automaton: builder.Build(p),
		patterns:  p,
	}
}

// Scan finds all pattern occurrences in content, overlapping included, and
// returns them with byte offsets.
func (s *SpanScanner) Scan(content []byte) []Span {
	if len(s.patterns) == 0 {
		return nil
	}
	iter := s.automaton.IterOverlappingByte(content)
	var spans []Span
	for next := iter.Next(); next != nil; next = iter.Next() {
		m := *next
		spans = append(spans, Span{
			PatternIndex: m.Pattern(),
			Start:        m.Start(),
			End:          m.End(),
		})
	}
	return spans
}

// PatternCount returns the number of patterns in the automaton.
func (s *SpanScanner) PatternCount() int {
	return len(s.patterns)
}

// Pattern returns the pattern string at the given index.
func (s *SpanScanner) Pattern(idx int) string {
	if idx < 0 || idx >= len(s.patterns) {
		return ""
	}
	return s.patterns[idx]
}
