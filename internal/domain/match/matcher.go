package match

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/corey/namescan/internal/adapters/ahocorasick"
	"github.com/corey/namescan/internal/ports"
)

// Group holds every occurrence resolved to one group ID within a single
// document, in left-to-right scan order. A zero Group is an empty padding
// slot in a fixed-width result row.
type Group struct {
	GroupID string
	Spans   []ports.MatchSpan
}

// Count returns how many occurrences the group collected.
func (g Group) Count() int { return len(g.Spans) }

// Matcher scans text against every keyword of a KeywordIndex at once. Each
// worker builds its own Matcher from the shared read-only index, paying the
// automaton construction cost once per worker rather than once per row.
type Matcher struct {
	idx     *KeywordIndex
	scanner *ahocorasick.SpanScanner
	fuzzy   []int // positions of keywords with tolerance > 0
}

// NewMatcher compiles the combined matching automaton for the index: every
// keyword contributes an exact-literal alternative, and keywords whose tier
// grants a nonzero tolerance additionally participate in the approximate
// window scan.
func NewMatcher(idx *KeywordIndex) *Matcher {
	patterns := make([]string, len(idx.keywords))
	var fuzzy []int
	for i, kw := range idx.keywords {
		patterns[i] = kw.Keyword
		if kw.Tolerance > 0 {
			fuzzy = append(fuzzy, i)
		}
	}
	return &Matcher{
		idx:     idx,
		scanner: ahocorasick.NewSpanScanner(patterns),
		fuzzy:   fuzzy,
	}
}

// spanCand is a raw match span before overlap resolution.
type spanCand struct {
	start, end int
	exact      bool
	dist       int
}

// Search scans text once and returns exactly maxGroups result slots: groups
// in the order each group ID is first encountered left to right, padded with
// empty slots when fewer groups matched, plus the total occurrence count
// across all matched groups, independent of the cap.
//
// maxGroups == 0 returns no slots and no error. Empty or unmatchable text
// yields padded empty slots with a zero total.
func (m *Matcher) Search(text string, maxGroups int) ([]Group, int) {
	if maxGroups <= 0 {
		return nil, 0
	}
	slots := make([]Group, maxGroups)
	if m.idx.Len() == 0 || text == "" {
		return slots, 0
	}

	lowered := foldASCII(text)
	cands := m.exactSpans(text, lowered)
	cands = append(cands, m.fuzzySpans(text, lowered)...)
	selected := selectSpans(cands)

	// Group by resolved ID in first-encounter order.
	order := make([]string, 0, 8)
	groups := make(map[string][]ports.MatchSpan)
	total := 0
	for _, c := range selected {
		gid, ok := m.resolve(lowered[c.start:c.end])
		if !ok {
			continue
		}
		if _, seen := groups[gid]; !seen {
			order = append(order, gid)
		}
		groups[gid] = append(groups[gid], ports.MatchSpan{
			Text:  text[c.start:c.end],
			Start: c.start,
			End:   c.end,
		})
		total++
	}

	for i, gid := range order {
		if i >= maxGroups {
			break
		}
		slots[i] = Group{GroupID: gid, Spans: groups[gid]}
	}
	return slots, total
}

// resolve maps a lowercased matched span to its group ID: an exact index hit
// when the span is a keyword verbatim, otherwise the nearest keyword whose
// tolerance admits the span. Equal distances resolve to the first keyword in
// index build order.
func (m *Matcher) resolve(span string) (string, bool) {
	if gid, ok := m.idx.GroupOf(span); ok {
		return gid, true
	}
	best := -1
	bestDist := 0
	for _, pos := range m.fuzzy {
		kw := m.idx.keywords[pos]
		if diff := len(span) - len(kw.Keyword); diff > kw.Tolerance || -diff > kw.Tolerance {
			continue
		}
		d := levenshtein.ComputeDistance(span, kw.Keyword)
		if d > kw.Tolerance {
			continue
		}
		if best == -1 || d < bestDist {
			best, bestDist = pos, d
		}
	}
	if best == -1 {
		return "", false
	}
	return m.idx.keywords[best].GroupID, true
}

// exactSpans runs the automaton over the folded text and keeps hits anchored
// at word boundaries on both sides.
func (m *Matcher) exactSpans(text, lowered string) []spanCand {
	var out []spanCand
	for _, s := range m.scanner.Scan([]byte(lowered)) {
		if !boundedWord(text, s.Start, s.End) {
			continue
		}
		out = append(out, spanCand{start: s.Start, end: s.End, exact: true})
	}
	return out
}

// fuzzySpans is the explicit bounded nearest-key scan: for each keyword with
// tolerance d spanning w words, windows of w-d..w+d consecutive words whose
// byte length is within d of the keyword's are compared by edit distance.
func (m *Matcher) fuzzySpans(text, lowered string) []spanCand {
	if len(m.fuzzy) == 0 {
		return nil
	}
	words := wordSpans(text)
	if len(words) == 0 {
		return nil
	}

	var out []spanCand
	seen := make(map[[2]int]bool)
	for _, pos := range m.fuzzy {
		kw := m.idx.keywords[pos]
		minW, maxW := kw.Words-kw.Tolerance, kw.Words+kw.Tolerance
		if minW < 1 {
			minW = 1
		}
		for n := minW; n <= maxW; n++ {
			for i := 0; i+n <= len(words); i++ {
				start, end := words[i][0], words[i+n-1][1]
				if diff := (end - start) - len(kw.Keyword); diff > kw.Tolerance || -diff > kw.Tolerance {
					continue
				}
				key := [2]int{start, end}
				if seen[key] {
					continue
				}
				d := levenshtein.ComputeDistance(lowered[start:end], kw.Keyword)
				if d > kw.Tolerance {
					continue
				}
				seen[key] = true
				out = append(out, spanCand{start: start, end: end, dist: d})
			}
		}
	}
	return out
}

// selectSpans reduces raw candidates to a deterministic non-overlapping
// left-to-right sequence. On overlap the earlier start wins; at equal starts
// an exact hit beats an approximate one, then smaller edit distance, then
// the longer span.
func selectSpans(cands []spanCand) []spanCand {
	if len(cands) == 0 {
		return nil
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.exact != b.exact {
			return a.exact
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.end > b.end
	})
	out := cands[:0]
	lastEnd := -1
	for _, c := range cands {
		if c.start < lastEnd {
			continue
		}
		out = append(out, c)
		lastEnd = c.end
	}
	return out
}

// foldASCII lowercases A-Z only, keeping byte offsets identical to the
// source text. Keywords are cleaned and accent-stripped upstream, so ASCII
// folding is sufficient and offset-stable.
func foldASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

// isWordRune reports whether r is part of a word, mirroring regex \w.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// boundedWord reports whether text[start:end] sits on word boundaries.
func boundedWord(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// wordSpans returns the byte offsets of each maximal word-rune run.
func wordSpans(text string) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(text)})
	}
	return spans
}
