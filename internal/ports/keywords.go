// Package ports defines the interfaces (contracts) and shared data types that
// adapters must implement. These are the boundaries of the hexagonal
// architecture. Domain logic depends only on these, never on concrete
// implementations.
package ports

// KeywordEntry is one row of the keyword input file: a search name and the
// group (entity) it resolves to. A group may own many keyword variants, but a
// keyword string maps to at most one group: the first occurrence wins and
// later conflicting entries are discarded and counted.
type KeywordEntry struct {
	GroupID string
	Keyword string
}

// MatchSpan is a single occurrence of a keyword inside a document, with byte
// offsets into the (possibly cleaned) source text. Text preserves the case of
// the occurrence as it appears in the source.
type MatchSpan struct {
	Text  string
	Start int
	End   int
}

// ResultFields are the per-slot output columns, in fixed order. The output
// header repeats them once per result slot as "name{i}.{field}".
var ResultFields = []string{"uniqid", "n", "match", "start", "end"}

// Candidate is one generated search-name string, tagged with the entity row
// it was expanded from and the template that produced it.
type Candidate struct {
	SourceRowID string
	Template    string
	Name        string
	// Row carries the full source record so the deduplicated output can
	// reproduce the original columns plus search_name.
	Row map[string]string
}
