package match

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/corey/namescan/internal/ports"
)

// keywordInfo is one surviving keyword with its precomputed matching budget.
type keywordInfo struct {
	GroupID   string
	Keyword   string // trimmed, lowercased
	Tolerance int    // allowed edit distance from the tier table
	Words     int    // whitespace-separated token count
}

// KeywordIndex is the immutable build-once structure shared read-only by all
// workers. Each worker compiles its own Matcher from it at startup, so no
// mutation happens after Build returns.
type KeywordIndex struct {
	keywords []keywordInfo  // build order; ties resolve to the earliest entry
	exact    map[string]int // lowercased keyword -> position in keywords
	tiers    TierTable

	duplicates int
	maxWords   int
}

// BuildIndex case-folds, trims and deduplicates the entries, computes each
// survivor's edit-distance tolerance from the tier table, and returns the
// index. A keyword string maps to at most one group: when a later entry
// repeats an already-seen keyword under any group, the later entry is
// discarded and counted. An empty entry list is not an error, just worth a
// warning: the resulting matcher never matches while downstream
// stages still run.
func BuildIndex(entries []ports.KeywordEntry, tiers TierTable, log zerolog.Logger) *KeywordIndex {
	idx := &KeywordIndex{
		exact: make(map[string]int, len(entries)),
		tiers: tiers,
	}

	for _, e := range entries {
		kw := strings.ToLower(strings.TrimSpace(e.Keyword))
		if kw == "" {
			idx.duplicates++
			continue
		}
		if _, seen := idx.exact[kw]; seen {
			// First occurrence wins.
			log.Debug().Str("keyword", kw).Str("group", e.GroupID).Msg("duplicate keyword discarded")
			idx.duplicates++
			continue
		}
		words := len(strings.Fields(kw))
		if words > idx.maxWords {
			idx.maxWords = words
		}
		idx.exact[kw] = len(idx.keywords)
		idx.keywords = append(idx.keywords, keywordInfo{
			GroupID:   e.GroupID,
			Keyword:   kw,
			Tolerance: tiers.Distance(len(kw)),
			Words:     words,
		})
	}

	if len(idx.keywords) == 0 {
		log.Warn().Msg("keyword index is empty, matcher will never match")
	} else {
		log.Info().
			Int("keywords", len(idx.keywords)).
			Int("duplicates", idx.duplicates).
			Msg("keyword index built")
	}
	return idx
}

// Len returns the number of distinct keywords in the index.
func (idx *KeywordIndex) Len() int { return len(idx.keywords) }

// Duplicates returns how many entries were discarded during the build
// (repeated keyword strings and blank keywords).
func (idx *KeywordIndex) Duplicates() int { return idx.duplicates }

// GroupOf returns the group ID that owns the exact lowercased keyword, and
// whether the keyword is in the index.
func (idx *KeywordIndex) GroupOf(keyword string) (string, bool) {
	pos, ok := idx.exact[keyword]
	if !ok {
		return "", false
	}
	return idx.keywords[pos].GroupID, true
}
