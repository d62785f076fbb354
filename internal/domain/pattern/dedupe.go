package pattern

import (
	"github.com/agnivade/levenshtein"

	"github.com/corey/namescan/internal/ports"
)

// tierLookup is the step function from name length to allowed edit distance.
// Satisfied by match.TierTable.
type tierLookup interface {
	Distance(length int) int
}

// Deduplicate removes near-duplicate candidates with a full pairwise pass
// over the original, un-mutated list. For each pair (i, j), i < j, where i
// was not marked before its row of comparisons began, the allowed distance
// comes from the tier table applied to candidate i's length alone. Within
// the threshold, candidates from different source rows are ambiguous and
// both are dropped; candidates from the same source row keep the
// earliest-generated form and drop j. The pass is O(n²) over the candidate
// list and the tie-break rules must not change: which form survives decides
// which group ID a downstream match reports.
func Deduplicate(cands []ports.Candidate, tiers tierLookup) ([]ports.Candidate, int) {
	marked := make([]bool, len(cands))

	for i := range cands {
		if marked[i] {
			continue
		}
		maxDist := tiers.Distance(len(cands[i].Name))
		for j := i + 1; j < len(cands); j++ {
			if levenshtein.ComputeDistance(cands[i].Name, cands[j].Name) > maxDist {
				continue
			}
			if cands[i].SourceRowID != cands[j].SourceRowID {
				marked[i] = true
				marked[j] = true
			} else {
				marked[j] = true
			}
		}
	}

	removed := 0
	out := make([]ports.Candidate, 0, len(cands))
	for i, c := range cands {
		if marked[i] {
			removed++
			continue
		}
		out = append(out, c)
	}
	return out, removed
}
