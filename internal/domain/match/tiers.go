// Package match implements the fuzzy multi-keyword matcher: a keyword index
// built once per job and a per-worker matcher that reports, per group, every
// approximate occurrence in a text blob.
package match

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tier maps keyword length to an allowed edit distance: keywords longer than
// MinLen tolerate up to Distance single-character edits.
type Tier struct {
	MinLen   int
	Distance int
}

// TierTable is a step function from string length to allowed edit distance,
// ordered ascending by MinLen. The matcher and the deduplicator each get
// their own table; the two usually differ.
type TierTable []Tier

// NewTierTable sorts the tiers ascending by MinLen and returns the table.
// An empty table is valid: every keyword gets distance 0 (exact only).
func NewTierTable(tiers []Tier) TierTable {
	t := make(TierTable, len(tiers))
	copy(t, tiers)
	sort.Slice(t, func(i, j int) bool { return t[i].MinLen < t[j].MinLen })
	return t
}

// Distance returns the allowed edit distance for a string of the given
// length: the Distance of the last tier whose MinLen is strictly below
// length, or 0 when no tier applies.
func (t TierTable) Distance(length int) int {
	d := 0
	for _, tier := range t {
		if length > tier.MinLen {
			d = tier.Distance
		}
	}
	return d
}

// MaxDistance returns the largest distance any tier grants.
func (t TierTable) MaxDistance() int {
	max := 0
	for _, tier := range t {
		if tier.Distance > max {
			max = tier.Distance
		}
	}
	return max
}

// ParseTierSpecs parses CLI tier specs of the form "MINLEN:DIST"
// (e.g. "10:1", "15:2") into a TierTable.
func ParseTierSpecs(specs []string) (TierTable, error) {
	tiers := make([]Tier, 0, len(specs))
	for _, s := range specs {
		minStr, distStr, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("bad fuzzy tier %q: want MINLEN:DIST", s)
		}
		minLen, err := strconv.Atoi(strings.TrimSpace(minStr))
		if err != nil {
			return nil, fmt.Errorf("bad fuzzy tier %q: %w", s, err)
		}
		dist, err := strconv.Atoi(strings.TrimSpace(distStr))
		if err != nil {
			return nil, fmt.Errorf("bad fuzzy tier %q: %w", s, err)
		}
		if minLen < 0 || dist < 0 {
			return nil, fmt.Errorf("bad fuzzy tier %q: negative value", s)
		}
		tiers = append(tiers, Tier{MinLen: minLen, Distance: dist})
	}
	return NewTierTable(tiers), nil
}

// TiersFromEditLengths converts the preprocess-style edit-length list into a
// TierTable: the i-th length L (ascending) grants distance i+1 to names
// longer than L.
func TiersFromEditLengths(lengths []int) TierTable {
	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)
	tiers := make([]Tier, 0, len(sorted))
	for i, l := range sorted {
		tiers = append(tiers, Tier{MinLen: l, Distance: i + 1})
	}
	return NewTierTable(tiers)
}
