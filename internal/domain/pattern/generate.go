// Package pattern expands structured name records into the candidate keyword
// list consumed by the matcher: combinatorial template expansion followed by
// a pairwise edit-distance deduplication pass.
package pattern

import (
	"strings"

	"github.com/corey/namescan/internal/ports"
)

// Multi-value field tokens. "Prefix" and "NickName" expand to the row's
// semicolon-delimited lists; every other template token reads a single
// column, lowercased.
const (
	tokenPrefix   = "Prefix"
	tokenNickName = "NickName"

	colPrefixes  = "prefixes"
	colNickNames = "nick_names"
)

// Generate expands one name record through each template and returns the
// surviving candidates plus the number discarded. A candidate survives when,
// after empty field values are removed, more than one token remains and the
// joined name is not an exact entry in dropList.
func Generate(row map[string]string, idColumn string, templates []string, dropList map[string]bool) ([]ports.Candidate, int) {
	var out []ports.Candidate
	dropped := 0

	for _, tmpl := range templates {
		fields := strings.Fields(tmpl)
		if len(fields) == 0 {
			continue
		}

		values := make([][]string, len(fields))
		for i, f := range fields {
			switch f {
			case tokenPrefix:
				values[i] = strings.Split(row[colPrefixes], ";")
			case tokenNickName:
				values[i] = strings.Split(row[colNickNames], ";")
			default:
				values[i] = []string{strings.ToLower(row[f])}
			}
		}

		for _, combo := range product(values) {
			parts := combo[:0]
			for _, v := range combo {
				if v != "" {
					parts = append(parts, v)
				}
			}
			if len(parts) <= 1 {
				dropped++
				continue
			}
			name := strings.Join(parts, " ")
			if dropList[name] {
				dropped++
				continue
			}
			out = append(out, ports.Candidate{
				SourceRowID: row[idColumn],
				Template:    tmpl,
				Name:        name,
				Row:         row,
			})
		}
	}
	return out, dropped
}

// product returns the cartesian product of the per-token value lists, in
// lexicographic order of the input positions.
func product(values [][]string) [][]string {
	n := 1
	for _, v := range values {
		n *= len(v)
	}
	if n == 0 {
		return nil
	}
	out := make([][]string, 0, n)
	combo := make([]string, len(values))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(values) {
			c := make([]string, len(combo))
			copy(c, combo)
			out = append(out, c)
			return
		}
		for _, v := range values[depth] {
			combo[depth] = v
			walk(depth + 1)
		}
	}
	walk(0)
	return out
}
