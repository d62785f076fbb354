// Package clean normalizes document text before matching: case folding,
// accent and punctuation stripping, and English stopword removal. Workers
// apply it per row when the job asks for it, and the cleaned text replaces
// the original in the output.
package clean

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes to NFKD, drops combining marks, and recomposes,
// turning "José" into "Jose".
var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Cleaner implements ports.TextCleaner. Safe for concurrent use: it holds
// only read-only state, so one instance is shared across all workers.
type Cleaner struct {
	stopwords map[string]bool
}

// New returns a Cleaner with the default English stopword list.
func New() *Cleaner {
	sw := make(map[string]bool, len(englishStopwords))
	for _, w := range englishStopwords {
		sw[w] = true
	}
	return &Cleaner{stopwords: sw}
}

// Clean applies the full normalization sequence: lowercase, drop special
// characters (keeping ".", "," and "?"), strip accents, remove stopwords,
// strip remaining punctuation, collapse whitespace.
func (c *Cleaner) Clean(text string) string {
	text = strings.ToLower(text)
	text = removeSpecialChars(text)
	text = removeAccents(text)
	text = c.removeStopwords(text)
	text = removePunctuation(text)
	return strings.Join(strings.Fields(text), " ")
}

// removeSpecialChars drops punctuation and symbols except period, comma and
// question mark, which still carry sentence structure at this stage.
func removeSpecialChars(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == ',' || r == '?' {
			return r
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, text)
}

// removeAccents strips diacritics. On transform failure the input is
// returned unchanged rather than dropped.
func removeAccents(text string) string {
	out, _, err := transform.String(accentStripper, text)
	if err != nil {
		return text
	}
	return out
}

func (c *Cleaner) removeStopwords(text string) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if !c.stopwords[strings.Trim(w, ".,?")] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func removePunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, text)
}
