package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Expander preprocesses free-text queries before they reach the full-text
// match. It is a swappable strategy: the default only normalizes, and a host
// application can install a richer implementation (spell correction, synonym
// broadening) without touching the indexer.
type Expander interface {
	Expand(query string) string
}

// ExpanderFunc adapts a function to the [Expander] interface.
type ExpanderFunc func(query string) string

// Expand implements [Expander].
func (f ExpanderFunc) Expand(query string) string { return f(query) }

// Fold is the default expander: case-folds, strips diacritics, and collapses
// whitespace. It keeps query-time tokens comparable with the indexed text
// without changing what the query means.
var Fold Expander = ExpanderFunc(fold)

// foldTransformer decomposes to NFD, removes combining marks, and recomposes,
// so "Éclair" folds to "Eclair".
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(query string) string {
	folded, _, err := transform.String(foldTransformer, query)
	if err != nil {
		// Normalization failure leaves the query usable as-is.
		folded = query
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Chain composes expanders left to right.
func Chain(expanders ...Expander) Expander {
	return ExpanderFunc(func(query string) string {
		for _, e := range expanders {
			query = e.Expand(query)
		}
		return query
	})
}
