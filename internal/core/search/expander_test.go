package search_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/urbanatelier/catalog/internal/core/search"
)

/*
TestFold normalizes case, diacritics and whitespace without changing the
query's tokens.
*/
func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"lowercases", "Loft Light", "loft light"},
		{"strips_diacritics", "Éclair Façade", "eclair facade"},
		{"collapses_whitespace", "  urban \t torch \n", "urban torch"},
		{"empty", "", ""},
		{"already_folded", "satin nickel", "satin nickel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, search.Fold.Expand(tt.query))
		})
	}
}

/*
TestChain composes expanders left to right.
*/
func TestChain(t *testing.T) {
	trim := search.ExpanderFunc(func(q string) string { return strings.TrimPrefix(q, "the ") })
	chained := search.Chain(search.Fold, trim)

	assert.Equal(t, "urban torch", chained.Expand("The  Urban   Torch"))
}
