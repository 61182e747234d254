package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestCompareKeys_Symmetry checks that swapping the arguments flips the sign
for every distinct pair, including ids that are numerically equal but
textually distinct.
*/
func TestCompareKeys_Symmetry(t *testing.T) {
	pairs := []struct {
		name string
		a, b Key
	}{
		{"numeric_ids", Key{ListingID: "2"}, Key{ListingID: "10"}},
		{"textual_ids", Key{ListingID: "UA01"}, Key{ListingID: "UA02"}},
		{"mixed_ids", Key{ListingID: "10"}, Key{ListingID: "UA01"}},
		{"leading_zero", Key{ListingID: "01"}, Key{ListingID: "1"}},
		{"extensions", Key{ListingID: "1", Extension: "PB"}, Key{ListingID: "1", Extension: "PN"}},
	}

	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			forward := compareKeys(p.a, p.b)
			assert.NotZero(t, forward)
			assert.Equal(t, -forward, compareKeys(p.b, p.a))
		})
	}

	self := Key{ListingID: "01", Extension: "PB"}
	assert.Zero(t, compareKeys(self, self))
}

/*
TestSortKeys_NaturalOrder sorts a mix of numeric and textual ids and expects
numeric order for numbers, lexical order otherwise.
*/
func TestSortKeys_NaturalOrder(t *testing.T) {
	keys := []Key{
		{ListingID: "10"},
		{ListingID: "1"},
		{ListingID: "01"},
		{ListingID: "2"},
		{ListingID: "2", Extension: "PB"},
	}

	sortKeys(keys)

	assert.Equal(t, []Key{
		{ListingID: "01"},
		{ListingID: "1"},
		{ListingID: "2"},
		{ListingID: "2", Extension: "PB"},
		{ListingID: "10"},
	}, keys)
}
