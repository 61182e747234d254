/*
Package facet answers tag-filtered, optionally text-ranked catalog lookups.

A filter selects tags grouped by category. Within one category the selected
tags are alternatives (a union); across categories they all constrain (an
intersection). The engine computes per-category membership sets over the
association tables, intersects them, and — when free text is supplied —
intersects once more with the ranked full-text candidate set, preserving its
rank order.

The set algebra lives in [Engine] as pure code over a [Store] so it can be
tested without a database.
*/
package facet

import (
	"sort"
	"strconv"
)

// Kind selects which catalog entity family a filter runs over.
type Kind string

const (
	Products Kind = "products"
	Stock    Kind = "stock"
	Salvage  Kind = "salvage"
	Custom   Kind = "custom"
)

// Key identifies one filterable entity. For products it is the composite
// (listing id, variation extension); for the other kinds Extension is empty
// and ListingID carries the record id (numeric ids rendered as strings).
type Key struct {
	ListingID string
	Extension string
}

// Ranked pairs a key with its full-text relevance score.
type Ranked struct {
	Key  Key
	Rank float64
}

// compareKeys orders keys naturally: numeric ids numerically, textual ids
// lexically, extensions last.
func compareKeys(a, b Key) int {
	if a.ListingID != b.ListingID {
		an, aErr := strconv.Atoi(a.ListingID)
		bn, bErr := strconv.Atoi(b.ListingID)
		if aErr == nil && bErr == nil && an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
		// Non-numeric ids, and numerically equal but textually distinct
		// ids ("01" vs "1"), fall back to lexical order.
		if a.ListingID < b.ListingID {
			return -1
		}
		return 1
	}
	switch {
	case a.Extension == b.Extension:
		return 0
	case a.Extension < b.Extension:
		return -1
	default:
		return 1
	}
}

// sortKeys sorts keys in natural id order.
func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return compareKeys(keys[i], keys[j]) < 0 })
}
