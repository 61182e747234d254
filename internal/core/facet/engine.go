package facet

import "context"

// Engine computes filtered key sets from tag selections and free text.
type Engine struct {
	store Store
}

// NewEngine constructs an engine over a membership store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Filter returns the keys matching the free-text query and the tag filters.
//
// # Semantics
//
//   - Within a category, selected tags are alternatives: a key matches the
//     category if it carries any of them.
//   - Across categories, every supplied category must match (intersection).
//   - A category with an empty selection is ignored, not "matches nothing".
//   - Unknown tag ids produce an empty category set, which empties the
//     intersection — an expected no-match outcome, not an error.
//   - With free text, the result is further intersected with the ranked
//     candidate set and keeps its rank order; otherwise keys come back in
//     natural id order.
//   - No text and no filters means no filtering: every key of the kind.
func (e *Engine) Filter(ctx context.Context, kind Kind, freeText string, tagFilters map[int][]int) ([]Key, error) {
	var members map[Key]struct{}
	constrained := false

	for _, tagIDs := range tagFilters {
		if len(tagIDs) == 0 {
			continue
		}
		categoryKeys, err := e.store.TagKeys(ctx, kind, tagIDs)
		if err != nil {
			return nil, err
		}
		categorySet := toSet(categoryKeys)
		if !constrained {
			members = categorySet
			constrained = true
			continue
		}
		members = intersect(members, categorySet)
	}

	if freeText != "" {
		candidates, err := e.store.SearchKeys(ctx, kind, freeText)
		if err != nil {
			return nil, err
		}
		result := make([]Key, 0, len(candidates))
		for _, candidate := range candidates {
			if constrained {
				if _, ok := members[candidate.Key]; !ok {
					continue
				}
			}
			result = append(result, candidate.Key)
		}
		return result, nil
	}

	if !constrained {
		return e.store.AllKeys(ctx, kind)
	}

	result := make([]Key, 0, len(members))
	for key := range members {
		result = append(result, key)
	}
	sortKeys(result)
	return result, nil
}

func toSet(keys []Key) map[Key]struct{} {
	set := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func intersect(a, b map[Key]struct{}) map[Key]struct{} {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[Key]struct{}, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}
