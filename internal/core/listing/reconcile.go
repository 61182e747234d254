package listing

import "github.com/urbanatelier/catalog/internal/platform/apperr"

// reconcile diffs incoming records against the keys currently stored and
// applies the minimal set of changes: new keys are inserted, shared keys are
// updated in place, and keys absent from the incoming set are removed.
// Running it twice with the same input is a no-op the second time.
func reconcile[T any, K comparable](incoming []T, existing []K, key func(T) K,
	insert, update func(T) error, remove func(K) error) error {

	current := make(map[K]bool, len(existing))
	for _, k := range existing {
		current[k] = true
	}

	seen := make(map[K]bool, len(incoming))
	for _, rec := range incoming {
		k := key(rec)
		if seen[k] {
			return apperr.Conflict("duplicate key in incoming records", nil)
		}
		seen[k] = true

		if current[k] {
			if err := update(rec); err != nil {
				return err
			}
		} else {
			if err := insert(rec); err != nil {
				return err
			}
		}
	}

	for _, k := range existing {
		if !seen[k] {
			if err := remove(k); err != nil {
				return err
			}
		}
	}
	return nil
}

// diffIDs splits incoming against existing into the ids to add and the ids to
// drop. Ids present in both sets are untouched.
func diffIDs(incoming, existing []int) (added, removed []int) {
	have := make(map[int]bool, len(existing))
	for _, id := range existing {
		have[id] = true
	}
	want := make(map[int]bool, len(incoming))
	for _, id := range incoming {
		if want[id] {
			continue
		}
		want[id] = true
		if !have[id] {
			added = append(added, id)
		}
	}
	for _, id := range existing {
		if !want[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}
