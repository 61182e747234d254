package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
)

type change struct {
	op  string
	key string
}

// record returns callbacks that append to a shared change log.
func record(log *[]change) (func(string) error, func(string) error, func(string) error) {
	insert := func(k string) error { *log = append(*log, change{"insert", k}); return nil }
	update := func(k string) error { *log = append(*log, change{"update", k}); return nil }
	remove := func(k string) error { *log = append(*log, change{"remove", k}); return nil }
	return insert, update, remove
}

func identity(s string) string { return s }

/*
TestReconcile_Diff applies inserts, updates and removals from one diff pass.
*/
func TestReconcile_Diff(t *testing.T) {
	var log []change
	insert, update, remove := record(&log)

	err := reconcile(
		[]string{"PB", "PN", "AB"}, // incoming
		[]string{"PB", "GP"},       // existing
		identity, insert, update, remove,
	)
	require.NoError(t, err)

	assert.Equal(t, []change{
		{"update", "PB"},
		{"insert", "PN"},
		{"insert", "AB"},
		{"remove", "GP"},
	}, log)
}

/*
TestReconcile_Idempotent re-applies the same incoming set against the state
it produced: only in-place updates remain, never inserts or removals.
*/
func TestReconcile_Idempotent(t *testing.T) {
	incoming := []string{"PB", "PN", "AB"}

	var log []change
	insert, update, remove := record(&log)
	require.NoError(t, reconcile(incoming, nil, identity, insert, update, remove))

	settled := make([]string, 0, len(log))
	for _, c := range log {
		settled = append(settled, c.key)
	}

	log = nil
	require.NoError(t, reconcile(incoming, settled, identity, insert, update, remove))

	for _, c := range log {
		assert.Equal(t, "update", c.op)
	}
	assert.Len(t, log, len(incoming))
}

/*
TestReconcile_EmptyIncoming removes everything.
*/
func TestReconcile_EmptyIncoming(t *testing.T) {
	var log []change
	insert, update, remove := record(&log)

	require.NoError(t, reconcile(nil, []string{"PB", "PN"}, identity, insert, update, remove))
	assert.Equal(t, []change{{"remove", "PB"}, {"remove", "PN"}}, log)
}

/*
TestReconcile_DuplicateKey rejects an incoming set with a repeated natural
key before applying anything destructive.
*/
func TestReconcile_DuplicateKey(t *testing.T) {
	var log []change
	insert, update, remove := record(&log)

	err := reconcile([]string{"PB", "PB"}, nil, identity, insert, update, remove)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

/*
TestDiffIDs splits tag id sets into additions and removals.
*/
func TestDiffIDs(t *testing.T) {
	tests := []struct {
		name     string
		incoming []int
		existing []int
		added    []int
		removed  []int
	}{
		{"disjoint", []int{1, 2}, []int{3}, []int{1, 2}, []int{3}},
		{"overlap", []int{1, 2, 3}, []int{2, 3, 4}, []int{1}, []int{4}},
		{"identical", []int{1, 2}, []int{1, 2}, nil, nil},
		{"duplicate_incoming", []int{1, 1, 2}, nil, []int{1, 2}, nil},
		{"both_empty", nil, nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := diffIDs(tt.incoming, tt.existing)
			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.removed, removed)
		})
	}
}
