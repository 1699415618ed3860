package matrix

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	CollectionID string
	Entry        map[string]any
}

func TestRunReturnsResultsInInputOrder(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Index: 0, Data: map[string]any{"collection_id": "A"}},
		{Index: 1, Data: map[string]any{"collection_id": "B"}},
		{Index: 2, Data: map[string]any{"collection_id": "C"}},
	}

	results := Run(entries, 2, func(e Entry) fakeResult {
		return fakeResult{CollectionID: e.CollectionID(), Entry: e.Data}
	})

	require.Len(t, results, 3)
	require.Equal(t, "A", results[0].CollectionID)
	require.Equal(t, "B", results[1].CollectionID)
	require.Equal(t, "C", results[2].CollectionID)
}

func TestCollectionIDFallsBackToPositional(t *testing.T) {
	t.Parallel()

	e := Entry{Index: 3, Data: map[string]any{}}
	require.Equal(t, "entry-3", e.CollectionID())
}

func TestRunDoesNotAbortSiblingsOnFailedEntry(t *testing.T) {
	t.Parallel()

	entries := make([]Entry, 5)
	for i := range entries {
		entries[i] = Entry{Index: i, Data: map[string]any{"collection_id": fmt.Sprintf("C%d", i)}}
	}

	results := Run(entries, 2, func(e Entry) fakeResult {
		if e.Index == 2 {
			return fakeResult{CollectionID: "failed"}
		}
		return fakeResult{CollectionID: e.CollectionID()}
	})

	require.Len(t, results, 5)
	require.Equal(t, "failed", results[2].CollectionID)
	require.Equal(t, "C4", results[4].CollectionID)
}
