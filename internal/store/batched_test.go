package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchedStore_CallSitesByFile_ReturnsBufferedRows(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	// Insert a real file into the database (simulates the prepare phase).
	f := insertTestFile(t, s, "/index.php", "php")

	batch := NewBatchedStore(s)
	id1, err := batch.InsertCallSite(&CallSite{FileID: f.ID, Alias: "a", Name: "a", StartLine: 1, EndLine: 1})
	require.NoError(t, err)
	assert.Negative(t, id1, "batched IDs should be negative")

	id2, err := batch.InsertCallSite(&CallSite{FileID: f.ID, Alias: "b", Name: "b", StartLine: 2, EndLine: 2})
	require.NoError(t, err)
	assert.Less(t, id2, id1)

	sites, err := batch.CallSitesByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	for _, cs := range sites {
		assert.Negative(t, cs.ID, "buffered call sites should have negative IDs")
	}
}

func TestBatchedStore_CallSitesByFile_MergesWithDatabase(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "/index.php", "php")
	other := insertTestFile(t, s, "/other.php", "php")
	insertTestCallSite(t, s, f.ID, "existing", 1, 1)

	batch := NewBatchedStore(s)
	_, err := batch.InsertCallSite(&CallSite{FileID: f.ID, Alias: "new", Name: "new", StartLine: 3, EndLine: 3})
	require.NoError(t, err)
	_, err = batch.InsertCallSite(&CallSite{FileID: other.ID, Alias: "elsewhere", Name: "elsewhere"})
	require.NoError(t, err)

	sites, err := batch.CallSitesByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	aliases := []string{sites[0].Alias, sites[1].Alias}
	assert.Contains(t, aliases, "existing")
	assert.Contains(t, aliases, "new")
}

func TestCommitBatch(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "/index.php", "php")

	batch := NewBatchedStore(s)
	for i := 1; i <= 3; i++ {
		_, err := batch.InsertCallSite(&CallSite{
			FileID: f.ID, Alias: "example::setvalue", Class: "Example", Name: "setValue",
			StartLine: i, EndLine: i, Modifiers: []string{"!"},
		})
		require.NoError(t, err)
	}
	require.Equal(t, 3, batch.Len())

	require.NoError(t, s.CommitBatch(batch))
	for _, cs := range batch.CallSites {
		assert.Positive(t, cs.ID, "committed rows carry real IDs")
	}

	sites, err := s.CallSitesByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, sites, 3)
	assert.Equal(t, []string{"!"}, sites[2].Modifiers)
	assert.Equal(t, 3, sites[2].StartLine)
}

func TestCommitBatch_RejectsMissingFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	batch := NewBatchedStore(s)
	_, err := batch.InsertCallSite(&CallSite{Alias: "orphan", Name: "orphan"})
	require.NoError(t, err)

	require.Error(t, s.CommitBatch(batch))
	sites, err := s.CallSites(CallSiteFilter{})
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestBatchedStore_ConcurrentInserts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "/index.php", "php")
	batch := NewBatchedStore(s)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = batch.InsertCallSite(&CallSite{FileID: f.ID, Alias: "a", Name: "a", StartLine: i, EndLine: i})
		}()
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, cs := range batch.CallSites {
		assert.False(t, seen[cs.ID], "duplicate fake id %d", cs.ID)
		seen[cs.ID] = true
	}
	assert.Len(t, seen, 8)
}
