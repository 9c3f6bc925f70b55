package store

import "sync"

// BatchedStore buffers call site inserts in memory using fake (negative)
// IDs. It implements DataStore so indexing workers can write to it without
// knowing whether they're hitting SQLite or an in-memory buffer.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
// Reads merge the buffer with the underlying Store, which is safe for
// concurrent reads.
type BatchedStore struct {
	store *Store // for read passthrough
	mu    sync.Mutex

	CallSites []CallSite

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by the given Store for read queries.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store:      s,
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertCallSite(cs *CallSite) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	cs.ID = fakeID
	b.CallSites = append(b.CallSites, *cs)
	return fakeID, nil
}

// Len returns the number of buffered call sites.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.CallSites)
}

// CallSitesByFile returns call sites for a file, merging any buffered (not
// yet committed) rows with those already in the database.
func (b *BatchedStore) CallSitesByFile(fileID int64) ([]*CallSite, error) {
	sites, err := b.store.CallSitesByFile(fileID)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.CallSites {
		if b.CallSites[i].FileID == fileID {
			sites = append(sites, &b.CallSites[i])
		}
	}
	return sites, nil
}
