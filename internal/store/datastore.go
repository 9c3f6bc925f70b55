package store

// DataStore is the interface for indexing-phase writes. Both Store (direct
// SQLite) and BatchedStore (in-memory buffering for parallel indexing)
// implement this interface.
type DataStore interface {
	InsertCallSite(cs *CallSite) (int64, error)
	CallSitesByFile(fileID int64) ([]*CallSite, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
