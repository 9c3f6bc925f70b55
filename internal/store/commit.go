package store

import (
	"database/sql"
	"fmt"
)

// CommitBatch inserts all buffered call sites from a BatchedStore into
// SQLite within a single transaction. Fake (negative) IDs are replaced by
// the real AUTOINCREMENT IDs on the batch rows.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	realIDs := make([]int64, len(batch.CallSites))
	for i := range batch.CallSites {
		cs := &batch.CallSites[i]
		if cs.FileID <= 0 {
			return fmt.Errorf("commit batch: call site %q has no file id", cs.Alias)
		}
		realID, err := insertCallSiteTx(tx, cs)
		if err != nil {
			return fmt.Errorf("commit batch: call site %q: %w", cs.Alias, err)
		}
		realIDs[i] = realID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	for i := range batch.CallSites {
		batch.CallSites[i].ID = realIDs[i]
	}
	return nil
}

// insertCallSiteTx mirrors InsertCallSite but runs inside tx.
func insertCallSiteTx(tx *sql.Tx, cs *CallSite) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO call_sites (file_id, alias, class, name, start_line, end_line, modifiers)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cs.FileID, cs.Alias, cs.Class, cs.Name, cs.StartLine, cs.EndLine, marshalModifiers(cs.Modifiers),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
