package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// --- File operations ---

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, language, hash, line_count, last_indexed) VALUES (?, ?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LineCount, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

const fileCols = "id, path, language, hash, line_count, last_indexed"

func scanFile(scanner interface{ Scan(...any) error }) (*File, error) {
	f := &File{}
	var hash sql.NullString
	var lines sql.NullInt64
	if err := scanner.Scan(&f.ID, &f.Path, &f.Language, &hash, &lines, &f.LastIndexed); err != nil {
		return nil, err
	}
	f.Hash = hash.String
	f.LineCount = int(lines.Int64)
	return f, nil
}

func (s *Store) FileByPath(path string) (*File, error) {
	f, err := scanFile(s.db.QueryRow("SELECT "+fileCols+" FROM files WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

func (s *Store) queryFiles(query string, args ...any) ([]*File, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *Store) FilesByLanguage(language string) ([]*File, error) {
	files, err := s.queryFiles("SELECT "+fileCols+" FROM files WHERE language = ? ORDER BY path", language)
	if err != nil {
		return nil, fmt.Errorf("files by language: %w", err)
	}
	return files, nil
}

// Files returns every indexed file ordered by path.
func (s *Store) Files() ([]*File, error) {
	files, err := s.queryFiles("SELECT " + fileCols + " FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	return files, nil
}

// --- Call site operations ---

func (s *Store) InsertCallSite(cs *CallSite) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO call_sites (file_id, alias, class, name, start_line, end_line, modifiers)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cs.FileID, cs.Alias, cs.Class, cs.Name, cs.StartLine, cs.EndLine, marshalModifiers(cs.Modifiers),
	)
	if err != nil {
		return 0, fmt.Errorf("insert call site: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	cs.ID = id
	return id, nil
}

// CallSiteCols is the column list for call site queries joined with files.
const CallSiteCols = `cs.id, cs.file_id, cs.alias, cs.class, cs.name,
	cs.start_line, cs.end_line, cs.modifiers, f.path, f.language`

const callSiteFrom = ` FROM call_sites cs JOIN files f ON f.id = cs.file_id`

// ScanCallSiteRow scans a row selected with CallSiteCols.
func ScanCallSiteRow(scanner interface{ Scan(...any) error }) (*CallSite, error) {
	cs := &CallSite{}
	var class, mods sql.NullString
	err := scanner.Scan(
		&cs.ID, &cs.FileID, &cs.Alias, &class, &cs.Name,
		&cs.StartLine, &cs.EndLine, &mods, &cs.Path, &cs.Language,
	)
	if err != nil {
		return nil, err
	}
	cs.Class = class.String
	cs.Modifiers = unmarshalModifiers(mods.String)
	return cs, nil
}

func (s *Store) queryCallSites(where string, args ...any) ([]*CallSite, error) {
	query := "SELECT " + CallSiteCols + callSiteFrom
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY f.path, cs.start_line, cs.id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sites []*CallSite
	for rows.Next() {
		cs, err := ScanCallSiteRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call site: %w", err)
		}
		sites = append(sites, cs)
	}
	return sites, rows.Err()
}

func (s *Store) CallSitesByFile(fileID int64) ([]*CallSite, error) {
	sites, err := s.queryCallSites("cs.file_id = ?", fileID)
	if err != nil {
		return nil, fmt.Errorf("call sites by file: %w", err)
	}
	return sites, nil
}

// CallSitesAt returns the call sites of path whose line span covers line.
func (s *Store) CallSitesAt(path string, line int) ([]*CallSite, error) {
	sites, err := s.queryCallSites("f.path = ? AND cs.start_line <= ? AND cs.end_line >= ?", path, line, line)
	if err != nil {
		return nil, fmt.Errorf("call sites at: %w", err)
	}
	return sites, nil
}

// CallSites returns the call sites matching filter.
func (s *Store) CallSites(filter CallSiteFilter) ([]*CallSite, error) {
	var conds []string
	var args []any
	if filter.Alias != "" {
		conds = append(conds, "cs.alias = ?")
		args = append(args, strings.ToLower(filter.Alias))
	}
	if filter.Path != "" {
		conds = append(conds, "f.path = ?")
		args = append(args, filter.Path)
	}
	if filter.Language != "" {
		conds = append(conds, "f.language = ?")
		args = append(args, filter.Language)
	}
	if filter.Modifier != "" {
		conds = append(conds, "instr(cs.modifiers, ?) > 0")
		args = append(args, modifierNeedle(filter.Modifier))
	}
	if filter.Bare {
		conds = append(conds, "cs.modifiers = '[]'")
	}

	sites, err := s.queryCallSites(strings.Join(conds, " AND "), args...)
	if err != nil {
		return nil, fmt.Errorf("call sites: %w", err)
	}
	return sites, nil
}
