package modifiers

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/jward/modifiers/internal/store"
)

// QueryBuilder provides read access to the call-site index.
type QueryBuilder struct {
	store *store.Store
}

// Location is a call expression's line span in a file.
type Location struct {
	File      string
	StartLine int
	EndLine   int
}

// AliasSummary counts the indexed calls to one alias.
type AliasSummary struct {
	Alias string `json:"alias"`
	Calls int    `json:"calls"`
	// Bare counts calls without any operator.
	Bare int `json:"bare"`
	// Modifiers counts calls carrying each operator; a call with several
	// operators counts once per operator.
	Modifiers map[string]int `json:"modifiers"`
	Files     int            `json:"files"`
}

// CallSites returns the indexed calls matching filter, ordered by file and
// line.
func (q *QueryBuilder) CallSites(filter CallSiteFilter) ([]*CallSite, error) {
	if filter.Path != "" {
		filter.Path = absPath(filter.Path)
	}
	return q.store.CallSites(filter)
}

// CallSitesAt returns the indexed calls whose span covers line in file.
func (q *QueryBuilder) CallSitesAt(file string, line int) ([]*CallSite, error) {
	sites, err := q.store.CallSitesAt(absPath(file), line)
	if err != nil {
		return nil, fmt.Errorf("call sites at: %w", err)
	}
	return sites, nil
}

// Files returns the indexed files, restricted to language when it is set.
func (q *QueryBuilder) Files(language string) ([]*File, error) {
	if language != "" {
		return q.store.FilesByLanguage(language)
	}
	return q.store.Files()
}

// Locations returns the spans of the calls matching filter.
func (q *QueryBuilder) Locations(filter CallSiteFilter) ([]Location, error) {
	sites, err := q.CallSites(filter)
	if err != nil {
		return nil, err
	}
	locs := make([]Location, len(sites))
	for i, cs := range sites {
		locs[i] = Location{File: cs.Path, StartLine: cs.StartLine, EndLine: cs.EndLine}
	}
	return locs, nil
}

// Summary aggregates the index per alias, ordered by alias.
func (q *QueryBuilder) Summary() ([]AliasSummary, error) {
	rows, err := q.store.DB().Query("SELECT alias, file_id, modifiers FROM call_sites")
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	byAlias := map[string]*AliasSummary{}
	files := map[string]map[int64]bool{}
	for rows.Next() {
		var (
			alias, mods string
			fileID      int64
		)
		if err := rows.Scan(&alias, &fileID, &mods); err != nil {
			return nil, fmt.Errorf("summary: scan: %w", err)
		}
		sum, ok := byAlias[alias]
		if !ok {
			sum = &AliasSummary{Alias: alias, Modifiers: map[string]int{}}
			byAlias[alias] = sum
			files[alias] = map[int64]bool{}
		}
		sum.Calls++
		files[alias][fileID] = true
		symbols := store.UnmarshalModifiers(mods)
		if len(symbols) == 0 {
			sum.Bare++
		}
		for _, m := range symbols {
			sum.Modifiers[m]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary: rows: %w", err)
	}

	out := make([]AliasSummary, 0, len(byAlias))
	for alias, sum := range byAlias {
		sum.Files = len(files[alias])
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out, nil
}

// absPath matches the absolute paths the Engine indexes under. Paths that
// cannot be resolved are used as given.
func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
