package store

import "time"

type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LineCount   int
	LastIndexed time.Time
}

// CallSite is one indexed call to an alias.
type CallSite struct {
	ID     int64
	FileID int64
	// Alias is the canonical alias text, class::function or function.
	Alias     string
	Class     string
	Name      string
	StartLine int
	EndLine   int
	Modifiers []string

	// Path and Language are filled from the files table on reads.
	Path     string
	Language string
}

// CallSiteFilter narrows CallSites. Zero fields match everything.
type CallSiteFilter struct {
	Alias    string
	Path     string
	Language string
	// Modifier keeps call sites carrying this operator.
	Modifier string
	// Bare keeps call sites without any operator.
	Bare bool
}
