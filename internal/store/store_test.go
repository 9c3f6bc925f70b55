package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// insertTestFile is a helper that inserts a file and returns it with ID set.
func insertTestFile(t *testing.T, s *Store, path, lang string) *File {
	t.Helper()
	f := &File{Path: path, Language: lang, Hash: "abc123", LineCount: 10, LastIndexed: time.Now().Truncate(time.Second)}
	id, err := s.InsertFile(f)
	require.NoError(t, err)
	require.Positive(t, id)
	return f
}

// insertTestCallSite inserts a call site spanning start..end.
func insertTestCallSite(t *testing.T, s *Store, fileID int64, alias string, start, end int, mods ...string) *CallSite {
	t.Helper()
	cs := &CallSite{FileID: fileID, Alias: alias, Name: alias, StartLine: start, EndLine: end, Modifiers: mods}
	id, err := s.InsertCallSite(cs)
	require.NoError(t, err)
	require.Positive(t, id)
	return cs
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"files", "call_sites", "metadata"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

// =============================================================================
// File operations
// =============================================================================

func TestFile_InsertAndRetrieve(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().Truncate(time.Second)
	f := &File{Path: "/src/index.php", Language: "php", Hash: "sha256abc", LineCount: 3, LastIndexed: now}
	id, err := s.InsertFile(f)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := s.FileByPath("/src/index.php")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "php", got.Language)
	assert.Equal(t, "sha256abc", got.Hash)
	assert.Equal(t, 3, got.LineCount)
}

func TestFile_ByPathNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	got, err := s.FileByPath("/nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFile_ByLanguage(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestFile(t, s, "/b.go", "go")
	insertTestFile(t, s, "/a.go", "go")
	insertTestFile(t, s, "/c.php", "php")

	goFiles, err := s.FilesByLanguage("go")
	require.NoError(t, err)
	require.Len(t, goFiles, 2)
	assert.Equal(t, "/a.go", goFiles[0].Path)

	all, err := s.Files()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// =============================================================================
// Call sites
// =============================================================================

func TestCallSite_InsertAndQueryByFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "/index.php", "php")

	cs := &CallSite{
		FileID: f.ID, Alias: "example::setvalue", Class: "Example", Name: "setValue",
		StartLine: 4, EndLine: 6, Modifiers: []string{"!", "@"},
	}
	_, err := s.InsertCallSite(cs)
	require.NoError(t, err)
	insertTestCallSite(t, s, f.ID, "helper", 9, 9)

	sites, err := s.CallSitesByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, sites, 2)

	got := sites[0]
	assert.Equal(t, cs.ID, got.ID)
	assert.Equal(t, "Example", got.Class)
	assert.Equal(t, []string{"!", "@"}, got.Modifiers)
	assert.Equal(t, "/index.php", got.Path)
	assert.Equal(t, "php", got.Language)

	assert.Equal(t, []string{}, sites[1].Modifiers)
}

func TestCallSitesAt(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "/index.php", "php")
	insertTestCallSite(t, s, f.ID, "a", 2, 2, "!")
	insertTestCallSite(t, s, f.ID, "b", 3, 6, "~")

	sites, err := s.CallSitesAt("/index.php", 5)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "b", sites[0].Alias)

	sites, err = s.CallSitesAt("/index.php", 7)
	require.NoError(t, err)
	assert.Empty(t, sites)

	sites, err = s.CallSitesAt("/other.php", 2)
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestCallSites_Filter(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	php := insertTestFile(t, s, "/index.php", "php")
	goFile := insertTestFile(t, s, "/main.go", "go")
	insertTestCallSite(t, s, php.ID, "example::setvalue", 2, 2, "!", "@")
	insertTestCallSite(t, s, php.ID, "example::setvalue", 3, 3)
	insertTestCallSite(t, s, goFile.ID, "setvalue", 5, 5, "-")

	tests := []struct {
		name   string
		filter CallSiteFilter
		want   int
	}{
		{"all", CallSiteFilter{}, 3},
		{"alias", CallSiteFilter{Alias: "Example::setValue"}, 2},
		{"path", CallSiteFilter{Path: "/main.go"}, 1},
		{"language", CallSiteFilter{Language: "php"}, 2},
		{"modifier", CallSiteFilter{Modifier: "@"}, 1},
		{"modifier none", CallSiteFilter{Modifier: "~"}, 0},
		{"bare", CallSiteFilter{Bare: true}, 1},
		{"combined", CallSiteFilter{Language: "go", Modifier: "-"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites, err := s.CallSites(tt.filter)
			require.NoError(t, err)
			assert.Len(t, sites, tt.want)
		})
	}
}

func TestDeleteFileData(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "/index.php", "php")
	insertTestCallSite(t, s, f.ID, "a", 1, 1, "!")

	require.NoError(t, s.DeleteFileData(f.ID))
	sites, err := s.CallSitesByFile(f.ID)
	require.NoError(t, err)
	assert.Empty(t, sites)

	got, err := s.FileByPath("/index.php")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDeleteFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "/index.php", "php")
	insertTestCallSite(t, s, f.ID, "a", 1, 1)

	require.NoError(t, s.DeleteFile(f.ID))
	got, err := s.FileByPath("/index.php")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Re-inserting the same path works once the old record is gone.
	insertTestFile(t, s, "/index.php", "php")
}

// =============================================================================
// Metadata
// =============================================================================

func TestMetadata(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	v, err := s.GetMetadata("aliases_hash")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMetadata("aliases_hash", "one"))
	require.NoError(t, s.SetMetadata("aliases_hash", "two"))
	v, err = s.GetMetadata("aliases_hash")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestReset(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "/index.php", "php")
	insertTestCallSite(t, s, f.ID, "a", 1, 1)
	require.NoError(t, s.SetMetadata("k", "v"))

	require.NoError(t, s.Reset())

	files, err := s.Files()
	require.NoError(t, err)
	assert.Empty(t, files)
	v, err := s.GetMetadata("k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestUnmarshalModifiers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{}, UnmarshalModifiers(""))
	assert.Equal(t, []string{}, UnmarshalModifiers("null"))
	assert.Equal(t, []string{"!", "~"}, UnmarshalModifiers(`["!","~"]`))
	assert.Equal(t, `"@"`, modifierNeedle("@"))
}
