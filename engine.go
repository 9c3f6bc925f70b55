package modifiers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jward/modifiers/internal/callsite"
	"github.com/jward/modifiers/internal/grammar"
	"github.com/jward/modifiers/internal/runtime"
	"github.com/jward/modifiers/internal/stack"
	"github.com/jward/modifiers/internal/store"
)

const aliasesHashKey = "aliases_hash"

// Engine indexes the calls to a set of aliases across a source tree and
// records the operators written in front of each one.
type Engine struct {
	store     *store.Store
	aliases   []stack.Alias
	tokenize  grammar.Tokenizer
	logger    *slog.Logger
	languages map[string]bool // nil means all languages

	useParallel bool
	workers     int
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("modifiers: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("modifiers: migrate: %w", err)
	}

	set := newSettings(opts)
	return &Engine{
		store:       s,
		aliases:     set.aliases,
		tokenize:    set.tokenize,
		logger:      set.logger,
		languages:   set.languages,
		useParallel: set.useParallel,
		workers:     set.workers,
	}, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Aliases returns the normalized aliases the Engine indexes.
func (e *Engine) Aliases() []Alias {
	out := make([]Alias, len(e.aliases))
	copy(out, e.aliases)
	return out
}

// Query returns a new QueryBuilder wrapping the Store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// aliasesHash fingerprints the alias list. Order does not matter.
func (e *Engine) aliasesHash() string {
	names := make([]string, len(e.aliases))
	for i, a := range e.aliases {
		names[i] = a.String()
	}
	sort.Strings(names)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(strings.Join(names, "\n"))))
}

// AliasesChanged reports whether the alias list differs from the one used to
// build the current database. It is true on a fresh database. Unchanged
// files are skipped by content hash, so callers should Reset the store
// before reindexing when this is true.
func (e *Engine) AliasesChanged() bool {
	stored, err := e.store.GetMetadata(aliasesHashKey)
	if err != nil || stored == "" {
		return true
	}
	return stored != e.aliasesHash()
}

// ResetIfAliasesChanged clears the index when AliasesChanged is true and
// reports whether it did.
func (e *Engine) ResetIfAliasesChanged() (bool, error) {
	if !e.AliasesChanged() {
		return false, nil
	}
	if err := e.store.Reset(); err != nil {
		return false, fmt.Errorf("modifiers: reset: %w", err)
	}
	e.logger.Info("aliases changed, index reset", "aliases", len(e.aliases))
	return true, nil
}

func (e *Engine) storeAliasesHash() error {
	return e.store.SetMetadata(aliasesHashKey, e.aliasesHash())
}

// IndexFiles indexes the given file paths. When WithParallel is enabled,
// files are scanned concurrently with batched SQLite writes. Otherwise it
// falls back to the serial path.
//
// For each file:
//  1. Detect language from extension
//  2. Skip unsupported or filtered-out languages
//  3. Skip unchanged files (same content hash)
//  4. Delete stale call sites, insert/update file record
//  5. Tokenize and record every terminated call to each alias
//
// Errors on individual files are logged and skipped; processing continues.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	var err error
	if e.useParallel {
		err = e.IndexFilesParallel(ctx, paths)
	} else {
		err = e.indexFilesSerial(ctx, paths)
	}
	if hashErr := e.storeAliasesHash(); hashErr != nil && err == nil {
		err = fmt.Errorf("store aliases hash: %w", hashErr)
	}
	return err
}

func (e *Engine) indexFilesSerial(ctx context.Context, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.indexFile(ctx, path); err != nil {
			e.logger.Warn("index file", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

func (e *Engine) indexFile(ctx context.Context, path string) error {
	item, skip, err := e.prepareFile(ctx, path)
	if err != nil || skip {
		return err
	}
	if err := e.extractFile(ctx, item, e.store); err != nil {
		_ = e.store.DeleteFile(item.fileID)
		return err
	}
	return nil
}

// prepareFile does the serial work for a single file: hash check, cleanup,
// file record. skip=true means the file is unchanged or unsupported.
func (e *Engine) prepareFile(_ context.Context, path string) (workItem, bool, error) {
	path = absPath(path)
	lang, ok := grammar.LanguageForFile(path)
	if !ok {
		return workItem{}, true, nil
	}
	if e.languages != nil && !e.languages[lang] {
		return workItem{}, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("read file: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		e.logger.Debug("unchanged", "path", path)
		return workItem{}, true, nil
	}
	if existing != nil {
		if err := e.store.DeleteFile(existing.ID); err != nil {
			return workItem{}, false, fmt.Errorf("delete old data: %w", err)
		}
	}

	fileID, err := e.store.InsertFile(&store.File{
		Path:        path,
		Language:    lang,
		Hash:        hash,
		LineCount:   bytes.Count(content, []byte{'\n'}) + 1,
		LastIndexed: time.Now(),
	})
	if err != nil {
		return workItem{}, false, fmt.Errorf("insert file: %w", err)
	}
	return workItem{path: path, lang: lang, fileID: fileID, content: content}, false, nil
}

// extractFile tokenizes one file and writes a call site for every
// terminated call to each alias.
func (e *Engine) extractFile(ctx context.Context, item workItem, ds store.DataStore) error {
	toks, err := e.tokenize(ctx, item.lang, item.content)
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}
	for _, a := range e.aliases {
		sig := grammar.SignatureFor(item.lang, stack.Frame{Class: a.Class, Function: a.Function})
		for _, c := range callsite.Calls(toks, sig) {
			_, err := ds.InsertCallSite(&store.CallSite{
				FileID:    item.fileID,
				Alias:     a.String(),
				Class:     a.Class,
				Name:      a.Function,
				StartLine: c.Line,
				EndLine:   c.EndLine,
				Modifiers: c.Modifiers.Symbols(),
			})
			if err != nil {
				return fmt.Errorf("insert call site: %w", err)
			}
		}
	}
	return nil
}

// skipDirs are excluded from the walk fallback.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

// IndexDirectory indexes every supported file under root and drops index
// entries for files under root that no longer exist. Inside a git repository
// git ls-files is used so .gitignore is respected; otherwise the tree is
// walked, skipping hidden directories, node_modules and vendor.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	paths, err := e.gitListFiles(root)
	if err != nil {
		e.logger.Debug("git ls-files unavailable, walking", "root", root, "error", err)
		paths, err = e.walkListFiles(root)
		if err != nil {
			return err
		}
	}
	if err := e.pruneMissing(root, paths); err != nil {
		return err
	}
	return e.IndexFiles(ctx, paths)
}

// pruneMissing deletes indexed files under root that are not in paths.
func (e *Engine) pruneMissing(root string, paths []string) error {
	present := make(map[string]bool, len(paths))
	for _, p := range paths {
		present[p] = true
	}
	files, err := e.store.Files()
	if err != nil {
		return fmt.Errorf("list indexed files: %w", err)
	}
	prefix := root + string(filepath.Separator)
	for _, f := range files {
		if !strings.HasPrefix(f.Path, prefix) || present[f.Path] {
			continue
		}
		if err := e.store.DeleteFile(f.ID); err != nil {
			return fmt.Errorf("prune %s: %w", f.Path, err)
		}
		e.logger.Debug("pruned", "path", f.Path)
	}
	return nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := grammar.LanguageForFile(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := grammar.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// Check runs a Risor rule script against the index and returns what it
// reported. Imports resolve relative to the script's directory.
func (e *Engine) Check(ctx context.Context, scriptPath string) ([]Finding, error) {
	rt := runtime.NewRuntime(e.store, filepath.Dir(scriptPath),
		runtime.WithLogger(e.logger),
		runtime.WithTokenizer(e.tokenize),
	)
	if err := rt.RunScript(ctx, filepath.Base(scriptPath), nil); err != nil {
		return nil, err
	}
	return rt.Findings(), nil
}
