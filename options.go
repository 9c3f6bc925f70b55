package modifiers

import (
	"io/fs"
	"log/slog"

	"github.com/jward/modifiers/internal/grammar"
	"github.com/jward/modifiers/internal/stack"
)

// settings collects what Options configure. Engine and Attributor read the
// fields they need and ignore the rest.
type settings struct {
	aliases     []stack.Alias
	internal    []stack.Alias
	internalSet bool
	tokenize    grammar.Tokenizer
	logger      *slog.Logger
	fsys        fs.FS

	languages   map[string]bool // nil means all languages
	useParallel bool
	workers     int
}

// Option configures an Engine or an Attributor.
type Option func(*settings)

func newSettings(opts []Option) *settings {
	s := &settings{
		tokenize:    grammar.Tokenize,
		logger:      slog.New(slog.DiscardHandler),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.internalSet {
		s.internal = stack.DefaultInternal
	}
	return s
}

// WithAliases adds anchor signatures. Each declaration is a function name,
// a [class, method] pair, or an Alias; malformed ones are dropped.
func WithAliases(decls ...any) Option {
	return func(s *settings) {
		s.aliases = append(s.aliases, stack.NormalizeAliases(decls)...)
	}
}

// WithInternal replaces the list of loader frames skipped during
// resolution. The default skips spl_autoload_call.
func WithInternal(decls ...any) Option {
	return func(s *settings) {
		s.internal = stack.NormalizeAliases(decls)
		s.internalSet = true
	}
}

// WithTokenizer sets the tokenizer used to scan source files.
func WithTokenizer(tok grammar.Tokenizer) Option {
	return func(s *settings) {
		if tok != nil {
			s.tokenize = tok
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFS makes the Attributor read frame sources from fsys instead of the
// OS. Leading slashes are stripped from frame paths.
func WithFS(fsys fs.FS) Option {
	return func(s *settings) {
		s.fsys = fsys
	}
}

// WithLanguages restricts which languages the Engine will index.
func WithLanguages(languages ...string) Option {
	return func(s *settings) {
		s.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			s.languages[lang] = true
		}
	}
}

// WithParallel controls parallel extraction. When true (default), IndexFiles
// scans files on a bounded set of goroutines and commits their batches to
// SQLite from a single writer. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(s *settings) {
		s.useParallel = parallel
	}
}

// WithWorkers bounds the number of extraction goroutines. Zero or less
// means one per CPU.
func WithWorkers(n int) Option {
	return func(s *settings) {
		s.workers = n
	}
}
