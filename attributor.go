package modifiers

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/modifiers/internal/callsite"
	"github.com/jward/modifiers/internal/grammar"
	"github.com/jward/modifiers/internal/stack"
)

// Anchored is implemented by types whose methods read the modifiers of the
// call that reached them. AnchorSignatures lists the signatures that mark the
// application's call site; declarations follow WithAliases.
type Anchored interface {
	AnchorSignatures() []any
}

// Attributor recovers the unary operators written in front of a call. It is
// immutable after construction and safe for concurrent use.
type Attributor struct {
	aliases  []stack.Alias
	internal []stack.Alias
	tokenize grammar.Tokenizer
	logger   *slog.Logger
	fsys     fs.FS
}

// NewAttributor creates an Attributor. Engine-only options are ignored.
func NewAttributor(opts ...Option) *Attributor {
	s := newSettings(opts)
	return &Attributor{
		aliases:  s.aliases,
		internal: s.internal,
		tokenize: s.tokenize,
		logger:   s.logger,
		fsys:     s.fsys,
	}
}

// Aliases returns the configured anchor signatures.
func (a *Attributor) Aliases() []Alias {
	out := make([]Alias, len(a.aliases))
	copy(out, a.aliases)
	return out
}

// ExtractModifiers scans the file named by frame for the call that reaches
// frame.Line and returns its operators. Frames without a position or
// function, and unreadable files, yield the empty set.
func (a *Attributor) ExtractModifiers(ctx context.Context, frame Frame) Set {
	if !frame.Complete() {
		a.logger.Debug("frame has no call position", "function", frame.Function, "file", frame.File)
		return 0
	}

	lang, ok := grammar.LanguageForFile(frame.File)
	if !ok {
		lang = grammar.PHP
	}
	src, err := a.readSource(frame.File)
	if err != nil {
		a.logger.Debug("read source", "file", frame.File, "error", err)
		return 0
	}
	toks, err := a.tokenize(ctx, lang, src)
	if err != nil {
		a.logger.Debug("tokenize", "file", frame.File, "language", lang, "error", err)
		return 0
	}
	return callsite.Scan(toks, frame.Line, grammar.SignatureFor(lang, frame))
}

func (a *Attributor) readSource(path string) ([]byte, error) {
	if a.fsys != nil {
		return fs.ReadFile(a.fsys, strings.TrimPrefix(filepath.ToSlash(path), "/"))
	}
	return os.ReadFile(path)
}

// Resolve picks the frame describing the application's call site from
// frames (innermost first). extra anchors are tried alongside the
// configured ones.
func (a *Attributor) Resolve(frames []Frame, extra ...Alias) (Frame, bool) {
	aliases := a.aliases
	if len(extra) > 0 {
		aliases = append(append([]Alias(nil), a.aliases...), extra...)
	}
	return stack.Resolve(frames, aliases, a.internal)
}

// ModifiersFrom resolves frames and extracts the modifiers of the selected
// call. It serves stacks captured elsewhere, such as decoded PHP traces.
func (a *Attributor) ModifiersFrom(ctx context.Context, frames []Frame, extra ...Alias) Set {
	frame, ok := a.Resolve(frames, extra...)
	if !ok {
		a.logger.Debug("no anchor frame", "frames", len(frames))
		return 0
	}
	return a.ExtractModifiers(ctx, frame)
}

// Modifiers captures the current goroutine's stack and returns the
// modifiers of the outermost call to a configured alias.
func (a *Attributor) Modifiers(ctx context.Context) Set {
	return a.ModifiersFrom(ctx, stack.Capture(0))
}

// ModifiersFor is Modifiers with the anchors declared by anchored added to
// the configured ones.
func (a *Attributor) ModifiersFor(ctx context.Context, anchored Anchored) Set {
	return a.ModifiersFrom(ctx, stack.Capture(0), stack.NormalizeAliases(anchored.AnchorSignatures())...)
}

// Query binds an Anchored value to an Attributor.
type Query struct {
	attributor *Attributor
	anchored   Anchored
}

// For returns a Query reading the modifiers of calls to anchored.
func (a *Attributor) For(anchored Anchored) Query {
	return Query{attributor: a, anchored: anchored}
}

// Modifiers returns the modifiers of the current call to the anchored value.
func (q Query) Modifiers(ctx context.Context) Set {
	return q.attributor.ModifiersFrom(ctx, stack.Capture(0), stack.NormalizeAliases(q.anchored.AnchorSignatures())...)
}

// Has reports whether symbol was written in front of the current call.
func (q Query) Has(ctx context.Context, symbol string) bool {
	return q.attributor.ModifiersFrom(ctx, stack.Capture(0), stack.NormalizeAliases(q.anchored.AnchorSignatures())...).Has(symbol)
}

// HasAll reports whether every symbol was written in front of the current
// call.
func (q Query) HasAll(ctx context.Context, symbols ...string) bool {
	return q.attributor.ModifiersFrom(ctx, stack.Capture(0), stack.NormalizeAliases(q.anchored.AnchorSignatures())...).HasAll(symbols...)
}

var std = NewAttributor()

// Get returns the modifiers of the current call to anchored, read from the
// OS filesystem.
func Get(anchored Anchored) Set {
	return std.ModifiersFrom(context.Background(), stack.Capture(0), stack.NormalizeAliases(anchored.AnchorSignatures())...)
}

// Has reports whether symbol was written in front of the current call to
// anchored.
func Has(anchored Anchored, symbol string) bool {
	return std.ModifiersFrom(context.Background(), stack.Capture(0), stack.NormalizeAliases(anchored.AnchorSignatures())...).Has(symbol)
}

// HasAll reports whether every symbol was written in front of the current
// call to anchored. HasAll with no symbols is true.
func HasAll(anchored Anchored, symbols ...string) bool {
	return std.ModifiersFrom(context.Background(), stack.Capture(0), stack.NormalizeAliases(anchored.AnchorSignatures())...).HasAll(symbols...)
}
