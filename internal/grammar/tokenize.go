package grammar

import (
	"context"
	"errors"
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/modifiers/internal/lexer"
	"github.com/jward/modifiers/internal/token"
)

// ErrUnsupportedLanguage is returned for a language without a grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Tokenizer turns source text in a language into tokens.
type Tokenizer func(ctx context.Context, lang string, src []byte) ([]token.Token, error)

// Tokenizer names accepted by TokenizerNamed.
const (
	TokenizerLexer = "lexer"
	TokenizerTree  = "tree-sitter"
)

// TokenizerNamed resolves a configured tokenizer name. The empty name is the
// lexer.
func TokenizerNamed(name string) (Tokenizer, bool) {
	switch name {
	case "", TokenizerLexer:
		return Tokenize, true
	case TokenizerTree:
		return TokenizeTree, true
	default:
		return nil, false
	}
}

// Tokenize uses the hand-written lexer for PHP and tree-sitter for
// everything else.
func Tokenize(ctx context.Context, lang string, src []byte) ([]token.Token, error) {
	if lang == PHP {
		return lexer.Tokenize(string(src)), nil
	}
	return TokenizeTree(ctx, lang, src)
}

// TokenizeTree parses src with tree-sitter and flattens the tree into its
// leaves. Bytes between leaves become Whitespace tokens, so joining the
// texts reproduces src. String literals, variables and comments are kept
// whole.
func TokenizeTree(ctx context.Context, lang string, src []byte) ([]token.Token, error) {
	grammar, ok := ParserForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", lang, err)
	}
	defer tree.Close()

	w := &walker{src: src, dialect: dialects[lang], line: 1}
	if err := w.visit(tree.RootNode()); err != nil {
		return nil, err
	}
	w.gap(len(src))
	return w.toks, nil
}

// dialect holds the per-language node classification.
type dialect struct {
	// opaque node types are emitted as one token without visiting children.
	opaque map[string]token.Kind
	// leaves overrides the kind of named leaf node types.
	leaves map[string]token.Kind
	// punct overrides token.Punct for anonymous leaves.
	punct map[string]token.Kind
}

var dialects = map[string]dialect{
	Go: {
		opaque: map[string]token.Kind{
			"interpreted_string_literal": token.String,
			"raw_string_literal":         token.String,
			"rune_literal":               token.String,
			"comment":                    token.Comment,
		},
		leaves: map[string]token.Kind{
			"int_literal":       token.Number,
			"float_literal":     token.Number,
			"imaginary_literal": token.Number,
		},
		punct: map[string]token.Kind{
			".": token.NsSeparator,
		},
	},
	PHP: {
		opaque: map[string]token.Kind{
			"string":                   token.String,
			"encapsed_string":          token.String,
			"heredoc":                  token.String,
			"nowdoc":                   token.String,
			"shell_command_expression": token.String,
			"variable_name":            token.Variable,
			"comment":                  token.Comment,
			"php_tag":                  token.OpenTag,
			"text":                     token.InlineHTML,
		},
		leaves: map[string]token.Kind{
			"integer": token.Number,
			"float":   token.Number,
		},
		punct: map[string]token.Kind{
			"?>": token.CloseTag,
		},
	},
}

type walker struct {
	src     []byte
	dialect dialect
	toks    []token.Token
	pos     int
	line    int
}

func (w *walker) visit(n *sitter.Node) error {
	start, err := safecast.Conv[int](n.StartByte())
	if err != nil {
		return fmt.Errorf("node start: %w", err)
	}
	end, err := safecast.Conv[int](n.EndByte())
	if err != nil {
		return fmt.Errorf("node end: %w", err)
	}

	if kind, ok := w.dialect.opaque[n.Type()]; ok {
		w.emit(start, end, kind)
		return nil
	}

	count := int(n.ChildCount())
	if count == 0 {
		if end > start {
			w.emit(start, end, w.classify(n, string(w.src[start:end])))
		}
		return nil
	}
	for i := 0; i < count; i++ {
		if err := w.visit(n.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) classify(n *sitter.Node, text string) token.Kind {
	switch {
	case isBlank(text):
		return token.Whitespace
	case n.Type() == "ERROR":
		return token.Other
	case n.IsNamed():
		if kind, ok := w.dialect.leaves[n.Type()]; ok {
			return kind
		}
		return token.Ident
	}
	if kind, ok := w.dialect.punct[text]; ok {
		return kind
	}
	if kind, ok := token.Punct[text]; ok {
		return kind
	}
	if isWord(text) {
		return token.Keyword
	}
	return token.Other
}

// emit appends the token for src[start:end], preceded by the gap since the
// previous token. Overlapping ranges are clipped.
func (w *walker) emit(start, end int, kind token.Kind) {
	if start < w.pos {
		start = w.pos
	}
	if end > len(w.src) {
		end = len(w.src)
	}
	if end <= start {
		return
	}
	w.gap(start)
	w.push(kind, string(w.src[start:end]))
	w.pos = end
}

func (w *walker) gap(to int) {
	if to <= w.pos {
		return
	}
	text := string(w.src[w.pos:to])
	kind := token.Whitespace
	if !isBlank(text) {
		kind = token.Other
	}
	w.push(kind, text)
	w.pos = to
}

func (w *walker) push(kind token.Kind, text string) {
	tok := token.Token{Kind: kind, Text: text, Line: w.line}
	w.toks = append(w.toks, tok)
	w.line += tok.Newlines()
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			return false
		}
	}
	return true
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
