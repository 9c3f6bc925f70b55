// Package lexer tokenizes PHP source into the shared token alphabet.
//
// The classification follows PHP's own tokenizer closely enough for call-site
// matching: names are split at namespace separators, interpolated strings
// produce Quote delimiters with their embedded expressions tokenized, and
// strings without interpolation are a single String token. Heredoc, nowdoc
// and backtick strings are always a single String token.
package lexer

import (
	"strings"

	"github.com/jward/modifiers/internal/token"
)

// Lexer walks a PHP source once and produces tokens.
type Lexer struct {
	src     string
	off     int
	line    int
	lastSig token.Kind
	toks    []token.Token
}

// New creates a lexer positioned at the start of src, in inline HTML mode.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, lastSig: token.Invalid}
}

// Tokenize is a shorthand for New(src).Tokenize().
func Tokenize(src string) []token.Token {
	return New(src).Tokenize()
}

// Tokenize consumes the whole source. Concatenating the Text of the result
// reproduces src byte for byte.
func (lx *Lexer) Tokenize() []token.Token {
	for !lx.eof() {
		if !lx.scanInlineHTML() {
			break
		}
		lx.scanCode(false)
	}
	return lx.toks
}

func (lx *Lexer) eof() bool { return lx.off >= len(lx.src) }

func (lx *Lexer) peekAt(n int) byte {
	if lx.off+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off+n]
}

func (lx *Lexer) hasPrefix(p string) bool {
	return strings.HasPrefix(lx.src[lx.off:], p)
}

// emit appends the token spanning src[start:lx.off].
func (lx *Lexer) emit(kind token.Kind, start int) {
	if start >= lx.off {
		return
	}
	text := lx.src[start:lx.off]
	lx.toks = append(lx.toks, token.Token{Kind: kind, Text: text, Line: lx.line})
	lx.line += strings.Count(text, "\n")
	if !kind.Insignificant() {
		lx.lastSig = kind
	}
}

// scanInlineHTML emits text up to the next open tag and the tag itself.
// Returns false when the source ended without another open tag.
func (lx *Lexer) scanInlineHTML() bool {
	start := lx.off
	idx := strings.Index(lx.src[lx.off:], "<?")
	if idx < 0 {
		lx.off = len(lx.src)
		lx.emit(token.InlineHTML, start)
		return false
	}
	lx.off += idx
	lx.emit(token.InlineHTML, start)

	start = lx.off
	switch {
	case len(lx.src)-lx.off >= 5 && strings.EqualFold(lx.src[lx.off:lx.off+5], "<?php") &&
		(lx.off+5 == len(lx.src) || isSpace(lx.src[lx.off+5])):
		lx.off += 5
		// The open tag swallows one whitespace character.
		if lx.hasPrefix("\r\n") {
			lx.off += 2
		} else if !lx.eof() {
			lx.off++
		}
		lx.emit(token.OpenTag, start)
	case lx.hasPrefix("<?="):
		lx.off += 3
		lx.emit(token.OpenTagWithEcho, start)
	default:
		lx.off += 2
		lx.emit(token.OpenTag, start)
	}
	return true
}

// scanCode lexes PHP code. At top level it returns after a close tag or at
// EOF. Nested inside string interpolation it returns after the brace that
// balances the interpolation opener.
func (lx *Lexer) scanCode(nested bool) {
	depth := 0
	for !lx.eof() {
		if !nested && lx.hasPrefix("?>") {
			start := lx.off
			lx.off += 2
			if lx.hasPrefix("\r\n") {
				lx.off += 2
			} else if lx.peekAt(0) == '\n' {
				lx.off++
			}
			lx.emit(token.CloseTag, start)
			return
		}

		c := lx.src[lx.off]
		switch {
		case isSpace(c):
			lx.scanWhitespace()
		case c == '#' && lx.peekAt(1) == '[':
			start := lx.off
			lx.off += 2
			lx.emit(token.LBracket, start)
		case c == '#' || (c == '/' && lx.peekAt(1) == '/'):
			lx.scanLineComment()
		case c == '/' && lx.peekAt(1) == '*':
			lx.scanBlockComment()
		case c == '$' && isIdentStart(lx.peekAt(1)):
			start := lx.off
			lx.off++
			lx.skipIdent()
			lx.emit(token.Variable, start)
		case isIdentStart(c):
			lx.scanName()
		case isDigit(c) || (c == '.' && isDigit(lx.peekAt(1))):
			lx.scanNumber()
		case c == '\'':
			start := lx.off
			lx.skipQuoted('\'')
			lx.emit(token.String, start)
		case c == '`':
			start := lx.off
			lx.skipQuoted('`')
			lx.emit(token.String, start)
		case c == '"':
			lx.scanDoubleQuoted()
		case lx.hasPrefix("<<<"):
			lx.scanHeredoc()
		default:
			if nested && c == '}' && depth == 0 {
				return
			}
			kind := lx.scanOperator()
			if nested {
				switch kind {
				case token.LBrace:
					depth++
				case token.RBrace:
					depth--
				}
			}
		}
	}
}

func (lx *Lexer) scanWhitespace() {
	start := lx.off
	for !lx.eof() && isSpace(lx.src[lx.off]) {
		lx.off++
	}
	lx.emit(token.Whitespace, start)
}

// scanLineComment stops before the newline or a close tag.
func (lx *Lexer) scanLineComment() {
	start := lx.off
	for !lx.eof() {
		if lx.src[lx.off] == '\n' || lx.hasPrefix("?>") {
			break
		}
		lx.off++
	}
	lx.emit(token.Comment, start)
}

func (lx *Lexer) scanBlockComment() {
	start := lx.off
	kind := token.Comment
	if lx.hasPrefix("/**") && isSpace(lx.peekAt(3)) {
		kind = token.DocComment
	}
	end := strings.Index(lx.src[lx.off+2:], "*/")
	if end < 0 {
		lx.off = len(lx.src)
	} else {
		lx.off += 2 + end + 2
	}
	lx.emit(kind, start)
}

// scanName emits one name segment. Namespace separators are separate tokens.
func (lx *Lexer) scanName() {
	start := lx.off
	lx.skipIdent()
	name := lx.src[start:lx.off]
	kind := token.Ident
	afterMember := lx.lastSig == token.DoubleColon || lx.lastSig == token.ObjectOperator
	if !afterMember && keywords[strings.ToLower(name)] {
		kind = token.Keyword
	}
	lx.emit(kind, start)
}

func (lx *Lexer) skipIdent() {
	for !lx.eof() && isIdentContinue(lx.src[lx.off]) {
		lx.off++
	}
}

func (lx *Lexer) scanNumber() {
	start := lx.off
	for !lx.eof() {
		c := lx.src[lx.off]
		switch {
		case isIdentContinue(c) || c == '.':
			lx.off++
		case (c == '+' || c == '-') && lx.off > start && (lx.src[lx.off-1] == 'e' || lx.src[lx.off-1] == 'E') &&
			!strings.HasPrefix(strings.ToLower(lx.src[start:lx.off]), "0x"):
			lx.off++
		default:
			lx.emit(token.Number, start)
			return
		}
	}
	lx.emit(token.Number, start)
}

// skipQuoted advances past a quoted literal honouring backslash escapes.
// An unterminated literal runs to EOF.
func (lx *Lexer) skipQuoted(q byte) {
	lx.off++
	for !lx.eof() {
		c := lx.src[lx.off]
		if c == '\\' {
			lx.off += 2
			continue
		}
		lx.off++
		if c == q {
			return
		}
	}
	lx.off = len(lx.src)
}

var multiOps = []string{
	"?->", "...", "<=>", "**=", "===", "!==", "<<=", ">>=", "??=",
	"::", "->", "=>", "++", "--", "+=", "-=", "*=", "/=", ".=", "%=",
	"&=", "|=", "^=", "==", "!=", "<>", "<=", ">=", "&&", "||", "??",
	"<<", ">>", "**",
}

// scanOperator emits the longest operator at the cursor and returns its kind.
func (lx *Lexer) scanOperator() token.Kind {
	start := lx.off
	for _, op := range multiOps {
		if lx.hasPrefix(op) {
			lx.off += len(op)
			kind, ok := token.Punct[op]
			if !ok {
				kind = token.Other
			}
			lx.emit(kind, start)
			return kind
		}
	}
	lx.off++
	kind, ok := token.Punct[lx.src[start:lx.off]]
	if !ok || kind == token.Quote {
		kind = token.Other
	}
	lx.emit(kind, start)
	return kind
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isIdentStart follows PHP: ASCII letters, underscore and any byte >= 0x7f.
func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= 0x7f
}

func isIdentContinue(c byte) bool { return isIdentStart(c) || isDigit(c) }
