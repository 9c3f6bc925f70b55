package lexer

import (
	"strings"

	"github.com/jward/modifiers/internal/token"
)

// scanDoubleQuoted emits a plain String when the literal has no
// interpolation, otherwise Quote, the interpolated parts, and Quote.
func (lx *Lexer) scanDoubleQuoted() {
	if !lx.interpolates() {
		start := lx.off
		lx.skipQuoted('"')
		lx.emit(token.String, start)
		return
	}

	start := lx.off
	lx.off++
	lx.emit(token.Quote, start)
	if lx.scanInterpolated('"') {
		start = lx.off
		lx.off++
		lx.emit(token.Quote, start)
	}
}

// interpolates reports whether the double-quoted literal at the cursor
// contains $name, {$ or ${ before its closing quote.
func (lx *Lexer) interpolates() bool {
	for i := lx.off + 1; i < len(lx.src); i++ {
		switch lx.src[i] {
		case '\\':
			i++
		case '"':
			return false
		case '$':
			if i+1 < len(lx.src) && (isIdentStart(lx.src[i+1]) || lx.src[i+1] == '{') {
				return true
			}
		case '{':
			if i+1 < len(lx.src) && lx.src[i+1] == '$' {
				return true
			}
		}
	}
	return false
}

// scanInterpolated lexes the body of an interpolated string up to, but not
// including, the closing delimiter. Returns false if the source ended first.
func (lx *Lexer) scanInterpolated(end byte) bool {
	part := lx.off
	for !lx.eof() {
		c := lx.src[lx.off]
		switch {
		case c == '\\':
			lx.off += 2
			if lx.off > len(lx.src) {
				lx.off = len(lx.src)
			}
		case c == end:
			lx.emit(token.StringPart, part)
			return true
		case c == '$' && isIdentStart(lx.peekAt(1)):
			lx.emit(token.StringPart, part)
			lx.scanSimpleVariable()
			part = lx.off
		case c == '{' && lx.peekAt(1) == '$':
			lx.emit(token.StringPart, part)
			start := lx.off
			lx.off++
			lx.emit(token.CurlyOpen, start)
			lx.scanCode(true)
			lx.closeInterpolation()
			part = lx.off
		case c == '$' && lx.peekAt(1) == '{':
			lx.emit(token.StringPart, part)
			start := lx.off
			lx.off += 2
			lx.emit(token.DollarOpenCurly, start)
			lx.scanCode(true)
			lx.closeInterpolation()
			part = lx.off
		default:
			lx.off++
		}
	}
	lx.emit(token.StringPart, part)
	return false
}

// closeInterpolation emits the brace that scanCode(true) stopped before.
func (lx *Lexer) closeInterpolation() {
	if lx.eof() || lx.src[lx.off] != '}' {
		return
	}
	start := lx.off
	lx.off++
	lx.emit(token.RBrace, start)
}

// scanSimpleVariable handles "$name", "$name[key]" and "$name->prop".
func (lx *Lexer) scanSimpleVariable() {
	start := lx.off
	lx.off++
	lx.skipIdent()
	lx.emit(token.Variable, start)

	switch {
	case lx.peekAt(0) == '[':
		start = lx.off
		lx.off++
		lx.emit(token.LBracket, start)

		start = lx.off
		switch c := lx.peekAt(0); {
		case c == '$' && isIdentStart(lx.peekAt(1)):
			lx.off++
			lx.skipIdent()
			lx.emit(token.Variable, start)
		case isDigit(c) || (c == '-' && isDigit(lx.peekAt(1))):
			lx.off++
			for !lx.eof() && isDigit(lx.src[lx.off]) {
				lx.off++
			}
			lx.emit(token.Number, start)
		case isIdentStart(c):
			lx.skipIdent()
			lx.emit(token.Ident, start)
		}

		if lx.peekAt(0) == ']' {
			start = lx.off
			lx.off++
			lx.emit(token.RBracket, start)
		}
	case lx.hasPrefix("->") && isIdentStart(lx.peekAt(2)):
		start = lx.off
		lx.off += 2
		lx.emit(token.ObjectOperator, start)
		start = lx.off
		lx.skipIdent()
		lx.emit(token.Ident, start)
	}
}

// scanHeredoc emits a heredoc or nowdoc, label lines included, as one String.
func (lx *Lexer) scanHeredoc() {
	start := lx.off
	i := lx.off + 3
	for i < len(lx.src) && (lx.src[i] == ' ' || lx.src[i] == '\t') {
		i++
	}
	quote := byte(0)
	if i < len(lx.src) && (lx.src[i] == '\'' || lx.src[i] == '"') {
		quote = lx.src[i]
		i++
	}
	labelStart := i
	for i < len(lx.src) && isIdentContinue(lx.src[i]) {
		i++
	}
	label := lx.src[labelStart:i]
	if label == "" || !isIdentStart(label[0]) {
		// Not a heredoc after all: "<<<" is an operator sequence.
		lx.off += 2
		lx.emit(token.Other, start)
		return
	}
	if quote != 0 && i < len(lx.src) && lx.src[i] == quote {
		i++
	}

	// The body starts on the next line; the closing label is the first line
	// whose trimmed prefix is the label not followed by a name byte.
	nl := strings.IndexByte(lx.src[i:], '\n')
	if nl < 0 {
		lx.off = len(lx.src)
		lx.emit(token.String, start)
		return
	}
	pos := i + nl + 1
	for pos <= len(lx.src) {
		j := pos
		for j < len(lx.src) && (lx.src[j] == ' ' || lx.src[j] == '\t') {
			j++
		}
		if strings.HasPrefix(lx.src[j:], label) {
			k := j + len(label)
			if k >= len(lx.src) || !isIdentContinue(lx.src[k]) {
				lx.off = k
				lx.emit(token.String, start)
				return
			}
		}
		next := strings.IndexByte(lx.src[pos:], '\n')
		if next < 0 {
			break
		}
		pos += next + 1
	}
	lx.off = len(lx.src)
	lx.emit(token.String, start)
}

// keywords are the reserved words PHP tokenizes as something other than a
// plain name. true, false, null, self and parent are names.
var keywords = map[string]bool{
	"abstract": true, "and": true, "array": true, "as": true, "break": true,
	"callable": true, "case": true, "catch": true, "class": true, "clone": true,
	"const": true, "continue": true, "declare": true, "default": true, "die": true,
	"do": true, "echo": true, "else": true, "elseif": true, "empty": true,
	"enddeclare": true, "endfor": true, "endforeach": true, "endif": true,
	"endswitch": true, "endwhile": true, "eval": true, "exit": true, "extends": true,
	"final": true, "finally": true, "fn": true, "for": true, "foreach": true,
	"function": true, "global": true, "goto": true, "if": true, "implements": true,
	"include": true, "include_once": true, "instanceof": true, "insteadof": true,
	"interface": true, "isset": true, "list": true, "match": true, "namespace": true,
	"new": true, "or": true, "print": true, "private": true, "protected": true,
	"public": true, "readonly": true, "require": true, "require_once": true,
	"return": true, "static": true, "switch": true, "throw": true, "trait": true,
	"try": true, "unset": true, "use": true, "var": true, "while": true, "xor": true,
	"yield": true,
	"__class__": true, "__dir__": true, "__file__": true, "__function__": true,
	"__line__": true, "__method__": true, "__namespace__": true, "__trait__": true,
}
