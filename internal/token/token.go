package token

import "strings"

// Token is a single classified piece of source text.
type Token struct {
	Kind Kind
	Text string
	// Line is the 1-based line reported by the tokenizer. Hint only.
	Line int
}

// Newlines returns the number of line breaks inside the token text.
func (t Token) Newlines() int {
	return strings.Count(t.Text, "\n")
}

// Significant reports whether the token takes part in matching.
func (t Token) Significant() bool { return !t.Kind.Insignificant() }

// Punct maps single operator and punctuation texts to their kinds. Shared by
// every tokenizer so all of them agree on the depth and modifier alphabet.
var Punct = map[string]Kind{
	"(":   LParen,
	"[":   LBracket,
	"{":   LBrace,
	")":   RParen,
	"]":   RBracket,
	"}":   RBrace,
	"!":   Bang,
	"@":   At,
	"+":   Plus,
	"-":   Minus,
	"~":   Tilde,
	"::":  DoubleColon,
	"->":  ObjectOperator,
	"?->": ObjectOperator,
	"\\":  NsSeparator,
	"\"":  Quote,
	"{$":  CurlyOpen,
	"${":  DollarOpenCurly,
}

// Join concatenates the token texts. It reproduces the tokenized source.
func Join(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}
