package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/modifiers/internal/token"
)

// significant drops insignificant tokens so expectations stay readable.
func significant(toks []token.Token) []token.Token {
	var out []token.Token
	for _, t := range toks {
		if t.Significant() {
			out = append(out, token.Token{Kind: t.Kind, Text: t.Text})
		}
	}
	return out
}

func tok(k token.Kind, text string) token.Token {
	return token.Token{Kind: k, Text: text}
}

func TestTokenize_StaticCallWithModifier(t *testing.T) {
	t.Parallel()
	src := "<?php $x = 5; ! Example::setValue('test');"
	toks := Tokenize(src)

	require.NotEmpty(t, toks)
	assert.Equal(t, token.OpenTag, toks[0].Kind)
	assert.Equal(t, "<?php ", toks[0].Text)

	assert.Equal(t, []token.Token{
		tok(token.Variable, "$x"),
		tok(token.Other, "="),
		tok(token.Number, "5"),
		tok(token.Other, ";"),
		tok(token.Bang, "!"),
		tok(token.Ident, "Example"),
		tok(token.DoubleColon, "::"),
		tok(token.Ident, "setValue"),
		tok(token.LParen, "("),
		tok(token.String, "'test'"),
		tok(token.RParen, ")"),
		tok(token.Other, ";"),
	}, significant(toks))
}

func TestTokenize_RoundTrip(t *testing.T) {
	t.Parallel()
	sources := []string{
		"<?php\nnamespace App;\n\nuse Foo\\Bar;\n\n/** doc */\nfunction x() { return \"a {$b['c']} ${d} $e->f $g[0]\"; }\n",
		"<html>\n<?= $title ?>\n<p>text</p>\n<?php echo 1; ?>\ntrailing",
		"<?php\n$s = <<<EOT\nline {$x}\n  EOT;\n$n = <<<'RAW'\nraw $y\nRAW;\n",
		"<?php // comment ?>\n<b>",
		"<?php $broken = \"never closed {$a",
		"<?php $t = `ls -la`; # hash comment\n#[Attr(1)]\nclass A {}",
	}
	for _, src := range sources {
		toks := Tokenize(src)
		assert.Equal(t, src, token.Join(toks), "round trip of %q", src)
	}
}

func TestTokenize_InterpolatedString(t *testing.T) {
	t.Parallel()
	toks := Tokenize(`<?php "a $b {$c['x']} ${d}";`)
	assert.Equal(t, []token.Token{
		tok(token.Quote, `"`),
		tok(token.StringPart, "a "),
		tok(token.Variable, "$b"),
		tok(token.StringPart, " "),
		tok(token.CurlyOpen, "{"),
		tok(token.Variable, "$c"),
		tok(token.LBracket, "["),
		tok(token.String, "'x'"),
		tok(token.RBracket, "]"),
		tok(token.RBrace, "}"),
		tok(token.StringPart, " "),
		tok(token.DollarOpenCurly, "${"),
		tok(token.Ident, "d"),
		tok(token.RBrace, "}"),
		tok(token.Quote, `"`),
		tok(token.Other, ";"),
	}, significant(toks))
}

func TestTokenize_PlainDoubleQuotedIsSingleString(t *testing.T) {
	t.Parallel()
	toks := significant(Tokenize(`<?php "no \$interp {here}";`))
	require.Len(t, toks, 2)
	assert.Equal(t, token.String, toks[0].Kind)
}

func TestTokenize_SimpleVariableProperty(t *testing.T) {
	t.Parallel()
	toks := significant(Tokenize(`<?php "$obj->name";`))
	assert.Equal(t, []token.Token{
		tok(token.Quote, `"`),
		tok(token.Variable, "$obj"),
		tok(token.ObjectOperator, "->"),
		tok(token.Ident, "name"),
		tok(token.Quote, `"`),
		tok(token.Other, ";"),
	}, toks)
}

func TestTokenize_Keywords(t *testing.T) {
	t.Parallel()
	toks := significant(Tokenize("<?php return Foo::list() ?? $a->print(true);"))
	assert.Equal(t, []token.Token{
		tok(token.Keyword, "return"),
		tok(token.Ident, "Foo"),
		tok(token.DoubleColon, "::"),
		tok(token.Ident, "list"),
		tok(token.LParen, "("),
		tok(token.RParen, ")"),
		tok(token.Other, "??"),
		tok(token.Variable, "$a"),
		tok(token.ObjectOperator, "->"),
		tok(token.Ident, "print"),
		tok(token.LParen, "("),
		tok(token.Ident, "true"),
		tok(token.RParen, ")"),
		tok(token.Other, ";"),
	}, toks)
}

func TestTokenize_NamespacedName(t *testing.T) {
	t.Parallel()
	toks := significant(Tokenize(`<?php \App\Models\User::find(1);`))
	assert.Equal(t, []token.Token{
		tok(token.NsSeparator, `\`),
		tok(token.Ident, "App"),
		tok(token.NsSeparator, `\`),
		tok(token.Ident, "Models"),
		tok(token.NsSeparator, `\`),
		tok(token.Ident, "User"),
		tok(token.DoubleColon, "::"),
		tok(token.Ident, "find"),
		tok(token.LParen, "("),
		tok(token.Number, "1"),
		tok(token.RParen, ")"),
		tok(token.Other, ";"),
	}, toks)
}

func TestTokenize_OperatorRuns(t *testing.T) {
	t.Parallel()
	toks := significant(Tokenize("<?php ! @+-~f(); --$i; $a != $b;"))
	kinds := make([]token.Kind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.Bang, token.At, token.Plus, token.Minus, token.Tilde,
		token.Ident, token.LParen, token.RParen, token.Other,
		token.Other, token.Variable, token.Other,
		token.Variable, token.Other, token.Variable, token.Other,
	}, kinds)
	assert.Equal(t, "--", toks[9].Text)
	assert.Equal(t, "!=", toks[13].Text)
}

func TestTokenize_InlineHTMLAndTags(t *testing.T) {
	t.Parallel()
	toks := Tokenize("<p>\n<?php foo(); ?>\n<b>")
	kinds := make([]token.Kind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.InlineHTML, token.OpenTag,
		token.Ident, token.LParen, token.RParen, token.Other,
		token.Whitespace, token.CloseTag, token.InlineHTML,
	}, kinds)
	assert.Equal(t, "?>\n", toks[7].Text)
}

func TestTokenize_Comments(t *testing.T) {
	t.Parallel()
	toks := Tokenize("<?php\n/** doc */\n/* block */\n// line\n# hash\nx();")
	var kinds []token.Kind
	for _, tk := range toks {
		if tk.Kind == token.Comment || tk.Kind == token.DocComment {
			kinds = append(kinds, tk.Kind)
		}
	}
	assert.Equal(t, []token.Kind{token.DocComment, token.Comment, token.Comment, token.Comment}, kinds)
}

func TestTokenize_HeredocIsOneString(t *testing.T) {
	t.Parallel()
	src := "<?php\n$s = <<<EOT\nhello {$name}\n  (unbalanced\nEOT;\nfoo();"
	toks := significant(Tokenize(src))
	require.GreaterOrEqual(t, len(toks), 4)
	assert.Equal(t, token.String, toks[2].Kind)
	assert.Equal(t, "<<<EOT\nhello {$name}\n  (unbalanced\nEOT", toks[2].Text)
	assert.Equal(t, tok(token.Ident, "foo"), toks[4])
}

func TestTokenize_LineHints(t *testing.T) {
	t.Parallel()
	toks := Tokenize("<?php\n\nfoo(\n  1\n);")
	lines := map[string]int{}
	for _, tk := range toks {
		if tk.Significant() {
			lines[tk.Text] = tk.Line
		}
	}
	assert.Equal(t, 3, lines["foo"])
	assert.Equal(t, 4, lines["1"])
	assert.Equal(t, 5, lines[")"])
}

func TestTokenize_NoOpenTagIsInlineHTML(t *testing.T) {
	t.Parallel()
	toks := Tokenize("plain text only")
	require.Len(t, toks, 1)
	assert.Equal(t, token.InlineHTML, toks[0].Kind)
}
