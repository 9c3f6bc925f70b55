// Package token defines the token alphabet shared by the source tokenizers
// and the call-site scanner.
// Invariants:
//   - Token.Text is the exact source text of the token, newlines included.
//     Concatenating Text over a token stream reproduces the source.
//   - Token.Line is the tokenizer's own line hint. It may be wrong for tokens
//     that follow whitespace and is never used for matching.
//   - Only Bang, At, Plus, Minus and Tilde carry modifier symbols.
package token
