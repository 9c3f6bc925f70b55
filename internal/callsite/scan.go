// Package callsite finds call expressions in a flat token stream and reads
// the unary prefix operators written in front of them.
//
// The scanner never parses. It tracks just enough structure to locate a call:
// a sliding window of the last three significant tokens for the call shape,
// a bracket depth counter (with string delimiters toggled) for the end of the
// argument list, and newline counting for line numbers. Token line hints are
// ignored because tokenizers report them unreliably after whitespace.
package callsite

import "github.com/jward/modifiers/internal/token"

// Call is one matched call expression.
type Call struct {
	// Line is the line of the called name.
	Line int
	// EndLine is the line of the closing parenthesis.
	EndLine int
	// Modifiers are the operators written directly in front of the call.
	Modifiers Set
}

// Scan returns the union of the modifiers of every call to sig that starts
// on or before line and whose argument list closes on or after it. Calls that
// end before line, and unterminated calls, do not contribute.
//
// When several such calls exist (two calls on the same line, or a multi-line
// call followed by another on its closing line) their modifiers are merged.
func Scan(toks []token.Token, line int, sig Signature) Set {
	var mods Set
	match(toks, sig, line, func(c Call) {
		mods = mods.Union(c.Modifiers)
	})
	return mods
}

// Calls reports every terminated call to sig in the stream, in source order.
func Calls(toks []token.Token, sig Signature) []Call {
	var calls []Call
	match(toks, sig, 0, func(c Call) {
		calls = append(calls, c)
	})
	return calls
}

// match drives the scan. A limit <= 0 disables the line cutoff.
func match(toks []token.Token, sig Signature, limit int, accept func(Call)) {
	class, name := sig.folded()
	if name == "" {
		return
	}

	cursor := 1
	prev := [3]int{-1, -1, -1}
	for i := range toks {
		tok := toks[i]
		cursor += tok.Newlines()
		if limit > 0 && cursor > limit {
			return
		}
		if tok.Kind.Insignificant() {
			continue
		}
		prev = [3]int{prev[1], prev[2], i}

		if tok.Kind != token.Ident || Lower(tok.Text) != name {
			continue
		}
		if !shapeMatches(toks, prev, class) {
			continue
		}
		open := nextSignificant(toks, i)
		if open < 0 || toks[open].Kind != token.LParen {
			continue
		}
		endLine, closed := closeCall(toks, i, open, cursor)
		if !closed {
			continue
		}
		if limit > 0 && endLine < limit {
			continue
		}
		accept(Call{Line: cursor, EndLine: endLine, Modifiers: modifiersBefore(toks, i)})
	}
}

// shapeMatches checks the tokens in front of the candidate name. prev[2] is
// the candidate itself.
func shapeMatches(toks []token.Token, prev [3]int, class string) bool {
	before := prev[1]
	if class == "" {
		if before < 0 {
			return true
		}
		k := toks[before].Kind
		return k != token.DoubleColon && k != token.ObjectOperator
	}
	if before < 0 || toks[before].Kind != token.DoubleColon {
		return false
	}
	owner := prev[0]
	return owner >= 0 && toks[owner].Kind == token.Ident && Lower(toks[owner].Text) == class
}

func nextSignificant(toks []token.Token, i int) int {
	for j := i + 1; j < len(toks); j++ {
		if toks[j].Significant() {
			return j
		}
	}
	return -1
}

// closeCall walks from the name to the parenthesis balancing open. It returns
// the line of that parenthesis and whether it was found.
func closeCall(toks []token.Token, name, open, line int) (int, bool) {
	for j := name + 1; j <= open; j++ {
		line += toks[j].Newlines()
	}

	depth := 1
	inString := false
	for j := open + 1; j < len(toks); j++ {
		t := toks[j]
		line += t.Newlines()
		switch {
		case t.Kind.Opens():
			depth++
		case t.Kind.Closes():
			depth--
		case t.Kind == token.Quote:
			// One delimiter both opens and closes; only one string can be open.
			if inString {
				depth--
			} else {
				depth++
			}
			inString = !inString
		}
		if depth <= 0 {
			return line, true
		}
	}
	return line, false
}

// modifiersBefore steps back over the qualifier chain (Vendor\Class::) and
// collects the run of unary operators in front of it.
func modifiersBefore(toks []token.Token, name int) Set {
	j := name - 1
	for j >= 0 && (toks[j].Kind.Insignificant() || toks[j].Kind.Qualifier()) {
		j--
	}

	var mods Set
	for ; j >= 0; j-- {
		k := toks[j].Kind
		if k.Insignificant() {
			continue
		}
		if !k.Modifier() {
			break
		}
		mods = mods.Add(symbols[k])
	}
	return mods
}

var symbols = map[token.Kind]string{
	token.Bang:  "!",
	token.At:    "@",
	token.Plus:  "+",
	token.Minus: "-",
	token.Tilde: "~",
}
