// Package stack selects the real call site from a captured call stack.
//
// Frames are innermost first. Each frame names the invoked function (and its
// class, if any) together with the file and line of the call that invoked
// it, which is the shape of a PHP debug_backtrace() entry. Go stacks are
// converted to that shape by Capture.
package stack

import (
	"strings"

	"github.com/jward/modifiers/internal/callsite"
)

// Alias is a canonical anchor signature: lowercase, class without a leading
// namespace separator. Class is empty for bare function aliases.
type Alias struct {
	Class    string
	Function string
}

func (a Alias) String() string {
	if a.Class == "" {
		return a.Function
	}
	return a.Class + "::" + a.Function
}

// Signature converts the alias to a call signature.
func (a Alias) Signature() callsite.Signature {
	return callsite.Signature{Class: a.Class, Name: a.Function}
}

// NormalizeAliases canonicalizes alias declarations and silently drops the
// malformed ones. Accepted declarations:
//
//	"name"                      bare function
//	[]string{"Class", "method"} class + method, also [2]string
//	[]any{"Class", "method"}    non-string elements are filtered first
//	Alias, callsite.Signature   re-validated like the forms above
//
// Output order follows input order.
func NormalizeAliases(decls []any) []Alias {
	out := make([]Alias, 0, len(decls))
	for _, d := range decls {
		if a, ok := normalize(d); ok {
			out = append(out, a)
		}
	}
	return out
}

func normalize(decl any) (Alias, bool) {
	switch v := decl.(type) {
	case string:
		if !isName(v) {
			return Alias{}, false
		}
		return Alias{Function: callsite.Lower(v)}, true
	case []string:
		if len(v) != 2 {
			return Alias{}, false
		}
		return pair(v[0], v[1])
	case [2]string:
		return pair(v[0], v[1])
	case []any:
		if len(v) != 2 {
			return Alias{}, false
		}
		var parts []string
		for _, e := range v {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) != 2 {
			return Alias{}, false
		}
		return pair(parts[0], parts[1])
	case Alias:
		if v.Class == "" {
			return normalize(v.Function)
		}
		return pair(v.Class, v.Function)
	case callsite.Signature:
		if v.Class == "" {
			return normalize(v.Name)
		}
		return pair(v.Class, v.Name)
	default:
		return Alias{}, false
	}
}

func pair(class, method string) (Alias, bool) {
	if !isName(method) || !isClassName(class) {
		return Alias{}, false
	}
	return Alias{
		Class:    callsite.Lower(strings.TrimLeft(class, `\`)),
		Function: callsite.Lower(method),
	}, true
}

// isName matches a letter, underscore or byte >= 0x7f followed by those or
// digits.
func isName(s string) bool {
	if s == "" || !nameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !nameStart(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// isClassName is isName with namespace separators allowed anywhere.
func isClassName(s string) bool {
	if s == "" || !(nameStart(s[0]) || s[0] == '\\') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !nameStart(s[i]) && !isDigit(s[i]) && s[i] != '\\' {
			return false
		}
	}
	return true
}

func nameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= 0x7f
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
