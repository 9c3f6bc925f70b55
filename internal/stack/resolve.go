package stack

import (
	"strings"

	"github.com/jward/modifiers/internal/callsite"
)

// Frame is one entry of a captured stack: the invoked function and the
// position of the call that invoked it.
type Frame struct {
	File     string `json:"file,omitempty" msgpack:"file,omitempty"`
	Line     int    `json:"line,omitempty" msgpack:"line,omitempty"`
	Function string `json:"function,omitempty" msgpack:"function,omitempty"`
	Class    string `json:"class,omitempty" msgpack:"class,omitempty"`
}

// Signature returns the class + function signature of the invoked function.
func (f Frame) Signature() callsite.Signature {
	return callsite.Signature{Class: f.Class, Name: f.Function}
}

// Complete reports whether the frame carries everything a scan needs.
func (f Frame) Complete() bool {
	return f.File != "" && f.Line > 0 && f.Function != ""
}

// DefaultInternal lists loader frames that never count as a call site.
var DefaultInternal = []Alias{{Function: "spl_autoload_call"}}

// Listed reports whether the frame's invoked function is one of the aliases.
// A frame with a class only matches class aliases, and a frame without one
// only matches bare aliases.
func Listed(f Frame, aliases []Alias) bool {
	fn := callsite.Lower(f.Function)
	class := callsite.Lower(trimClass(f.Class))
	for _, a := range aliases {
		if a.Class == class && a.Function == fn {
			return true
		}
	}
	return false
}

// Resolve picks the frame of the real call site. Every frame matching an
// alias resets the candidates, so the outermost anchor wins; internal frames
// are never candidates. The result is the first candidate left after the
// last anchor, which is normally the anchor frame itself since it carries the
// position of the user's call.
func Resolve(frames []Frame, aliases, internal []Alias) (Frame, bool) {
	found := false
	var candidates []Frame
	for _, f := range frames {
		if Listed(f, aliases) {
			found = true
			candidates = candidates[:0]
		}
		if !Listed(f, internal) {
			candidates = append(candidates, f)
		}
	}
	if !found || len(candidates) == 0 {
		return Frame{}, false
	}
	return candidates[0], true
}

// trimClass drops a leading namespace separator, matching how aliases are
// normalized.
func trimClass(class string) string {
	return strings.TrimLeft(class, `\`)
}
