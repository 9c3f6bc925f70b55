package stack

import (
	"runtime"
	"strings"
)

const maxDepth = 64

// Capture returns the Go call stack of its caller, innermost first, in frame
// shape: entry i names the function running at depth i and carries the file
// and line of the call to it, taken from depth i+1. The outermost entry has
// no position. skip drops that many additional callers.
func Capture(skip int) []Frame {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	iter := runtime.CallersFrames(pcs[:n])

	var raw []runtime.Frame
	for {
		f, more := iter.Next()
		raw = append(raw, f)
		if !more {
			break
		}
	}

	frames := make([]Frame, len(raw))
	for i, f := range raw {
		class, fn := SplitFuncName(f.Function)
		frames[i] = Frame{Function: fn, Class: class}
		if i+1 < len(raw) {
			frames[i].File = raw[i+1].File
			frames[i].Line = raw[i+1].Line
		}
	}
	return frames
}

// SplitFuncName splits a fully qualified Go function name into receiver type
// and function. Package paths are dropped:
//
//	example.com/pkg.(*Store).Save   -> "Store", "Save"
//	example.com/pkg.Store.Save      -> "Store", "Save"
//	example.com/pkg.(*List[...]).At -> "List", "At"
//	example.com/pkg.Run.func1       -> "", "Run.func1"
//	example.com/pkg.Run             -> "", "Run"
func SplitFuncName(full string) (class, fn string) {
	name := full
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	if strings.HasPrefix(name, "(") {
		end := strings.Index(name, ").")
		if end < 0 {
			return "", name
		}
		recv := strings.TrimPrefix(name[1:end], "*")
		return stripTypeArgs(recv), name[end+2:]
	}

	recv, rest, ok := strings.Cut(name, ".")
	if !ok || isClosure(rest) {
		return "", name
	}
	return stripTypeArgs(recv), rest
}

// isClosure matches the compiler's names for function literals: func1,
// func1.2, and glob.func1 for package-level literals.
func isClosure(s string) bool {
	head, _, _ := strings.Cut(s, ".")
	if head == "" || head[0] >= '0' && head[0] <= '9' {
		return true
	}
	if !strings.HasPrefix(head, "func") || len(head) == len("func") {
		return false
	}
	for _, c := range head[len("func"):] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func stripTypeArgs(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}
