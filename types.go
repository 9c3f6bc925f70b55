package modifiers

import (
	"github.com/jward/modifiers/internal/callsite"
	"github.com/jward/modifiers/internal/runtime"
	"github.com/jward/modifiers/internal/stack"
	"github.com/jward/modifiers/internal/store"
)

// Public type aliases for the internal types used in the package API.
// These are Go type aliases (=), identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Set = callsite.Set
type Signature = callsite.Signature
type Frame = stack.Frame
type Alias = stack.Alias
type Store = store.Store
type File = store.File
type CallSite = store.CallSite
type CallSiteFilter = store.CallSiteFilter
type Finding = runtime.Finding

// Alphabet lists the modifier symbols in canonical order.
var Alphabet = callsite.Alphabet

// SetOf builds a Set. Symbols outside Alphabet are ignored.
func SetOf(symbols ...string) Set { return callsite.SetOf(symbols...) }
