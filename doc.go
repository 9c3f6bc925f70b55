// Package modifiers lets a callee read the unary prefix operators (!, @, +,
// - and ~) its caller wrote in front of the call, and indexes those
// operators across a source tree.
//
// # Attribution
//
// A type opts in by implementing [Anchored]: AnchorSignatures lists the
// signatures that mark the application's call site. Inside a method the
// type calls [Get], [Has] or [HasAll]:
//
//	type Setter struct{}
//
//	func (s *Setter) AnchorSignatures() []any {
//		return []any{[]string{"Setter", "Set"}}
//	}
//
//	func (s *Setter) Set(v string) bool {
//		if modifiers.Has(s, "!") {
//			// called as !s.Set(...)
//		}
//		...
//	}
//
// The current stack is captured, the outermost frame invoking an anchor is
// selected, and that frame's source file is tokenized and scanned for the
// call reaching the frame's line. Attribution never fails: a frame without
// a position, an unreadable file or an unmatched call yields the empty set.
//
// An [Attributor] carries its own anchors, tokenizer and filesystem, and
// also resolves stacks captured elsewhere ([Attributor.ModifiersFrom]), such
// as PHP debug_backtrace() exports.
//
// Go has no call-site syntax for a type name, so in Go sources anchors match
// by method name alone. Only !, + and - are Go prefix operators.
//
// # Indexing
//
// An [Engine] records every terminated call to its aliases in a SQLite
// database:
//
//	e, err := modifiers.New(".modifiers.db", modifiers.WithAliases([]string{"Example", "setValue"}))
//	if err != nil { ... }
//	defer e.Close()
//
//	err = e.IndexDirectory(ctx, "path/to/project")
//	sites, err := e.Query().CallSites(modifiers.CallSiteFilter{Modifier: "@"})
//
// Unchanged files are skipped by content hash. [Engine.AliasesChanged]
// reports when the alias list differs from the one the index was built
// with. [Engine.Check] runs a Risor rule script over the index; see the
// internal/runtime package for the globals exposed to scripts.
package modifiers
