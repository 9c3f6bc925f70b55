package callsite

import (
	"encoding/json"
	"strings"
)

// Alphabet lists the modifier symbols in canonical order.
var Alphabet = []string{"!", "@", "+", "-", "~"}

// Set is a deduplicated, unordered set of modifier symbols. It can only hold
// symbols from Alphabet. The zero value is the empty set.
type Set uint8

func bit(symbol string) Set {
	for i, s := range Alphabet {
		if s == symbol {
			return 1 << i
		}
	}
	return 0
}

// SetOf builds a Set from symbols. Symbols outside the alphabet are ignored.
func SetOf(symbols ...string) Set {
	var s Set
	for _, sym := range symbols {
		s |= bit(sym)
	}
	return s
}

// Add returns s with symbol added. Unknown symbols leave s unchanged.
func (s Set) Add(symbol string) Set { return s | bit(symbol) }

// Union returns the symbols present in either set.
func (s Set) Union(o Set) Set { return s | o }

// Has reports whether symbol is in the set.
func (s Set) Has(symbol string) bool {
	b := bit(symbol)
	return b != 0 && s&b != 0
}

// HasAll reports whether every symbol is in the set. It is true for an empty
// argument list.
func (s Set) HasAll(symbols ...string) bool {
	for _, sym := range symbols {
		if !s.Has(sym) {
			return false
		}
	}
	return true
}

// Empty reports whether the set has no symbols.
func (s Set) Empty() bool { return s == 0 }

// Len returns the number of symbols in the set.
func (s Set) Len() int {
	n := 0
	for i := range Alphabet {
		if s&(1<<i) != 0 {
			n++
		}
	}
	return n
}

// Symbols returns the members in Alphabet order. Never nil.
func (s Set) Symbols() []string {
	out := make([]string, 0, len(Alphabet))
	for i, sym := range Alphabet {
		if s&(1<<i) != 0 {
			out = append(out, sym)
		}
	}
	return out
}

func (s Set) String() string {
	return "{" + strings.Join(s.Symbols(), " ") + "}"
}

// MarshalJSON encodes the set as an array of symbols.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Symbols())
}

// UnmarshalJSON decodes an array of symbols, dropping unknown ones.
func (s *Set) UnmarshalJSON(data []byte) error {
	var syms []string
	if err := json.Unmarshal(data, &syms); err != nil {
		return err
	}
	*s = SetOf(syms...)
	return nil
}
