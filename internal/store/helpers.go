package store

import "encoding/json"

// marshalModifiers converts []string to JSON text for storage.
func marshalModifiers(mods []string) string {
	if len(mods) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(mods)
	return string(b)
}

// UnmarshalModifiers converts JSON text back to []string.
// Exported for use by QueryBuilder.
func UnmarshalModifiers(s string) []string {
	return unmarshalModifiers(s)
}

// unmarshalModifiers converts JSON text back to []string. Never returns nil.
func unmarshalModifiers(s string) []string {
	mods := []string{}
	if s == "" || s == "null" {
		return mods
	}
	_ = json.Unmarshal([]byte(s), &mods)
	return mods
}

// modifierNeedle is the JSON form of one modifier as it appears inside the
// stored array.
func modifierNeedle(mod string) string {
	b, _ := json.Marshal(mod)
	return string(b)
}
