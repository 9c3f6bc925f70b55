package callsite

import "strings"

// Signature names the call to look for: a bare function, or a class and
// method pair. Matching is ASCII case-insensitive.
type Signature struct {
	Class string
	Name  string
}

// Func returns a bare function signature.
func Func(name string) Signature { return Signature{Name: name} }

// Method returns a class + method signature.
func Method(class, name string) Signature { return Signature{Class: class, Name: name} }

// IsMethod reports whether the signature carries a class.
func (s Signature) IsMethod() bool { return s.Class != "" }

// ParseSignature reads "Class::method", "Vendor\\Class::method" or "name".
func ParseSignature(text string) (Signature, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Signature{}, false
	}
	class, name, found := strings.Cut(text, "::")
	if !found {
		return Func(text), true
	}
	if class == "" || name == "" || strings.Contains(name, "::") {
		return Signature{}, false
	}
	return Method(class, name), true
}

func (s Signature) String() string {
	if s.Class == "" {
		return s.Name
	}
	return s.Class + "::" + s.Name
}

// folded returns the lowercase class short name and method name. The class
// keeps only its last namespace segment since call sites name it that way.
func (s Signature) folded() (class, name string) {
	name = Lower(s.Name)
	if s.Class == "" {
		return "", name
	}
	class = s.Class
	if i := strings.LastIndexByte(class, '\\'); i >= 0 {
		class = class[i+1:]
	}
	return Lower(class), name
}

// Lower folds ASCII letters only, leaving bytes >= 0x80 untouched.
func Lower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
